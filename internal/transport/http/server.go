package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"devfolio/internal/cache"
	"devfolio/internal/config"
	"devfolio/internal/database"
	"devfolio/internal/handler"
	"devfolio/internal/redis"
	"devfolio/internal/repository"
	"devfolio/internal/service"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis (optional: the explore index degrades to the
	// database when no instance is configured)
	var exploreCache cache.ExploreCache
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		exploreCache = cache.NewExploreCache(redisClient.Client)
		log.Println("Connected to redis successfully")
	} else {
		log.Println("REDIS_URL not set, explore index disabled")
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	// 5. Services
	identityService := service.NewIdentityService(userRepo)
	interactionService := service.NewInteractionService(relationRepo, userRepo, projectRepo)
	projectService := service.NewProjectService(projectRepo, userRepo, relationRepo, exploreCache)
	userService := service.NewUserService(userRepo, projectRepo, relationRepo, linkRepo, projectService)
	linkService := service.NewLinkService(linkRepo)

	// 6. Handlers and router
	router := NewRouter(RouterConfig{
		UserHandler:        handler.NewUserHandler(userService),
		ProjectHandler:     handler.NewProjectHandler(projectService),
		InteractionHandler: handler.NewInteractionHandler(interactionService),
		LinkHandler:        handler.NewLinkHandler(linkService),
		IdentityService:    identityService,
		JWTSecret:          cfg.JWTSecret,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
