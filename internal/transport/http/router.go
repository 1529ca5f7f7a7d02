package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"devfolio/internal/handler"
	"devfolio/internal/httputil"
	"devfolio/internal/service"
	authmw "devfolio/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	UserHandler        *handler.UserHandler
	ProjectHandler     *handler.ProjectHandler
	InteractionHandler *handler.InteractionHandler
	LinkHandler        *handler.LinkHandler
	IdentityService    *service.IdentityService
	JWTSecret          string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	requireAuth := authmw.AuthMiddleware(cfg.JWTSecret, cfg.IdentityService)
	optionalAuth := authmw.OptionalAuthMiddleware(cfg.JWTSecret, cfg.IdentityService)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public read endpoints with optional authentication: unauthenticated
	// viewers see public data with interaction flags set to false
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)

		r.Get("/users", cfg.UserHandler.List)
		r.Get("/users/{id}/follow", cfg.InteractionHandler.FollowStatus)

		r.Get("/profiles/{username}", cfg.UserHandler.GetProfile)

		r.Get("/projects/explore", cfg.ProjectHandler.Explore)
		r.Get("/projects/search", cfg.ProjectHandler.Search)
		r.Get("/projects/{id}", cfg.ProjectHandler.GetByID)
		r.Get("/projects/{id}/like", cfg.InteractionHandler.LikeStatus)
		r.Get("/projects/{id}/bookmark", cfg.InteractionHandler.BookmarkStatus)
	})

	// Protected routes - require an authenticated actor
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/me", cfg.UserHandler.Me)
		r.Patch("/profile", cfg.UserHandler.UpdateProfile)

		r.Post("/users/{id}/follow", cfg.InteractionHandler.ToggleFollow)

		r.Post("/projects", cfg.ProjectHandler.Create)
		r.Get("/projects", cfg.ProjectHandler.ListMine)
		r.Get("/projects/bookmarked", cfg.ProjectHandler.Bookmarked)
		r.Put("/projects/{id}", cfg.ProjectHandler.Update)
		r.Delete("/projects/{id}", cfg.ProjectHandler.Delete)
		r.Post("/projects/{id}/like", cfg.InteractionHandler.ToggleLike)
		r.Post("/projects/{id}/bookmark", cfg.InteractionHandler.ToggleBookmark)

		r.Post("/links", cfg.LinkHandler.Create)
		r.Delete("/links/{id}", cfg.LinkHandler.Delete)
	})

	return r
}
