package service

import (
	"context"
	"log"

	"devfolio/internal/model"
	"devfolio/internal/repository"
)

// UserService assembles profile views and handles profile edits.
type UserService struct {
	userRepo     repository.UserRepository
	projectRepo  repository.ProjectRepository
	relationRepo repository.RelationRepository
	linkRepo     repository.LinkRepository
	projects     *ProjectService
}

func NewUserService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	relationRepo repository.RelationRepository,
	linkRepo repository.LinkRepository,
	projects *ProjectService,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		projectRepo:  projectRepo,
		relationRepo: relationRepo,
		linkRepo:     linkRepo,
		projects:     projects,
	}
}

// GetProfile assembles the full profile view for a username: core fields,
// aggregate counts, external links, the user's decorated projects, and the
// viewer's follow status when a viewer is present.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID *string) (*model.ProfileView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileView{User: *user}

	if profile.ProjectCount, err = s.projectRepo.CountByOwner(ctx, user.ID); err != nil {
		return nil, err
	}
	if profile.FollowerCount, err = s.relationRepo.CountByTarget(ctx, model.RelationFollow, user.ID); err != nil {
		return nil, err
	}
	if profile.FollowingCount, err = s.relationRepo.CountBySource(ctx, model.RelationFollow, user.ID); err != nil {
		return nil, err
	}
	if profile.TotalLikes, err = s.projectRepo.CountLikesForOwner(ctx, user.ID); err != nil {
		return nil, err
	}

	if profile.Links, err = s.linkRepo.ListByUser(ctx, user.ID); err != nil {
		return nil, err
	}

	if profile.Projects, err = s.projects.List(ctx, ProjectFilter{OwnerID: user.ID}, viewerID); err != nil {
		return nil, err
	}

	if viewerID != nil && *viewerID != "" {
		following, err := s.relationRepo.Exists(ctx, model.RelationFollow, *viewerID, user.ID)
		if err != nil {
			// Degrade to false rather than failing the profile read
			log.Printf("[UserService] Failed to check follow status: %v", err)
		} else {
			profile.IsFollowing = following
		}
	}

	return profile, nil
}

// GetByID retrieves a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns the user directory with follower counts, decorated with the
// viewer's follow status when a viewer is present.
func (s *UserService) List(ctx context.Context, viewerID *string) ([]model.UserSummary, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return users, nil
	}

	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	counts, err := s.relationRepo.CountManyByTarget(ctx, model.RelationFollow, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].FollowerCount = counts[users[i].ID]
	}

	if viewerID != nil && *viewerID != "" {
		followed, err := s.relationRepo.CheckMany(ctx, model.RelationFollow, *viewerID, ids)
		if err != nil {
			log.Printf("[UserService] Failed to check follows: %v", err)
			return users, nil
		}
		for i := range users {
			users[i].IsFollowing = followed[users[i].ID]
		}
	}

	return users, nil
}

// UpdateProfile applies a partial profile edit, defending the username and
// email uniqueness constraints before writing.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.User, error) {
	if req.Username != nil && *req.Username != "" {
		taken, err := s.userRepo.ExistsByUsername(ctx, *req.Username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.ErrUsernameExists
		}
	}
	if req.Email != nil && *req.Email != "" {
		taken, err := s.userRepo.ExistsByEmail(ctx, *req.Email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.ErrEmailExists
		}
	}

	return s.userRepo.UpdateProfile(ctx, userID, req)
}
