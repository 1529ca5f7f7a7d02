package service

import (
	"context"
	"errors"

	"devfolio/internal/model"
	"devfolio/internal/repository"
)

// InteractionService owns the follow/like/bookmark toggle semantics. Toggles
// are idempotent under concurrent duplicate requests: the advisory existence
// read only picks a direction, and the store's unique constraint decides the
// actual outcome. Races surface from the store as ErrEdgeExists/ErrEdgeNotFound
// and are normalized here to a plain added/removed result.
type InteractionService struct {
	relationRepo repository.RelationRepository
	userRepo     repository.UserRepository
	projectRepo  repository.ProjectRepository
}

func NewInteractionService(
	relationRepo repository.RelationRepository,
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
) *InteractionService {
	return &InteractionService{
		relationRepo: relationRepo,
		userRepo:     userRepo,
		projectRepo:  projectRepo,
	}
}

// Toggle flips the edge for (actor, target) and reports the new state:
// true when the edge is now present, false when it is now absent.
func (s *InteractionService) Toggle(ctx context.Context, rel model.Relation, actorID, targetID string) (bool, error) {
	if rel == model.RelationFollow && actorID == targetID {
		return false, model.ErrCannotFollowSelf
	}

	if err := s.checkTarget(ctx, rel, targetID); err != nil {
		return false, err
	}

	exists, err := s.relationRepo.Exists(ctx, rel, actorID, targetID)
	if err != nil {
		return false, err
	}

	if exists {
		err := s.relationRepo.Delete(ctx, rel, actorID, targetID)
		// A concurrent toggle may have removed the edge first. Same end state,
		// so report removed either way.
		if err != nil && !errors.Is(err, model.ErrEdgeNotFound) {
			return false, err
		}
		return false, nil
	}

	_, err = s.relationRepo.Create(ctx, rel, actorID, targetID)
	// A concurrent toggle may have created the edge first. Converge to added
	// rather than surfacing the constraint violation.
	if err != nil && !errors.Is(err, model.ErrEdgeExists) {
		return false, err
	}
	return true, nil
}

// Status reports whether the actor has the edge to the target. A nil actor
// (unauthenticated viewer) gets false, never an error: viewing is allowed
// without interacting.
func (s *InteractionService) Status(ctx context.Context, rel model.Relation, actorID *string, targetID string) (bool, error) {
	if actorID == nil || *actorID == "" {
		return false, nil
	}
	return s.relationRepo.Exists(ctx, rel, *actorID, targetID)
}

// CountByTarget returns the number of edges pointing at the target
// (followers of a user, likes or bookmarks of a project).
func (s *InteractionService) CountByTarget(ctx context.Context, rel model.Relation, targetID string) (int, error) {
	return s.relationRepo.CountByTarget(ctx, rel, targetID)
}

// CountBySource returns the number of edges originating from the source.
func (s *InteractionService) CountBySource(ctx context.Context, rel model.Relation, sourceID string) (int, error) {
	return s.relationRepo.CountBySource(ctx, rel, sourceID)
}

// checkTarget verifies the toggle target exists: a user for follows, a project
// for likes and bookmarks.
func (s *InteractionService) checkTarget(ctx context.Context, rel model.Relation, targetID string) error {
	switch rel {
	case model.RelationFollow:
		exists, err := s.userRepo.Exists(ctx, targetID)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrUserNotFound
		}
	case model.RelationLike, model.RelationBookmark:
		exists, err := s.projectRepo.Exists(ctx, targetID)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrProjectNotFound
		}
	}
	return nil
}
