package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"devfolio/internal/model"
	"devfolio/internal/repository"
)

// IdentityService maps identity-provider principals to local user records.
// A local user is created the first time a principal is seen; after that the
// mapping is stable via the unique external_id column.
type IdentityService struct {
	userRepo repository.UserRepository
}

func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// Resolve returns the local user for an identity-provider subject, or
// model.ErrUserNotFound if the principal has never been synced.
func (s *IdentityService) Resolve(ctx context.Context, externalID string) (*model.User, error) {
	return s.userRepo.GetByExternalID(ctx, externalID)
}

// Sync resolves the principal to a local user, creating the record on first
// sight. Uniqueness on external_id is the primary guard against duplicates;
// email and username are checked defensively so a clashing provider profile
// cannot shadow an existing account.
func (s *IdentityService) Sync(ctx context.Context, p model.Principal) (*model.User, error) {
	if p.ExternalID == "" {
		return nil, fmt.Errorf("principal has no external id")
	}

	user, err := s.userRepo.GetByExternalID(ctx, p.ExternalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	if p.Email != "" {
		taken, err := s.userRepo.ExistsByEmail(ctx, p.Email, "")
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, model.ErrEmailExists
		}
	}
	if p.Username != nil && *p.Username != "" {
		taken, err := s.userRepo.ExistsByUsername(ctx, *p.Username, "")
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, model.ErrUsernameExists
		}
	}

	name := p.Name
	if name == "" && p.Username != nil {
		name = *p.Username
	}

	user = &model.User{
		ExternalID: p.ExternalID,
		Name:       name,
		Username:   p.Username,
		Email:      p.Email,
		AvatarURL:  p.AvatarURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two first-time requests for the same principal can race; the unique
		// index rejects the loser, who then reads the winner's row.
		existing, lookupErr := s.userRepo.GetByExternalID(ctx, p.ExternalID)
		if lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	log.Printf("[IdentityService] Provisioned user %s for principal %s", user.ID, p.ExternalID)
	return user, nil
}
