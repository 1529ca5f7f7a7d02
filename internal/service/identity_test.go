package service

import (
	"context"
	"errors"
	"testing"

	"devfolio/internal/model"
)

func TestIdentityService_Sync_ProvisionsNewUser(t *testing.T) {
	userRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = "user-1"
			return nil
		},
	}
	svc := NewIdentityService(userRepo)

	username := "devaccount"
	avatar := "https://img.example.com/a.png"
	p := model.Principal{
		ExternalID: "idp|abc123",
		Name:       "Dev Account",
		Username:   &username,
		Email:      "dev@example.com",
		AvatarURL:  &avatar,
	}

	user, err := svc.Sync(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(userRepo.createCalls) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(userRepo.createCalls))
	}
	created := userRepo.createCalls[0]
	if created.ExternalID != "idp|abc123" {
		t.Errorf("external id = %q, want %q", created.ExternalID, "idp|abc123")
	}
	if created.Name != "Dev Account" {
		t.Errorf("name = %q, want %q", created.Name, "Dev Account")
	}
	if created.Username == nil || *created.Username != "devaccount" {
		t.Errorf("username = %v, want devaccount", created.Username)
	}
	if user.ID != "user-1" {
		t.Errorf("user id = %q, want user-1", user.ID)
	}
}

func TestIdentityService_Sync_ExistingUser(t *testing.T) {
	existing := &model.User{ID: "user-1", ExternalID: "idp|abc123"}
	userRepo := &mockUserRepository{
		getByExternalIDFn: func(ctx context.Context, externalID string) (*model.User, error) {
			return existing, nil
		},
	}
	svc := NewIdentityService(userRepo)

	user, err := svc.Sync(context.Background(), model.Principal{ExternalID: "idp|abc123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != existing {
		t.Error("expected the existing user to be returned")
	}
	if len(userRepo.createCalls) != 0 {
		t.Error("existing principal should not trigger a create")
	}
}

func TestIdentityService_Sync_NoExternalID(t *testing.T) {
	svc := NewIdentityService(&mockUserRepository{})

	if _, err := svc.Sync(context.Background(), model.Principal{}); err == nil {
		t.Error("expected an error for a principal without an external id")
	}
}

func TestIdentityService_Sync_EmailTaken(t *testing.T) {
	userRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email, excludeID string) (bool, error) {
			return true, nil
		},
	}
	svc := NewIdentityService(userRepo)

	_, err := svc.Sync(context.Background(), model.Principal{ExternalID: "idp|x", Email: "taken@example.com"})
	if !errors.Is(err, model.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
	if len(userRepo.createCalls) != 0 {
		t.Error("clashing email should block provisioning")
	}
}

func TestIdentityService_Sync_UsernameTaken(t *testing.T) {
	userRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username, excludeID string) (bool, error) {
			return true, nil
		},
	}
	svc := NewIdentityService(userRepo)

	username := "taken"
	_, err := svc.Sync(context.Background(), model.Principal{ExternalID: "idp|x", Username: &username})
	if !errors.Is(err, model.ErrUsernameExists) {
		t.Errorf("expected ErrUsernameExists, got %v", err)
	}
}

func TestIdentityService_Sync_ProvisionRace(t *testing.T) {
	// Two first-time requests race: this one loses the insert, then reads the
	// winner's row and returns it.
	winner := &model.User{ID: "user-1", ExternalID: "idp|abc123"}
	lookups := 0
	userRepo := &mockUserRepository{
		getByExternalIDFn: func(ctx context.Context, externalID string) (*model.User, error) {
			lookups++
			if lookups == 1 {
				return nil, model.ErrUserNotFound
			}
			return winner, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			return errors.New("pq: duplicate key value violates unique constraint")
		},
	}
	svc := NewIdentityService(userRepo)

	user, err := svc.Sync(context.Background(), model.Principal{ExternalID: "idp|abc123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != winner {
		t.Error("losing a provision race should return the winner's row")
	}
}

func TestIdentityService_Sync_FallsBackToUsernameForName(t *testing.T) {
	userRepo := &mockUserRepository{}
	svc := NewIdentityService(userRepo)

	username := "ghost"
	if _, err := svc.Sync(context.Background(), model.Principal{ExternalID: "idp|x", Username: &username}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(userRepo.createCalls) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(userRepo.createCalls))
	}
	if userRepo.createCalls[0].Name != "ghost" {
		t.Errorf("name = %q, want fallback to username", userRepo.createCalls[0].Name)
	}
}

func TestIdentityService_Resolve(t *testing.T) {
	userRepo := &mockUserRepository{
		getByExternalIDFn: func(ctx context.Context, externalID string) (*model.User, error) {
			if externalID == "idp|known" {
				return &model.User{ID: "user-1"}, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewIdentityService(userRepo)

	if _, err := svc.Resolve(context.Background(), "idp|known"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "idp|unknown"); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
