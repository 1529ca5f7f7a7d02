package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devfolio/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. The caller fills the profile fields; the id and
// timestamps are assigned here.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, external_id, name, username, email, bio, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.ID,
		u.ExternalID,
		u.Name,
		u.Username,
		u.Email,
		u.Bio,
		u.AvatarURL,
	)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, external_id, name, username, email, bio, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, external_id, name, username, email, bio, avatar_url, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &u, nil
}

// GetByExternalID retrieves a user by their identity-provider subject
func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := `
		SELECT id, external_id, name, username, email, bio, avatar_url, created_at, updated_at
		FROM users
		WHERE external_id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, externalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}
	return &u, nil
}

// ExistsByUsername checks if a username is taken by a user other than excludeID.
// Pass an empty excludeID to check across all users.
func (r *userRepository) ExistsByUsername(ctx context.Context, username string, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username, excludeID); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

// ExistsByEmail checks if an email is registered to a user other than excludeID.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, excludeID); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// Exists checks if a user exists
func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// GetSummaries fetches compact user shapes for a batch of ids in one query.
func (r *userRepository) GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	result := make(map[string]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT id, username, name, avatar_url
		FROM users
		WHERE id = ANY($1)
	`
	var summaries []model.UserSummary
	err := r.db.SelectContext(ctx, &summaries, query, pq.Array(ids))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}

	for _, s := range summaries {
		result[s.ID] = s
	}
	return result, nil
}

// List returns every user as a summary, newest first.
func (r *userRepository) List(ctx context.Context) ([]model.UserSummary, error) {
	query := `
		SELECT id, username, name, avatar_url
		FROM users
		ORDER BY created_at DESC
	`
	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of req and returns the updated row.
func (r *userRepository) UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error) {
	query := `
		UPDATE users
		SET name       = COALESCE($2, name),
		    username   = COALESCE($3, username),
		    email      = COALESCE($4, email),
		    bio        = COALESCE($5, bio),
		    avatar_url = COALESCE($6, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, external_id, name, username, email, bio, avatar_url, created_at, updated_at
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id, req.Name, req.Username, req.Email, req.Bio, req.AvatarURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &u, nil
}
