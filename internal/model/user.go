package model

import (
	"errors"
	"time"
)

// User represents a user in the system. Accounts are provisioned on first
// resolution of an external identity-provider principal, never via local signup.
type User struct {
	ID         string    `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"-"` // identity-provider subject, hidden from JSON
	Name       string    `db:"name" json:"name"`
	Username   *string   `db:"username" json:"username"`
	Email      string    `db:"email" json:"email"`
	Bio        *string   `db:"bio" json:"bio"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Principal is the profile asserted by the identity provider's token.
// It is the only input to user provisioning.
type Principal struct {
	ExternalID string
	Name       string
	Username   *string
	Email      string
	AvatarURL  *string
}

// UserSummary is the compact user shape embedded in project and list views.
// FollowerCount and IsFollowing are filled by the directory read path only.
type UserSummary struct {
	ID            string  `db:"id" json:"id"`
	Username      *string `db:"username" json:"username"`
	Name          string  `db:"name" json:"name"`
	AvatarURL     *string `db:"avatar_url" json:"avatar_url"`
	FollowerCount int     `json:"follower_count"`
	IsFollowing   bool    `json:"is_following"`
}

// ProfileView is the full profile payload: user core fields plus
// relation-derived aggregates and the user's decorated projects.
type ProfileView struct {
	User
	ProjectCount   int            `json:"project_count"`
	FollowerCount  int            `json:"follower_count"`
	FollowingCount int            `json:"following_count"`
	TotalLikes     int            `json:"total_likes"`
	IsFollowing    bool           `json:"is_following"`
	Links          []ExternalLink `json:"links"`
	Projects       []Project      `json:"projects"`
}

// UpdateProfileRequest is the request body for PATCH /profile.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when a username is already taken by another user
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when an email is already registered to another user
	ErrEmailExists = errors.New("email already exists")
)
