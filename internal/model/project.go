package model

import (
	"errors"
	"time"
)

// Project is a portfolio entry owned by exactly one user.
type Project struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageURL    *string   `db:"image_url" json:"image_url"`
	GithubURL   *string   `db:"github_url" json:"github_url"`
	LiveURL     *string   `db:"live_url" json:"live_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Joined fields (not in the projects table)
	TechStacks   []TechStack  `json:"tech_stacks"`
	Owner        *UserSummary `json:"owner,omitempty"`
	LikeCount    int          `json:"like_count"`
	IsLiked      bool         `json:"is_liked"`
	IsBookmarked bool         `json:"is_bookmarked"`
}

// TechStack is a single tag attached to a project. The tag set is replaced
// wholesale on every project edit, so rows have no independent lifecycle.
type TechStack struct {
	ID        string `db:"id" json:"id"`
	ProjectID string `db:"project_id" json:"-"`
	Name      string `db:"name" json:"name"`
}

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    *string  `json:"image_url"`
	GithubURL   *string  `json:"github_url"`
	LiveURL     *string  `json:"live_url"`
	TechStacks  []string `json:"tech_stacks"`
}

// UpdateProjectRequest is the request body for editing a project.
// A nil TechStacks leaves the existing tag set untouched; a non-nil value
// (including an empty slice) replaces it entirely.
type UpdateProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    *string  `json:"image_url"`
	GithubURL   *string  `json:"github_url"`
	LiveURL     *string  `json:"live_url"`
	TechStacks  []string `json:"tech_stacks"`
}

// Project errors
var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrNotProjectOwner     = errors.New("not the owner of this project")
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
)
