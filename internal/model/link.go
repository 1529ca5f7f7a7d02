package model

import (
	"errors"
	"time"
)

// ExternalLink is a labelled URL shown on a user's profile.
type ExternalLink struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateLinkRequest is the request body for adding a profile link.
type CreateLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

var (
	ErrLinkNotFound      = errors.New("link not found")
	ErrLinkTitleRequired = errors.New("link title is required")
	ErrLinkURLRequired   = errors.New("link url is required")
)
