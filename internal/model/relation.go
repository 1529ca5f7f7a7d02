package model

import (
	"errors"
	"time"
)

// Relation identifies one of the three edge relations stored by the system.
type Relation int

const (
	// RelationFollow is the user -> user follow edge.
	RelationFollow Relation = iota
	// RelationLike is the user -> project like edge.
	RelationLike
	// RelationBookmark is the user -> project bookmark edge.
	RelationBookmark
)

func (r Relation) String() string {
	switch r {
	case RelationFollow:
		return "follow"
	case RelationLike:
		return "like"
	case RelationBookmark:
		return "bookmark"
	default:
		return "unknown"
	}
}

// Edge is a single directed relation edge. For follows the target is a user,
// for likes and bookmarks it is a project.
type Edge struct {
	ID        string    `db:"id" json:"id"`
	SourceID  string    `db:"source_id" json:"source_id"`
	TargetID  string    `db:"target_id" json:"target_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var (
	// ErrEdgeExists signals that the unique constraint on the edge's natural key
	// rejected an insert. It never crosses the interaction-service boundary: a
	// concurrent toggle that loses this race is reported as a successful add.
	ErrEdgeExists = errors.New("relation edge already exists")

	// ErrEdgeNotFound signals a delete of an absent edge. Absorbed by the
	// interaction service the same way ErrEdgeExists is.
	ErrEdgeNotFound = errors.New("relation edge not found")

	// ErrCannotFollowSelf is returned when a user attempts to follow themselves
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
