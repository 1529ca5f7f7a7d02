package repository

import (
	"context"

	"devfolio/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
	List(ctx context.Context) ([]model.UserSummary, error)
	UpdateProfile(ctx context.Context, id string, req model.UpdateProfileRequest) (*model.User, error)
}

// RelationRepository is the relation store: one table per relation, each with a
// unique index on its natural key. Create and Delete are single constrained
// statements, so two racing calls for the same key serialize at the database.
type RelationRepository interface {
	// Exists reports whether the (source, target) edge is present.
	Exists(ctx context.Context, rel model.Relation, sourceID, targetID string) (bool, error)
	// Create inserts the edge and returns it, or model.ErrEdgeExists if the
	// key is taken.
	Create(ctx context.Context, rel model.Relation, sourceID, targetID string) (*model.Edge, error)
	// Delete removes the edge, returning model.ErrEdgeNotFound if absent.
	Delete(ctx context.Context, rel model.Relation, sourceID, targetID string) error
	CountByTarget(ctx context.Context, rel model.Relation, targetID string) (int, error)
	CountBySource(ctx context.Context, rel model.Relation, sourceID string) (int, error)
	// CountManyByTarget returns edge counts per target in one query.
	CountManyByTarget(ctx context.Context, rel model.Relation, targetIDs []string) (map[string]int, error)
	// CheckMany reports which of targetIDs have an edge from sourceID, in one query.
	CheckMany(ctx context.Context, rel model.Relation, sourceID string, targetIDs []string) (map[string]bool, error)
}

type ProjectRepository interface {
	// Create inserts the project and its tech stacks in one transaction.
	Create(ctx context.Context, project *model.Project, techStacks []string) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// Update rewrites the project fields and, when techStacks is non-nil,
	// replaces the full tag set, all in one transaction.
	Update(ctx context.Context, id string, req model.UpdateProjectRequest) (*model.Project, error)
	// Delete removes the project's likes, bookmarks and tech stacks together
	// with the project row, in one transaction.
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error)
	ListBookmarkedBy(ctx context.Context, userID string) ([]model.Project, error)
	SearchByTech(ctx context.Context, tech string) ([]model.Project, error)
	ListAll(ctx context.Context) ([]model.Project, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Project, error)
	Exists(ctx context.Context, id string) (bool, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// CountLikesForOwner sums like counts across all of a user's projects.
	CountLikesForOwner(ctx context.Context, ownerID string) (int, error)
	// RecentIDs returns the newest project ids with their creation timestamps,
	// used to warm the explore cache.
	RecentIDs(ctx context.Context, limit int) ([]model.Project, error)
}

type LinkRepository interface {
	Create(ctx context.Context, link *model.ExternalLink) error
	GetByID(ctx context.Context, id string) (*model.ExternalLink, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]model.ExternalLink, error)
}
