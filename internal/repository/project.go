package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devfolio/internal/model"
)

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts a new project and its tech stacks in a transaction, so a
// failure partway leaves no orphaned tags.
func (r *projectRepository) Create(ctx context.Context, project *model.Project, techStacks []string) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (id, owner_id, title, description, image_url, github_url, live_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	row := tx.QueryRowxContext(ctx, query,
		project.ID,
		project.OwnerID,
		project.Title,
		project.Description,
		project.ImageURL,
		project.GithubURL,
		project.LiveURL,
	)
	if err := row.Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	stacks, err := insertTechStacks(ctx, tx, project.ID, techStacks)
	if err != nil {
		return err
	}
	project.TechStacks = stacks

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a single project with its tech stacks.
func (r *projectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	query := `
		SELECT id, owner_id, title, description, image_url, github_url, live_url, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	var project model.Project
	err := r.db.GetContext(ctx, &project, query, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	stacks, err := r.getTechStacks(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	project.TechStacks = stacks[id]

	return &project, nil
}

// Update rewrites the project fields and, when req.TechStacks is non-nil,
// replaces the whole tag set (delete-all, insert-new — not a diff). Both run in
// one transaction so an edit never leaves a half-replaced tag set.
func (r *projectRepository) Update(ctx context.Context, id string, req model.UpdateProjectRequest) (*model.Project, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE projects
		SET title       = $2,
		    description = $3,
		    image_url   = COALESCE($4, image_url),
		    github_url  = $5,
		    live_url    = $6,
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING id, owner_id, title, description, image_url, github_url, live_url, created_at, updated_at
	`
	var project model.Project
	err = tx.GetContext(ctx, &project, query, id, req.Title, req.Description, req.ImageURL, req.GithubURL, req.LiveURL)
	if err == sql.ErrNoRows {
		return nil, model.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if req.TechStacks != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tech_stacks WHERE project_id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete tech stacks: %w", err)
		}
		stacks, err := insertTechStacks(ctx, tx, id, req.TechStacks)
		if err != nil {
			return nil, err
		}
		project.TechStacks = stacks
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if req.TechStacks == nil {
		stacks, err := r.getTechStacks(ctx, []string{id})
		if err != nil {
			return nil, err
		}
		project.TechStacks = stacks[id]
	}

	return &project, nil
}

// Delete removes the project's likes, bookmarks and tech stacks together with
// the project row. One transaction: either everything goes or nothing does.
func (r *projectRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE project_id = $1`, id); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE project_id = $1`, id); err != nil {
		return fmt.Errorf("delete bookmarks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tech_stacks WHERE project_id = $1`, id); err != nil {
		return fmt.Errorf("delete tech stacks: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProjectNotFound
	}

	return tx.Commit()
}

// ListByOwner returns a user's projects, newest first.
func (r *projectRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Project, error) {
	query := `
		SELECT id, owner_id, title, description, image_url, github_url, live_url, created_at, updated_at
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	return r.selectWithStacks(ctx, query, ownerID)
}

// ListBookmarkedBy returns projects the user has bookmarked, newest first.
func (r *projectRepository) ListBookmarkedBy(ctx context.Context, userID string) ([]model.Project, error) {
	query := `
		SELECT p.id, p.owner_id, p.title, p.description, p.image_url, p.github_url, p.live_url, p.created_at, p.updated_at
		FROM projects p
		JOIN bookmarks b ON b.project_id = p.id
		WHERE b.user_id = $1
		ORDER BY p.created_at DESC
	`
	return r.selectWithStacks(ctx, query, userID)
}

// SearchByTech returns projects whose tech-stack names contain the given
// substring, case-insensitively, newest first.
func (r *projectRepository) SearchByTech(ctx context.Context, tech string) ([]model.Project, error) {
	query := `
		SELECT DISTINCT p.id, p.owner_id, p.title, p.description, p.image_url, p.github_url, p.live_url, p.created_at, p.updated_at
		FROM projects p
		JOIN tech_stacks ts ON ts.project_id = p.id
		WHERE ts.name ILIKE $1
		ORDER BY p.created_at DESC
	`
	pattern := "%" + escapeLike(tech) + "%"
	return r.selectWithStacks(ctx, query, pattern)
}

// ListAll returns every project, newest first.
func (r *projectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	query := `
		SELECT id, owner_id, title, description, image_url, github_url, live_url, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
	`
	return r.selectWithStacks(ctx, query)
}

// GetByIDs retrieves multiple projects with stacks, preserving input order.
// Used for hydrating the explore list from the cache.
func (r *projectRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Project, error) {
	if len(ids) == 0 {
		return []model.Project{}, nil
	}

	query := `
		SELECT id, owner_id, title, description, image_url, github_url, live_url, created_at, updated_at
		FROM projects
		WHERE id = ANY($1)
	`
	var projects []model.Project
	if err := r.db.SelectContext(ctx, &projects, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get projects by ids: %w", err)
	}

	stacks, err := r.getTechStacks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].TechStacks = stacks[projects[i].ID]
	}

	// Re-order to match input order (the cache decides the ordering)
	byID := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	ordered := make([]model.Project, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// Exists checks if a project exists
func (r *projectRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check project exists: %w", err)
	}
	return exists, nil
}

func (r *projectRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM projects WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("count projects by owner: %w", err)
	}
	return count, nil
}

// CountLikesForOwner sums like counts across all of a user's projects.
func (r *projectRepository) CountLikesForOwner(ctx context.Context, ownerID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM likes l
		JOIN projects p ON p.id = l.project_id
		WHERE p.owner_id = $1
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("count likes for owner: %w", err)
	}
	return count, nil
}

// RecentIDs returns the newest projects (ids and timestamps only are used by
// callers) for warming the explore cache.
func (r *projectRepository) RecentIDs(ctx context.Context, limit int) ([]model.Project, error) {
	query := `
		SELECT id, owner_id, title, description, image_url, github_url, live_url, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1
	`
	var projects []model.Project
	if err := r.db.SelectContext(ctx, &projects, query, limit); err != nil {
		return nil, fmt.Errorf("get recent project ids: %w", err)
	}
	return projects, nil
}

// selectWithStacks runs a project query and attaches tech stacks in one batch.
func (r *projectRepository) selectWithStacks(ctx context.Context, query string, args ...interface{}) ([]model.Project, error) {
	var projects []model.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	stacks, err := r.getTechStacks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].TechStacks = stacks[projects[i].ID]
	}
	return projects, nil
}

// Helper: fetch tech stacks for multiple projects in one query
func (r *projectRepository) getTechStacks(ctx context.Context, projectIDs []string) (map[string][]model.TechStack, error) {
	result := make(map[string][]model.TechStack)
	if len(projectIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, project_id, name
		FROM tech_stacks
		WHERE project_id = ANY($1)
		ORDER BY project_id
	`
	var stacks []model.TechStack
	err := r.db.SelectContext(ctx, &stacks, query, pq.Array(projectIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get tech stacks: %w", err)
	}

	for _, s := range stacks {
		result[s.ProjectID] = append(result[s.ProjectID], s)
	}
	return result, nil
}

// insertTechStacks inserts the given names for a project inside tx. Names are
// stored as provided; duplicates stay as separate rows.
func insertTechStacks(ctx context.Context, tx *sqlx.Tx, projectID string, names []string) ([]model.TechStack, error) {
	stacks := make([]model.TechStack, 0, len(names))
	if len(names) == 0 {
		return stacks, nil
	}

	query := `INSERT INTO tech_stacks (id, project_id, name) VALUES ($1, $2, $3)`
	for _, name := range names {
		stack := model.TechStack{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Name:      name,
		}
		if _, err := tx.ExecContext(ctx, query, stack.ID, stack.ProjectID, stack.Name); err != nil {
			return nil, fmt.Errorf("insert tech stack %q: %w", name, err)
		}
		stacks = append(stacks, stack)
	}
	return stacks, nil
}

// escapeLike escapes LIKE metacharacters in user-supplied search input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
