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

// relationTable maps a relation kind to its physical table. All three tables
// share the same shape; only the column names differ for follows.
type relationTable struct {
	name      string
	sourceCol string
	targetCol string
}

var relationTables = map[model.Relation]relationTable{
	model.RelationFollow:   {name: "follows", sourceCol: "follower_id", targetCol: "following_id"},
	model.RelationLike:     {name: "likes", sourceCol: "user_id", targetCol: "project_id"},
	model.RelationBookmark: {name: "bookmarks", sourceCol: "user_id", targetCol: "project_id"},
}

type relationRepository struct {
	db *sqlx.DB
}

func NewRelationRepository(db *sqlx.DB) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) table(rel model.Relation) (relationTable, error) {
	t, ok := relationTables[rel]
	if !ok {
		return relationTable{}, fmt.Errorf("unknown relation %v", rel)
	}
	return t, nil
}

func (r *relationRepository) Exists(ctx context.Context, rel model.Relation, sourceID, targetID string) (bool, error) {
	t, err := r.table(rel)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		t.name, t.sourceCol, t.targetCol)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, sourceID, targetID); err != nil {
		return false, fmt.Errorf("check %s existence: %w", rel, err)
	}
	return exists, nil
}

// Create inserts the edge with a single constrained statement and returns it.
// The unique index on (source, target) is the only arbiter of "already
// exists": a racing insert that loses gets no row back and model.ErrEdgeExists.
func (r *relationRepository) Create(ctx context.Context, rel model.Relation, sourceID, targetID string) (*model.Edge, error) {
	t, err := r.table(rel)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING
		RETURNING id, created_at
	`, t.name, t.sourceCol, t.targetCol, t.sourceCol, t.targetCol)

	edge := model.Edge{SourceID: sourceID, TargetID: targetID}
	err = r.db.QueryRowxContext(ctx, query, uuid.NewString(), sourceID, targetID).
		Scan(&edge.ID, &edge.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrEdgeExists
	}
	if err != nil {
		return nil, fmt.Errorf("create %s edge: %w", rel, err)
	}
	return &edge, nil
}

func (r *relationRepository) Delete(ctx context.Context, rel model.Relation, sourceID, targetID string) error {
	t, err := r.table(rel)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.name, t.sourceCol, t.targetCol)
	result, err := r.db.ExecContext(ctx, query, sourceID, targetID)
	if err != nil {
		return fmt.Errorf("delete %s edge: %w", rel, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrEdgeNotFound
	}
	return nil
}

func (r *relationRepository) CountByTarget(ctx context.Context, rel model.Relation, targetID string) (int, error) {
	t, err := r.table(rel)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, t.name, t.targetCol)
	var count int
	if err := r.db.GetContext(ctx, &count, query, targetID); err != nil {
		return 0, fmt.Errorf("count %s by target: %w", rel, err)
	}
	return count, nil
}

func (r *relationRepository) CountBySource(ctx context.Context, rel model.Relation, sourceID string) (int, error) {
	t, err := r.table(rel)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, t.name, t.sourceCol)
	var count int
	if err := r.db.GetContext(ctx, &count, query, sourceID); err != nil {
		return 0, fmt.Errorf("count %s by source: %w", rel, err)
	}
	return count, nil
}

// CountManyByTarget fetches counts for a batch of targets in one query.
// Targets with no edges are present in the result with a zero count.
func (r *relationRepository) CountManyByTarget(ctx context.Context, rel model.Relation, targetIDs []string) (map[string]int, error) {
	result := make(map[string]int, len(targetIDs))
	for _, id := range targetIDs {
		result[id] = 0
	}
	if len(targetIDs) == 0 {
		return result, nil
	}

	t, err := r.table(rel)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s AS target_id, COUNT(*) AS count FROM %s WHERE %s = ANY($1) GROUP BY %s`,
		t.targetCol, t.name, t.targetCol, t.targetCol)

	type row struct {
		TargetID string `db:"target_id"`
		Count    int    `db:"count"`
	}
	var rows []row
	err = r.db.SelectContext(ctx, &rows, query, pq.Array(targetIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("count %s by targets: %w", rel, err)
	}

	for _, row := range rows {
		result[row.TargetID] = row.Count
	}
	return result, nil
}

// CheckMany reports which targets have an edge from sourceID, one query for the
// whole batch rather than one per target.
func (r *relationRepository) CheckMany(ctx context.Context, rel model.Relation, sourceID string, targetIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		result[id] = false
	}
	if len(targetIDs) == 0 {
		return result, nil
	}

	t, err := r.table(rel)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = ANY($2)`,
		t.targetCol, t.name, t.sourceCol, t.targetCol)

	var matched []string
	err = r.db.SelectContext(ctx, &matched, query, sourceID, pq.Array(targetIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check %s edges: %w", rel, err)
	}

	for _, id := range matched {
		result[id] = true
	}
	return result, nil
}
