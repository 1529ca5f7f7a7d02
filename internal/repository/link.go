package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"devfolio/internal/model"
)

type linkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.ExternalLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}

	query := `
		INSERT INTO external_links (id, user_id, title, url, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	row := r.db.QueryRowxContext(ctx, query, link.ID, link.UserID, link.Title, link.URL)
	if err := row.Scan(&link.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}
	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*model.ExternalLink, error) {
	query := `
		SELECT id, user_id, title, url, created_at
		FROM external_links
		WHERE id = $1
	`
	var link model.ExternalLink
	err := r.db.GetContext(ctx, &link, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

func (r *linkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM external_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrLinkNotFound
	}
	return nil
}

func (r *linkRepository) ListByUser(ctx context.Context, userID string) ([]model.ExternalLink, error) {
	query := `
		SELECT id, user_id, title, url, created_at
		FROM external_links
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	links := []model.ExternalLink{}
	if err := r.db.SelectContext(ctx, &links, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}
