package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubselect/clubselect-api/internal/models"
)

// TagRepository handles persistence of tags.
type TagRepository struct {
	db *sqlx.DB
}

// NewTagRepository constructs the repository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindByID returns a tag by its ID.
func (r *TagRepository) FindByID(ctx context.Context, id string) (*models.Tag, error) {
	const query = `SELECT id, project_id, name, color, min_required, max_allowed FROM tags WHERE id = $1`
	var tag models.Tag
	if err := r.db.GetContext(ctx, &tag, query, id); err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListByProject returns a project's tags ordered by name.
func (r *TagRepository) ListByProject(ctx context.Context, projectID string) ([]models.Tag, error) {
	const query = `SELECT id, project_id, name, color, min_required, max_allowed
        FROM tags WHERE project_id = $1 ORDER BY name ASC`
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, query, projectID); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Create persists a new tag.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}
	const query = `INSERT INTO tags (id, project_id, name, color, min_required, max_allowed)
        VALUES (:id, :project_id, :name, :color, :min_required, :max_allowed)`
	if _, err := r.db.NamedExecContext(ctx, query, tag); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// Update rewrites the tag fields.
func (r *TagRepository) Update(ctx context.Context, tag *models.Tag) error {
	const query = `UPDATE tags SET name = :name, color = :color, min_required = :min_required, max_allowed = :max_allowed
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, tag); err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return nil
}

// Delete removes a tag; course links cascade.
func (r *TagRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tags WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
