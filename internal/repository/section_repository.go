package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubselect/clubselect-api/internal/models"
)

// SectionRepository handles persistence of time sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByID returns a time section by its ID.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.TimeSection, error) {
	const query = `SELECT id, project_id, label, start_time, end_time, sort_order, created_at
        FROM time_sections WHERE id = $1`
	var section models.TimeSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// ListByProject returns a project's sections in display order.
func (r *SectionRepository) ListByProject(ctx context.Context, projectID string) ([]models.TimeSection, error) {
	const query = `SELECT id, project_id, label, start_time, end_time, sort_order, created_at
        FROM time_sections WHERE project_id = $1 ORDER BY sort_order ASC`
	var sections []models.TimeSection
	if err := r.db.SelectContext(ctx, &sections, query, projectID); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// NextOrder returns the next free sort position for the project.
func (r *SectionRepository) NextOrder(ctx context.Context, projectID string) (int, error) {
	const query = `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM time_sections WHERE project_id = $1`
	var next int
	if err := r.db.GetContext(ctx, &next, query, projectID); err != nil {
		return 0, fmt.Errorf("next section order: %w", err)
	}
	return next, nil
}

// Create persists a new time section.
func (r *SectionRepository) Create(ctx context.Context, section *models.TimeSection) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if section.CreatedAt.IsZero() {
		section.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO time_sections (id, project_id, label, start_time, end_time, sort_order, created_at)
        VALUES (:id, :project_id, :label, :start_time, :end_time, :sort_order, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update rewrites the section fields.
func (r *SectionRepository) Update(ctx context.Context, section *models.TimeSection) error {
	const query = `UPDATE time_sections SET label = :label, start_time = :start_time, end_time = :end_time, sort_order = :sort_order
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a time section; occurrences cascade.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM time_sections WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}
