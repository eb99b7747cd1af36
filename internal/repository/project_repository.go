package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubselect/clubselect-api/internal/models"
)

// ProjectRepository handles persistence of projects.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs the repository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, description, timezone, submission_start, submission_end, created_at, updated_at`

// FindByID returns a project by its ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		return nil, err
	}
	return &project, nil
}

// FindForStudent returns the project only when the student is assigned
// to it. Callers treat sql.ErrNoRows as "not found or not yours".
func (r *ProjectRepository) FindForStudent(ctx context.Context, projectID, studentID string) (*models.Project, error) {
	const query = `SELECT p.id, p.name, p.description, p.timezone, p.submission_start, p.submission_end, p.created_at, p.updated_at
        FROM projects p
        JOIN project_students ps ON ps.project_id = p.id
        WHERE p.id = $1 AND ps.student_id = $2`
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, projectID, studentID); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForStudent returns all projects the student is assigned to.
func (r *ProjectRepository) ListForStudent(ctx context.Context, studentID string) ([]models.Project, error) {
	const query = `SELECT p.id, p.name, p.description, p.timezone, p.submission_start, p.submission_end, p.created_at, p.updated_at
        FROM projects p
        JOIN project_students ps ON ps.project_id = p.id
        WHERE ps.student_id = $1
        ORDER BY p.created_at ASC`
	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, studentID); err != nil {
		return nil, fmt.Errorf("list student projects: %w", err)
	}
	return projects, nil
}

// List returns all projects ordered by creation time.
func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects ORDER BY created_at DESC`, projectColumns)
	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Create persists a new project.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	if project.Timezone == "" {
		project.Timezone = "UTC"
	}
	const query = `INSERT INTO projects (id, name, description, timezone, submission_start, submission_end, created_at, updated_at)
        VALUES (:id, :name, :description, :timezone, :submission_start, :submission_end, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// Update rewrites the mutable project fields.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()
	const query = `UPDATE projects SET name = :name, description = :description, timezone = :timezone,
        submission_start = :submission_start, submission_end = :submission_end, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// Delete removes a project and, through cascades, everything it owns.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM projects WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
