package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubselect/clubselect-api/internal/models"
)

// StudentRepository handles persistence of students and their project
// assignments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByToken returns the student owning the opaque token.
func (r *StudentRepository) FindByToken(ctx context.Context, token string) (*models.Student, error) {
	const query = `SELECT id, token, name, created_at FROM students WHERE token = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, token); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByID returns a student by its ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, token, name, created_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpsertByToken creates the student if the token is new and returns the
// stored row either way. Existing rows keep their name so repeated roster
// imports stay idempotent.
func (r *StudentRepository) UpsertByToken(ctx context.Context, tok, name string) (*models.Student, error) {
	const query = `INSERT INTO students (id, token, name, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (token) DO UPDATE SET token = EXCLUDED.token
        RETURNING id, token, name, created_at`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, uuid.NewString(), tok, name, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert student: %w", err)
	}
	return &student, nil
}

// IsAssigned checks whether the student is assigned to the project.
func (r *StudentRepository) IsAssigned(ctx context.Context, studentID, projectID string) (bool, error) {
	const query = `SELECT 1 FROM project_students WHERE student_id = $1 AND project_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, projectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return true, nil
}

// Assign links a student to a project. Re-assigning is a no-op.
func (r *StudentRepository) Assign(ctx context.Context, projectID, studentID string) error {
	const query = `INSERT INTO project_students (project_id, student_id)
        VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, projectID, studentID); err != nil {
		return fmt.Errorf("assign student: %w", err)
	}
	return nil
}

// Unassign removes a student from a project roster. Returns sql.ErrNoRows
// when the student was not assigned, so callers can report it instead of
// pretending the removal happened.
func (r *StudentRepository) Unassign(ctx context.Context, projectID, studentID string) error {
	const query = `DELETE FROM project_students WHERE project_id = $1 AND student_id = $2`
	result, err := r.db.ExecContext(ctx, query, projectID, studentID)
	if err != nil {
		return fmt.Errorf("unassign student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unassign student: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByProject returns the project roster ordered by name.
func (r *StudentRepository) ListByProject(ctx context.Context, projectID string) ([]models.Student, error) {
	const query = `SELECT s.id, s.token, s.name, s.created_at
        FROM students s
        JOIN project_students ps ON ps.student_id = s.id
        WHERE ps.project_id = $1
        ORDER BY s.name ASC NULLS LAST`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, projectID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return students, nil
}

// CountByProject returns the roster size.
func (r *StudentRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	const query = `SELECT COUNT(*) FROM project_students WHERE project_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, projectID); err != nil {
		return 0, fmt.Errorf("count roster: %w", err)
	}
	return count, nil
}
