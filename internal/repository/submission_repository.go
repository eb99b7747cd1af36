package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubselect/clubselect-api/internal/models"
)

// SubmissionRepository handles persistence of submissions. Submissions
// are create-once; there is no update path.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// FindByStudentAndProject returns the submission for the pair.
func (r *SubmissionRepository) FindByStudentAndProject(ctx context.Context, studentID, projectID string) (*models.Submission, error) {
	const query = `SELECT id, student_id, project_id, submitted_at FROM submissions
        WHERE student_id = $1 AND project_id = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, studentID, projectID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// Create persists a new submission. The unique (student_id, project_id)
// constraint is the authoritative create-once guard; a violation is
// reported as ErrDuplicate.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO submissions (id, student_id, project_id, submitted_at)
        VALUES (:id, :student_id, :project_id, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// ListByProject returns a project's submissions with student info,
// ordered by submission time.
func (r *SubmissionRepository) ListByProject(ctx context.Context, projectID string) ([]models.SubmissionDetail, error) {
	const query = `SELECT sub.id, sub.student_id, sub.project_id, sub.submitted_at,
        s.name AS student_name, s.token AS student_token
        FROM submissions sub
        JOIN students s ON s.id = sub.student_id
        WHERE sub.project_id = $1
        ORDER BY sub.submitted_at ASC`
	var submissions []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &submissions, query, projectID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

// DeleteByProject clears all submissions for a project (admin reset).
func (r *SubmissionRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	const query = `DELETE FROM submissions WHERE project_id = $1`
	result, err := r.db.ExecContext(ctx, query, projectID)
	if err != nil {
		return 0, fmt.Errorf("clear submissions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear submissions: %w", err)
	}
	return affected, nil
}
