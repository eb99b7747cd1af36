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

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByStudentAndCourse returns the enrollment for the pair.
func (r *EnrollmentRepository) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, status, created_at FROM enrollments
        WHERE student_id = $1 AND course_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists checks for an enrollment on the (student, course) pair.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// CountConfirmedByCourse returns the number of CONFIRMED enrollments in a
// course.
func (r *EnrollmentRepository) CountConfirmedByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, models.EnrollmentStatusConfirmed); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}

// CreateConfirmedWithCapacity inserts a CONFIRMED enrollment while
// holding a row lock on the course, so the capacity count and the insert
// act as one atomic step against concurrent enrolls for the same course.
// Returns ErrCourseFull when the course has a capacity and it is already
// reached, ErrDuplicate when the (student, course) pair already exists.
func (r *EnrollmentRepository) CreateConfirmedWithCapacity(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	enrollment.Status = models.EnrollmentStatusConfirmed

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity *int
	if err = tx.GetContext(ctx, &capacity, `SELECT capacity FROM courses WHERE id = $1 FOR UPDATE`, enrollment.CourseID); err != nil {
		return fmt.Errorf("lock course: %w", err)
	}

	if capacity != nil {
		var confirmed int
		if err = tx.GetContext(ctx, &confirmed, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2`,
			enrollment.CourseID, models.EnrollmentStatusConfirmed); err != nil {
			return fmt.Errorf("count enrollments: %w", err)
		}
		if confirmed >= *capacity {
			err = ErrCourseFull
			return err
		}
	}

	const insert = `INSERT INTO enrollments (id, student_id, course_id, status, created_at)
        VALUES (:id, :student_id, :course_id, :status, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, enrollment); err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicate
			return err
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit enroll: %w", err)
	}
	return nil
}

// Delete hard-deletes the enrollment for the pair. Returns sql.ErrNoRows
// when nothing was deleted.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, courseID string) error {
	const query = `DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`
	result, err := r.db.ExecContext(ctx, query, studentID, courseID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListConfirmedCourseIDs returns the IDs of courses in the project where
// the student holds a CONFIRMED enrollment.
func (r *EnrollmentRepository) ListConfirmedCourseIDs(ctx context.Context, studentID, projectID string) ([]string, error) {
	const query = `SELECT e.course_id FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND c.project_id = $2 AND e.status = $3`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID, projectID, models.EnrollmentStatusConfirmed); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return ids, nil
}

// HasConfirmedInProject reports whether the student holds any CONFIRMED
// enrollment in the project's courses.
func (r *EnrollmentRepository) HasConfirmedInProject(ctx context.Context, studentID, projectID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND c.project_id = $2 AND e.status = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, projectID, models.EnrollmentStatusConfirmed); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check project enrollment: %w", err)
	}
	return true, nil
}
