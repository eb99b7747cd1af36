package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clubselect/clubselect-api/internal/models"
)

// CourseRepository handles persistence of courses, their tags, and
// occurrences.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, project_id, name, description, capacity, created_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListByProject returns a project's courses ordered by name.
func (r *CourseRepository) ListByProject(ctx context.Context, projectID string) ([]models.Course, error) {
	const query = `SELECT id, project_id, name, description, capacity, created_at
        FROM courses WHERE project_id = $1 ORDER BY name ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, projectID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListTagsByCourse returns the tags attached to a course.
func (r *CourseRepository) ListTagsByCourse(ctx context.Context, courseID string) ([]models.Tag, error) {
	const query = `SELECT t.id, t.project_id, t.name, t.color, t.min_required, t.max_allowed
        FROM tags t
        JOIN course_tags ct ON ct.tag_id = t.id
        WHERE ct.course_id = $1
        ORDER BY t.name ASC`
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, query, courseID); err != nil {
		return nil, fmt.Errorf("list course tags: %w", err)
	}
	return tags, nil
}

// ListOccurrences returns a course's occurrences with section info,
// ordered by day then section order.
func (r *CourseRepository) ListOccurrences(ctx context.Context, courseID string) ([]models.OccurrenceDetail, error) {
	const query = `SELECT o.id, o.course_id, o.day_of_week, o.section_id,
        ts.label AS section_label, ts.start_time, ts.end_time
        FROM occurrences o
        JOIN time_sections ts ON ts.id = o.section_id
        WHERE o.course_id = $1
        ORDER BY o.day_of_week ASC, ts.sort_order ASC`
	var occurrences []models.OccurrenceDetail
	if err := r.db.SelectContext(ctx, &occurrences, query, courseID); err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	return occurrences, nil
}

// Create persists the course with its occurrences and tag links in one
// transaction.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course, occurrences []models.Occurrence, tagIDs []string) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create course: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertCourse = `INSERT INTO courses (id, project_id, name, description, capacity, created_at)
        VALUES (:id, :project_id, :name, :description, :capacity, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertCourse, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	if err = r.writeLinks(ctx, tx, course.ID, occurrences, tagIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create course: %w", err)
	}
	return nil
}

// Update rewrites the course fields and replaces its occurrences and tag
// links.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course, occurrences []models.Occurrence, tagIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update course: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateCourse = `UPDATE courses SET name = :name, description = :description, capacity = :capacity WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, updateCourse, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM occurrences WHERE course_id = $1`, course.ID); err != nil {
		return fmt.Errorf("clear occurrences: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM course_tags WHERE course_id = $1`, course.ID); err != nil {
		return fmt.Errorf("clear course tags: %w", err)
	}

	if err = r.writeLinks(ctx, tx, course.ID, occurrences, tagIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update course: %w", err)
	}
	return nil
}

func (r *CourseRepository) writeLinks(ctx context.Context, tx *sqlx.Tx, courseID string, occurrences []models.Occurrence, tagIDs []string) error {
	const insertOccurrence = `INSERT INTO occurrences (id, course_id, day_of_week, section_id)
        VALUES (:id, :course_id, :day_of_week, :section_id)`
	for i := range occurrences {
		occurrences[i].CourseID = courseID
		if occurrences[i].ID == "" {
			occurrences[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, insertOccurrence, &occurrences[i]); err != nil {
			return fmt.Errorf("create occurrence: %w", err)
		}
	}

	const insertTag = `INSERT INTO course_tags (course_id, tag_id) VALUES ($1, $2)`
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, insertTag, courseID, tagID); err != nil {
			return fmt.Errorf("link course tag: %w", err)
		}
	}
	return nil
}

// Delete removes a course; enrollments and links cascade.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
