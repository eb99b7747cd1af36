package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	"github.com/clubselect/clubselect-api/internal/repository"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	existing map[string]bool
	capacity map[string]int
	counts   map[string]int
	created  *models.Enrollment
}

func enrollKey(studentID, courseID string) string { return studentID + "/" + courseID }

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	return m.existing[enrollKey(studentID, courseID)], nil
}

func (m *mockEnrollmentRepo) FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	if !m.existing[enrollKey(studentID, courseID)] {
		return nil, sql.ErrNoRows
	}
	return &models.Enrollment{
		ID:        "enrollment-" + courseID,
		StudentID: studentID,
		CourseID:  courseID,
		Status:    models.EnrollmentStatusConfirmed,
	}, nil
}

func (m *mockEnrollmentRepo) CreateConfirmedWithCapacity(ctx context.Context, enrollment *models.Enrollment) error {
	if m.existing[enrollKey(enrollment.StudentID, enrollment.CourseID)] {
		return repository.ErrDuplicate
	}
	if cap, ok := m.capacity[enrollment.CourseID]; ok && m.counts[enrollment.CourseID] >= cap {
		return repository.ErrCourseFull
	}
	if m.existing == nil {
		m.existing = make(map[string]bool)
	}
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.existing[enrollKey(enrollment.StudentID, enrollment.CourseID)] = true
	m.counts[enrollment.CourseID]++
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, studentID, courseID string) error {
	key := enrollKey(studentID, courseID)
	if !m.existing[key] {
		return sql.ErrNoRows
	}
	delete(m.existing, key)
	m.counts[courseID]--
	return nil
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentReader struct {
	students map[string]*models.Student
	assigned map[string]bool
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentReader) IsAssigned(ctx context.Context, studentID, projectID string) (bool, error) {
	return m.assigned[studentID+"/"+projectID], nil
}

func newEnrollmentFixture() (*EnrollmentService, *mockEnrollmentRepo) {
	enrollments := &mockEnrollmentRepo{
		existing: map[string]bool{},
		capacity: map[string]int{},
		counts:   map[string]int{},
	}
	courses := &mockCourseReader{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", ProjectID: "project-1", Name: "Chess"},
	}}
	students := &mockStudentReader{
		students: map[string]*models.Student{
			"student-1": {ID: "student-1", Token: "abcdef123456"},
			"student-2": {ID: "student-2", Token: "fedcba654321"},
		},
		assigned: map[string]bool{
			"student-1/project-1": true,
			"student-2/project-1": true,
		},
	}
	return NewEnrollmentService(enrollments, courses, students, nil, nil), enrollments
}

func TestEnrollCreatesConfirmedEnrollment(t *testing.T) {
	svc, repo := newEnrollmentFixture()

	view, err := svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "course-1"})
	require.NoError(t, err)
	assert.Equal(t, "course-1", view.CourseID)
	assert.Equal(t, models.EnrollmentStatusConfirmed, view.Status)
	require.NotNil(t, repo.created)
	assert.Equal(t, "student-1", repo.created.StudentID)
}

func TestEnrollUnknownCourse(t *testing.T) {
	svc, _ := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollUnassignedStudentForbidden(t *testing.T) {
	svc, _ := newEnrollmentFixture()
	svc.students.(*mockStudentReader).assigned["student-2/project-1"] = false

	_, err := svc.Enroll(context.Background(), "student-2", dto.EnrollRequest{CourseID: "course-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEnrollTwiceConflicts(t *testing.T) {
	svc, _ := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "course-1"})
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "course-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollFullCourseRejected(t *testing.T) {
	svc, repo := newEnrollmentFixture()
	repo.capacity["course-1"] = 1

	_, err := svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "course-1"})
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), "student-2", dto.EnrollRequest{CourseID: "course-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErrors.FromError(err).Code)
}

func TestUnenrollRemovesEnrollment(t *testing.T) {
	svc, repo := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "course-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Unenroll(context.Background(), "student-1", "course-1"))
	assert.False(t, repo.existing[enrollKey("student-1", "course-1")])
}

func TestUnenrollWithoutEnrollmentNotFound(t *testing.T) {
	svc, _ := newEnrollmentFixture()

	err := svc.Unenroll(context.Background(), "student-1", "course-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUnenrollUnknownStudentNotFound(t *testing.T) {
	svc, _ := newEnrollmentFixture()

	err := svc.Unenroll(context.Background(), "ghost", "course-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUnenrollUnassignedStudentForbidden(t *testing.T) {
	// A student removed from the roster keeps their enrollment: the
	// assignment check guards the delete as well as the create.
	svc, repo := newEnrollmentFixture()

	_, err := svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "course-1"})
	require.NoError(t, err)

	svc.students.(*mockStudentReader).assigned["student-1/project-1"] = false

	err = svc.Unenroll(context.Background(), "student-1", "course-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.True(t, repo.existing[enrollKey("student-1", "course-1")])
}

func TestEnrollmentStaysMutableAfterSubmission(t *testing.T) {
	// Submitting records a marker, not a freeze: the student can still
	// change courses afterwards, and only a second submit conflicts.
	svc, repo := newEnrollmentFixture()
	svc.courses.(*mockCourseReader).courses["course-2"] = &models.Course{ID: "course-2", ProjectID: "project-1", Name: "Robotics"}

	_, err := svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "course-1"})
	require.NoError(t, err)

	f := newSubmissionFixture()
	f.enrollments.courseIDs = []string{"course-1"}
	_, err = f.svc.Submit(context.Background(), "student-1", "project-1")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), "student-1", dto.EnrollRequest{CourseID: "course-2"})
	require.NoError(t, err)
	require.NoError(t, svc.Unenroll(context.Background(), "student-1", "course-1"))
	assert.True(t, repo.existing[enrollKey("student-1", "course-2")])

	_, err = f.svc.Submit(context.Background(), "student-1", "project-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
