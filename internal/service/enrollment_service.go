package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	"github.com/clubselect/clubselect-api/internal/repository"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
)

type enrollmentRepo interface {
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	FindByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	CreateConfirmedWithCapacity(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, studentID, courseID string) error
}

type enrollmentCourseRepo interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type enrollmentStudentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	IsAssigned(ctx context.Context, studentID, projectID string) (bool, error)
}

// EnrollmentService owns the enroll/unenroll flows. Enrolling is
// deliberately not idempotent: a repeat request is a client bug and is
// answered with a conflict rather than silently absorbed.
type EnrollmentService struct {
	enrollments enrollmentRepo
	courses     enrollmentCourseRepo
	students    enrollmentStudentRepo
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(enrollments enrollmentRepo, courses enrollmentCourseRepo, students enrollmentStudentRepo, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{enrollments: enrollments, courses: courses, students: students, validator: validate, logger: logger}
}

// Enroll places a student into a course. The capacity check happens
// inside the repository transaction; everything before it is cheap
// precondition screening.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, req dto.EnrollRequest) (*dto.EnrollmentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "course_id is required")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	assigned, err := s.students.IsAssigned(ctx, student.ID, course.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check project assignment")
	}
	if !assigned {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this project")
	}

	exists, err := s.enrollments.Exists(ctx, student.ID, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
	}

	enrollment := &models.Enrollment{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		CourseID:  course.ID,
		Status:    models.EnrollmentStatusConfirmed,
	}

	if err := s.enrollments.CreateConfirmedWithCapacity(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, repository.ErrCourseFull):
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "course is full")
		case errors.Is(err, repository.ErrDuplicate):
			// The unique constraint caught a race the Exists check missed.
			return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
		}
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", student.ID),
		zap.String("course_id", course.ID),
	)

	return &dto.EnrollmentView{
		EnrollmentID: enrollment.ID,
		CourseID:     enrollment.CourseID,
		Status:       enrollment.Status,
		CreatedAt:    enrollment.CreatedAt,
	}, nil
}

// Unenroll removes a student's enrollment in a course. Removing a
// non-existent enrollment is a not-found, mirroring the non-idempotent
// enroll side. The assignment check runs even though enrolling already
// required it: a student removed from the roster keeps their enrollment
// frozen rather than being allowed to dismantle it.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, courseID string) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	enrollment, err := s.enrollments.FindByStudentAndCourse(ctx, student.ID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch enrollment")
	}

	course, err := s.courses.FindByID(ctx, enrollment.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	assigned, err := s.students.IsAssigned(ctx, student.ID, course.ProjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check project assignment")
	}
	if !assigned {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this project")
	}

	if err := s.enrollments.Delete(ctx, student.ID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}

	s.logger.Info("student unenrolled",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
	)
	return nil
}
