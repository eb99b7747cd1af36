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
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
)

type courseRepo interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Course, error)
	ListTagsByCourse(ctx context.Context, courseID string) ([]models.Tag, error)
	ListOccurrences(ctx context.Context, courseID string) ([]models.OccurrenceDetail, error)
	Create(ctx context.Context, course *models.Course, occurrences []models.Occurrence, tagIDs []string) error
	Update(ctx context.Context, course *models.Course, occurrences []models.Occurrence, tagIDs []string) error
	Delete(ctx context.Context, id string) error
}

type courseProjectRepo interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
}

type courseTagRepo interface {
	FindByID(ctx context.Context, id string) (*models.Tag, error)
}

type courseSectionRepo interface {
	FindByID(ctx context.Context, id string) (*models.TimeSection, error)
}

type courseEnrollmentRepo interface {
	CountConfirmedByCourse(ctx context.Context, courseID string) (int, error)
}

// CourseDetail is a course with its schedule, tags, and seat usage.
type CourseDetail struct {
	models.Course
	Occurrences   []models.OccurrenceDetail `json:"occurrences"`
	Tags          []models.Tag              `json:"tags"`
	EnrolledCount int                       `json:"enrolled_count"`
}

// CourseService owns the admin course CRUD. Tag and section references
// are checked against the owning project before writing so a course can
// never point across projects.
type CourseService struct {
	courses     courseRepo
	projects    courseProjectRepo
	tags        courseTagRepo
	sections    courseSectionRepo
	enrollments courseEnrollmentRepo
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(courses courseRepo, projects courseProjectRepo, tags courseTagRepo, sections courseSectionRepo, enrollments courseEnrollmentRepo, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{courses: courses, projects: projects, tags: tags, sections: sections, enrollments: enrollments, validator: validate, logger: logger}
}

// ListByProject returns a project's courses with schedule, tags, and
// seat counts.
func (s *CourseService) ListByProject(ctx context.Context, projectID string) ([]CourseDetail, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	courses, err := s.courses.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	details := make([]CourseDetail, 0, len(courses))
	for _, c := range courses {
		detail, err := s.decorate(ctx, c)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// Get returns a single course with its schedule and tags.
func (s *CourseService) Get(ctx context.Context, id string) (*CourseDetail, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}
	return s.decorate(ctx, *course)
}

// Create adds a course to a project.
func (s *CourseService) Create(ctx context.Context, projectID string, req dto.CourseRequest) (*CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	course := &models.Course{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
	}
	occurrences, err := s.resolveLinks(ctx, course, req)
	if err != nil {
		return nil, err
	}

	if err := s.courses.Create(ctx, course, occurrences, req.TagIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("project_id", projectID))
	return s.decorate(ctx, *course)
}

// Update replaces a course's fields, schedule, and tags. Shrinking the
// capacity below the current confirmed count is rejected; existing
// seats are never revoked.
func (s *CourseService) Update(ctx context.Context, id string, req dto.CourseRequest) (*CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	if req.Capacity != nil {
		confirmed, err := s.enrollments.CountConfirmedByCourse(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}
		if confirmed > *req.Capacity {
			return nil, appErrors.Clone(appErrors.ErrConflict, "capacity is below the current enrollment count")
		}
	}

	course.Name = req.Name
	course.Description = req.Description
	course.Capacity = req.Capacity

	occurrences, err := s.resolveLinks(ctx, course, req)
	if err != nil {
		return nil, err
	}

	if err := s.courses.Update(ctx, course, occurrences, req.TagIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return s.decorate(ctx, *course)
}

// Delete removes a course and its enrollments.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("course_id", id))
	return nil
}

func (s *CourseService) resolveLinks(ctx context.Context, course *models.Course, req dto.CourseRequest) ([]models.Occurrence, error) {
	for _, tagID := range req.TagIDs {
		tag, err := s.tags.FindByID(ctx, tagID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown tag")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch tag")
		}
		if tag.ProjectID != course.ProjectID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "tag belongs to a different project")
		}
	}

	occurrences := make([]models.Occurrence, 0, len(req.Occurrences))
	for _, occ := range req.Occurrences {
		section, err := s.sections.FindByID(ctx, occ.SectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown time section")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch time section")
		}
		if section.ProjectID != course.ProjectID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "time section belongs to a different project")
		}
		occurrences = append(occurrences, models.Occurrence{
			ID:        uuid.NewString(),
			CourseID:  course.ID,
			DayOfWeek: occ.DayOfWeek,
			SectionID: occ.SectionID,
		})
	}
	return occurrences, nil
}

func (s *CourseService) decorate(ctx context.Context, course models.Course) (*CourseDetail, error) {
	occurrences, err := s.courses.ListOccurrences(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
	}
	tags, err := s.courses.ListTagsByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course tags")
	}
	confirmed, err := s.enrollments.CountConfirmedByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	return &CourseDetail{Course: course, Occurrences: occurrences, Tags: tags, EnrolledCount: confirmed}, nil
}
