package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	"github.com/clubselect/clubselect-api/internal/repository"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
)

type submissionRepo interface {
	FindByStudentAndProject(ctx context.Context, studentID, projectID string) (*models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
}

type submissionProjectRepo interface {
	FindForStudent(ctx context.Context, projectID, studentID string) (*models.Project, error)
}

type submissionTagRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Tag, error)
}

type submissionCourseRepo interface {
	ListTagsByCourse(ctx context.Context, courseID string) ([]models.Tag, error)
}

type submissionEnrollmentRepo interface {
	ListConfirmedCourseIDs(ctx context.Context, studentID, projectID string) ([]string, error)
}

type submissionStudentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// SubmissionService finalizes a student's course selections. Quota
// validation is fail-fast: tags are checked in project order and the
// first violation aborts, min before max within a tag.
type SubmissionService struct {
	submissions submissionRepo
	projects    submissionProjectRepo
	tags        submissionTagRepo
	courses     submissionCourseRepo
	enrollments submissionEnrollmentRepo
	students    submissionStudentRepo
	cache       CacheInvalidator
	logger      *zap.Logger
}

// NewSubmissionService constructs a SubmissionService instance. Cache may
// be nil when the embed cache is disabled.
func NewSubmissionService(submissions submissionRepo, projects submissionProjectRepo, tags submissionTagRepo, courses submissionCourseRepo, enrollments submissionEnrollmentRepo, students submissionStudentRepo, cache CacheInvalidator, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		submissions: submissions,
		projects:    projects,
		tags:        tags,
		courses:     courses,
		enrollments: enrollments,
		students:    students,
		cache:       cache,
		logger:      logger,
	}
}

// Submit validates the student's enrollments against every tag quota
// and records the submission. Submissions are create-once: a second
// call conflicts, and the unique constraint backs the pre-check.
func (s *SubmissionService) Submit(ctx context.Context, studentID, projectID string) (*dto.SubmissionView, error) {
	project, err := s.projects.FindForStudent(ctx, projectID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	existing, err := s.submissions.FindByStudentAndProject(ctx, studentID, project.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing submission")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "selections were already submitted")
	}

	if err := s.validateQuotas(ctx, studentID, project.ID); err != nil {
		return nil, err
	}

	submission := &models.Submission{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		ProjectID:   project.ID,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "selections were already submitted")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}

	s.invalidateEmbed(ctx, studentID, project.ID)

	s.logger.Info("selections submitted",
		zap.String("student_id", studentID),
		zap.String("project_id", project.ID),
	)

	return &dto.SubmissionView{SubmissionID: submission.ID, SubmittedAt: submission.SubmittedAt}, nil
}

// invalidateEmbed drops the student's cached widget payload so the embed
// reflects the submission immediately instead of waiting out the TTL.
func (s *SubmissionService) invalidateEmbed(ctx context.Context, studentID, projectID string) {
	if s.cache == nil {
		return
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		s.logger.Warn("failed to resolve student for embed invalidation", zap.Error(err))
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("embed:%s:%s", student.Token, projectID)); err != nil {
		s.logger.Warn("failed to invalidate embed cache", zap.Error(err))
	}
}

func (s *SubmissionService) validateQuotas(ctx context.Context, studentID, projectID string) error {
	tags, err := s.tags.ListByProject(ctx, projectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tags")
	}
	if len(tags) == 0 {
		return nil
	}

	courseIDs, err := s.enrollments.ListConfirmedCourseIDs(ctx, studentID, projectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	counts := make(map[string]int, len(tags))
	for _, courseID := range courseIDs {
		courseTags, err := s.courses.ListTagsByCourse(ctx, courseID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course tags")
		}
		for _, t := range courseTags {
			counts[t.ID]++
		}
	}

	for _, tag := range tags {
		count := counts[tag.ID]
		if count < tag.MinRequired {
			return appErrors.Clone(appErrors.ErrQuotaViolation,
				fmt.Sprintf("You must select at least %d course(s) from %q", tag.MinRequired, tag.Name))
		}
		if tag.MaxAllowed != nil && count > *tag.MaxAllowed {
			return appErrors.Clone(appErrors.ErrQuotaViolation,
				fmt.Sprintf("You can select at most %d course(s) from %q", *tag.MaxAllowed, tag.Name))
		}
	}
	return nil
}
