package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
)

type projectRepo interface {
	FindForStudent(ctx context.Context, projectID, studentID string) (*models.Project, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.Project, error)
}

type projectStudentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByToken(ctx context.Context, token string) (*models.Student, error)
}

type projectCourseRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Course, error)
	ListTagsByCourse(ctx context.Context, courseID string) ([]models.Tag, error)
	ListOccurrences(ctx context.Context, courseID string) ([]models.OccurrenceDetail, error)
}

type projectTagRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Tag, error)
}

type projectSectionRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.TimeSection, error)
}

type projectEnrollmentRepo interface {
	ListConfirmedCourseIDs(ctx context.Context, studentID, projectID string) ([]string, error)
	HasConfirmedInProject(ctx context.Context, studentID, projectID string) (bool, error)
}

type projectSubmissionRepo interface {
	FindByStudentAndProject(ctx context.Context, studentID, projectID string) (*models.Submission, error)
}

// EmbedCache abstracts the short-lived cache behind the embed widget.
type EmbedCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// EmbedCacheConfig tunes caching of the embed widget payload.
type EmbedCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type embedCacheMetrics interface {
	RecordCacheLookup(hit bool)
}

// ProjectService serves the student-facing project views. The detail
// view and the embed widget both derive their window status through
// DeriveStatus so the two surfaces can never disagree.
type ProjectService struct {
	projects    projectRepo
	students    projectStudentRepo
	courses     projectCourseRepo
	tags        projectTagRepo
	sections    projectSectionRepo
	enrollments projectEnrollmentRepo
	submissions projectSubmissionRepo
	cache       EmbedCache
	cacheCfg    EmbedCacheConfig
	metrics     embedCacheMetrics
	logger      *zap.Logger
}

// NewProjectService constructs a ProjectService instance. Cache and
// metrics may be nil when the embed cache is disabled.
func NewProjectService(projects projectRepo, students projectStudentRepo, courses projectCourseRepo, tags projectTagRepo, sections projectSectionRepo, enrollments projectEnrollmentRepo, submissions projectSubmissionRepo, cache EmbedCache, cacheCfg EmbedCacheConfig, metrics embedCacheMetrics, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projects:    projects,
		students:    students,
		courses:     courses,
		tags:        tags,
		sections:    sections,
		enrollments: enrollments,
		submissions: submissions,
		cache:       cache,
		cacheCfg:    cacheCfg,
		metrics:     metrics,
		logger:      logger,
	}
}

// ListForStudent returns the dashboard summary of every project the
// student is assigned to.
func (s *ProjectService) ListForStudent(ctx context.Context, studentID string) (*dto.StudentProjectsResponse, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	projects, err := s.projects.ListForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}

	summaries := make([]dto.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		enrolled, err := s.enrollments.HasConfirmedInProject(ctx, student.ID, p.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollments")
		}
		submission, err := s.findSubmission(ctx, student.ID, p.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, dto.ProjectSummary{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			Timezone:        p.Timezone,
			SubmissionStart: p.SubmissionStart,
			SubmissionEnd:   p.SubmissionEnd,
			HasEnrollment:   enrolled,
			HasSubmitted:    submission != nil,
		})
	}

	return &dto.StudentProjectsResponse{
		Student:  dto.StudentInfo{ID: student.ID, Name: student.Name, Token: student.Token},
		Projects: summaries,
	}, nil
}

// GetDetail returns the full project view for an assigned student,
// including courses, the student's own enrollments, and the derived
// window status.
func (s *ProjectService) GetDetail(ctx context.Context, studentID, projectID string) (*dto.ProjectDetail, error) {
	project, err := s.projects.FindForStudent(ctx, projectID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	sections, err := s.sections.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time sections")
	}

	tags, err := s.tags.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tags")
	}

	courses, err := s.courses.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}

	enrolledIDs, err := s.enrollments.ListConfirmedCourseIDs(ctx, studentID, project.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	enrolled := make(map[string]bool, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolled[id] = true
	}

	views := make([]dto.CourseView, 0, len(courses))
	for _, c := range courses {
		occurrences, err := s.courses.ListOccurrences(ctx, c.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occurrences")
		}
		courseTags, err := s.courses.ListTagsByCourse(ctx, c.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course tags")
		}
		views = append(views, dto.CourseView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Capacity:    c.Capacity,
			Occurrences: occurrences,
			Tags:        courseTags,
			IsEnrolled:  enrolled[c.ID],
		})
	}

	submission, err := s.findSubmission(ctx, studentID, project.ID)
	if err != nil {
		return nil, err
	}
	var submittedAt *time.Time
	if submission != nil {
		submittedAt = &submission.SubmittedAt
	}

	status := DeriveStatus(time.Now(), project, submission != nil, submittedAt)

	return &dto.ProjectDetail{
		ID:              project.ID,
		Name:            project.Name,
		Description:     project.Description,
		Timezone:        project.Timezone,
		SubmissionStart: project.SubmissionStart,
		SubmissionEnd:   project.SubmissionEnd,
		TimeSections:    sections,
		Tags:            tags,
		Courses:         views,
		HasSubmitted:    submission != nil,
		SubmittedAt:     submittedAt,
		Status:          status.Status,
		StatusMessage:   status.Message,
	}, nil
}

// EmbedStatus returns the status-widget payload for a student token.
// The widget is unauthenticated and polled by external pages, so the
// payload is cached briefly when caching is enabled. An empty projectID
// falls back to the student's oldest assigned project, so a widget can
// be embedded with the token alone.
func (s *ProjectService) EmbedStatus(ctx context.Context, studentToken, projectID string) (*dto.EmbedStatus, error) {
	if projectID == "" {
		fallback, err := s.defaultEmbedProject(ctx, studentToken)
		if err != nil {
			return nil, err
		}
		projectID = fallback
	}

	cacheKey := fmt.Sprintf("embed:%s:%s", studentToken, projectID)
	if s.cacheEnabled() {
		var cached dto.EmbedStatus
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.recordCacheLookup(true)
			return &cached, nil
		}
		s.recordCacheLookup(false)
	}

	student, err := s.students.FindByToken(ctx, studentToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown token")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	project, err := s.projects.FindForStudent(ctx, projectID, student.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	submission, err := s.findSubmission(ctx, student.ID, project.ID)
	if err != nil {
		return nil, err
	}
	var submittedAt *time.Time
	if submission != nil {
		submittedAt = &submission.SubmittedAt
	}

	status := DeriveStatus(time.Now(), project, submission != nil, submittedAt)

	payload := &dto.EmbedStatus{
		Project:       dto.ProjectBrief{ID: project.ID, Name: project.Name, Description: project.Description},
		HasSubmitted:  submission != nil,
		SubmittedAt:   submittedAt,
		Status:        status.Status,
		StatusMessage: status.Message,
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, cacheKey, payload, s.cacheCfg.TTL); err != nil {
			s.logger.Warn("failed to cache embed payload", zap.Error(err))
		}
	}
	return payload, nil
}

func (s *ProjectService) cacheEnabled() bool {
	return s.cacheCfg.Enabled && s.cache != nil
}

func (s *ProjectService) recordCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}

func (s *ProjectService) defaultEmbedProject(ctx context.Context, studentToken string) (string, error) {
	student, err := s.students.FindByToken(ctx, studentToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "unknown token")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	projects, err := s.projects.ListForStudent(ctx, student.ID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	if len(projects) == 0 {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no assigned projects")
	}
	return projects[0].ID, nil
}

func (s *ProjectService) findSubmission(ctx context.Context, studentID, projectID string) (*models.Submission, error) {
	submission, err := s.submissions.FindByStudentAndProject(ctx, studentID, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch submission")
	}
	return submission, nil
}
