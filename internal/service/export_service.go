package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/export"
)

const exportTimeLayout = "2006-01-02 15:04:05"

type exportSubmissionRepo interface {
	ListByProject(ctx context.Context, projectID string) ([]models.SubmissionDetail, error)
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
}

type exportProjectRepo interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
}

type exportEnrollmentRepo interface {
	ListConfirmedCourseIDs(ctx context.Context, studentID, projectID string) ([]string, error)
}

type exportCourseRepo interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// CacheInvalidator drops cached payloads matching a key pattern.
type CacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ExportService renders submission reports and owns the admin reset of
// a project's submissions.
type ExportService struct {
	submissions exportSubmissionRepo
	projects    exportProjectRepo
	enrollments exportEnrollmentRepo
	courses     exportCourseRepo
	cache       CacheInvalidator
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs an ExportService instance. Cache may be
// nil when the embed cache is disabled.
func NewExportService(submissions exportSubmissionRepo, projects exportProjectRepo, enrollments exportEnrollmentRepo, courses exportCourseRepo, cache CacheInvalidator, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		submissions: submissions,
		projects:    projects,
		enrollments: enrollments,
		courses:     courses,
		cache:       cache,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// ExportSubmissions renders a project's submissions, one row per
// student with their confirmed course names, as CSV or PDF.
func (s *ExportService) ExportSubmissions(ctx context.Context, projectID, format string) (*dto.ExportFile, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	submissions, err := s.submissions.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Token", "Submitted At", "Courses"},
		Rows:    make([][]string, 0, len(submissions)),
	}
	for _, sub := range submissions {
		courseNames, err := s.courseNames(ctx, sub.StudentID, projectID)
		if err != nil {
			return nil, err
		}
		name := sub.StudentToken
		if sub.StudentName != nil {
			name = *sub.StudentName
		}
		dataset.Rows = append(dataset.Rows, []string{
			name,
			sub.StudentToken,
			sub.SubmittedAt.UTC().Format(exportTimeLayout),
			courseNames,
		})
	}

	switch format {
	case "pdf":
		content, err := s.pdf.Render(dataset, fmt.Sprintf("%s submissions", project.Name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &dto.ExportFile{
			Filename:    export.Filename(project.Name+"-submissions", "pdf"),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	case "", "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &dto.ExportFile{
			Filename:    export.Filename(project.Name+"-submissions", "csv"),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// ClearSubmissions deletes every submission in a project so students
// can resubmit after an admin reset. Cached embed payloads are dropped
// because their submitted state just changed.
func (s *ExportService) ClearSubmissions(ctx context.Context, projectID string) (int64, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	deleted, err := s.submissions.DeleteByProject(ctx, projectID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear submissions")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "embed:*:"+projectID); err != nil {
			s.logger.Warn("failed to invalidate embed cache", zap.Error(err))
		}
	}

	s.logger.Info("submissions cleared",
		zap.String("project_id", projectID),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}

func (s *ExportService) courseNames(ctx context.Context, studentID, projectID string) (string, error) {
	courseIDs, err := s.enrollments.ListConfirmedCourseIDs(ctx, studentID, projectID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	names := ""
	for i, id := range courseIDs {
		course, err := s.courses.FindByID(ctx, id)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
		}
		if i > 0 {
			names += "; "
		}
		names += course.Name
	}
	return names, nil
}
