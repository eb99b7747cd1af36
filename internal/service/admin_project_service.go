package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/token"
)

type adminProjectRepo interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error
}

type rosterStudentRepo interface {
	UpsertByToken(ctx context.Context, tok, name string) (*models.Student, error)
	IsAssigned(ctx context.Context, studentID, projectID string) (bool, error)
	Assign(ctx context.Context, projectID, studentID string) error
	Unassign(ctx context.Context, projectID, studentID string) error
	ListByProject(ctx context.Context, projectID string) ([]models.Student, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
}

// AdminProjectService owns project CRUD and roster management.
type AdminProjectService struct {
	projects  adminProjectRepo
	students  rosterStudentRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminProjectService constructs an AdminProjectService instance.
func NewAdminProjectService(projects adminProjectRepo, students rosterStudentRepo, validate *validator.Validate, logger *zap.Logger) *AdminProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminProjectService{projects: projects, students: students, validator: validate, logger: logger}
}

// List returns every project.
func (s *AdminProjectService) List(ctx context.Context) ([]models.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	return projects, nil
}

// Get returns a project by id.
func (s *AdminProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}
	return project, nil
}

// Detail returns a project together with its roster size.
func (s *AdminProjectService) Detail(ctx context.Context, id string) (*dto.AdminProjectDetail, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.students.CountByProject(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count roster")
	}
	return &dto.AdminProjectDetail{Project: *project, StudentCount: count}, nil
}

// Create creates a project. An invalid timezone is rejected up front so
// status derivation never has to guess later.
func (s *AdminProjectService) Create(ctx context.Context, req dto.ProjectRequest) (*models.Project, error) {
	if err := s.validateProject(&req); err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Description:     req.Description,
		Timezone:        req.Timezone,
		SubmissionStart: req.SubmissionStart,
		SubmissionEnd:   req.SubmissionEnd,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}

	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("name", project.Name))
	return project, nil
}

// Update replaces a project's fields.
func (s *AdminProjectService) Update(ctx context.Context, id string, req dto.ProjectRequest) (*models.Project, error) {
	if err := s.validateProject(&req); err != nil {
		return nil, err
	}

	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Name = req.Name
	project.Description = req.Description
	project.Timezone = req.Timezone
	project.SubmissionStart = req.SubmissionStart
	project.SubmissionEnd = req.SubmissionEnd

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project")
	}
	return project, nil
}

// Delete removes a project and, via cascade, everything under it.
func (s *AdminProjectService) Delete(ctx context.Context, id string) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete project")
	}
	s.logger.Info("project deleted", zap.String("project_id", id))
	return nil
}

// BulkAddStudents resolves each identifier to a roster token, upserts
// the student, and assigns it to the project. Re-importing the same
// roster is a no-op because the token derivation is deterministic.
func (s *AdminProjectService) BulkAddStudents(ctx context.Context, projectID string, req dto.BulkStudentsRequest) (*dto.BulkStudentsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "identifiers are required")
	}

	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	resp := &dto.BulkStudentsResponse{Students: make([]dto.RosterEntry, 0, len(req.Identifiers))}
	seen := make(map[string]bool, len(req.Identifiers))
	for _, identifier := range req.Identifiers {
		name := strings.TrimSpace(identifier)
		if name == "" {
			continue
		}
		tok := token.Resolve(identifier)
		if seen[tok] {
			continue
		}
		seen[tok] = true

		student, err := s.students.UpsertByToken(ctx, tok, name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert student")
		}

		assigned, err := s.students.IsAssigned(ctx, student.ID, projectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
		}
		if !assigned {
			if err := s.students.Assign(ctx, projectID, student.ID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign student")
			}
			resp.AddedCount++
		}
		resp.Students = append(resp.Students, dto.RosterEntry{ID: student.ID, Token: student.Token, Name: student.Name})
	}

	s.logger.Info("roster imported",
		zap.String("project_id", projectID),
		zap.Int("added", resp.AddedCount),
		zap.Int("total", len(resp.Students)),
	)
	return resp, nil
}

// ListStudents returns a project's roster.
func (s *AdminProjectService) ListStudents(ctx context.Context, projectID string) ([]models.Student, error) {
	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}
	students, err := s.students.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}
	return students, nil
}

// RemoveStudent unassigns a student from a project. The student row and
// its activity in other projects are untouched.
func (s *AdminProjectService) RemoveStudent(ctx context.Context, projectID, studentID string) error {
	if err := s.students.Unassign(ctx, projectID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not assigned to this project")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign student")
	}
	return nil
}

func (s *AdminProjectService) validateProject(req *dto.ProjectRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "unknown timezone")
	}
	if req.SubmissionStart != nil && req.SubmissionEnd != nil && req.SubmissionEnd.Before(*req.SubmissionStart) {
		return appErrors.Clone(appErrors.ErrValidation, "submission_end must not precede submission_start")
	}
	return nil
}
