package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
)

const clockLayout = "15:04"

type sectionRepo interface {
	FindByID(ctx context.Context, id string) (*models.TimeSection, error)
	ListByProject(ctx context.Context, projectID string) ([]models.TimeSection, error)
	NextOrder(ctx context.Context, projectID string) (int, error)
	Create(ctx context.Context, section *models.TimeSection) error
	Update(ctx context.Context, section *models.TimeSection) error
	Delete(ctx context.Context, id string) error
}

type sectionProjectRepo interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
}

// SectionService owns the admin time-section CRUD.
type SectionService struct {
	sections  sectionRepo
	projects  sectionProjectRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService constructs a SectionService instance.
func NewSectionService(sections sectionRepo, projects sectionProjectRepo, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SectionService{sections: sections, projects: projects, validator: validate, logger: logger}
}

// ListByProject returns a project's time sections in display order.
func (s *SectionService) ListByProject(ctx context.Context, projectID string) ([]models.TimeSection, error) {
	sections, err := s.sections.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time sections")
	}
	return sections, nil
}

// Create adds a time section to a project. When no order is given the
// section is appended after the current last one.
func (s *SectionService) Create(ctx context.Context, projectID string, req dto.SectionRequest) (*models.TimeSection, error) {
	if err := s.validateSection(req); err != nil {
		return nil, err
	}
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		next, err := s.sections.NextOrder(ctx, projectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute section order")
		}
		order = next
	}

	section := &models.TimeSection{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Label:     req.Label,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Order:     order,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time section")
	}
	return section, nil
}

// Update replaces a time section's fields.
func (s *SectionService) Update(ctx context.Context, id string, req dto.SectionRequest) (*models.TimeSection, error) {
	if err := s.validateSection(req); err != nil {
		return nil, err
	}

	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch time section")
	}

	section.Label = req.Label
	section.StartTime = req.StartTime
	section.EndTime = req.EndTime
	if req.Order != nil {
		section.Order = *req.Order
	}

	if err := s.sections.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time section")
	}
	return section, nil
}

// Delete removes a time section. Sections still referenced by course
// occurrences are protected by the schema and surface as a conflict.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	if err := s.sections.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "time section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "time section is still in use")
	}
	return nil
}

func (s *SectionService) validateSection(req dto.SectionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time section payload")
	}
	start, err := time.Parse(clockLayout, req.StartTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:mm")
	}
	end, err := time.Parse(clockLayout, req.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:mm")
	}
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	return nil
}
