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

type tagRepo interface {
	FindByID(ctx context.Context, id string) (*models.Tag, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id string) error
}

type tagProjectRepo interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
}

// TagService owns the admin tag CRUD. A tag whose min exceeds its max
// would make every submission fail, so the pair is checked on write.
type TagService struct {
	tags      tagRepo
	projects  tagProjectRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTagService constructs a TagService instance.
func NewTagService(tags tagRepo, projects tagProjectRepo, validate *validator.Validate, logger *zap.Logger) *TagService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TagService{tags: tags, projects: projects, validator: validate, logger: logger}
}

// ListByProject returns a project's tags.
func (s *TagService) ListByProject(ctx context.Context, projectID string) ([]models.Tag, error) {
	tags, err := s.tags.ListByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tags")
	}
	return tags, nil
}

// Create adds a tag to a project.
func (s *TagService) Create(ctx context.Context, projectID string, req dto.TagRequest) (*models.Tag, error) {
	if err := s.validateTag(req); err != nil {
		return nil, err
	}
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch project")
	}

	tag := &models.Tag{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Name:        req.Name,
		Color:       req.Color,
		MinRequired: req.MinRequired,
		MaxAllowed:  req.MaxAllowed,
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create tag")
	}
	return tag, nil
}

// Update replaces a tag's fields.
func (s *TagService) Update(ctx context.Context, id string, req dto.TagRequest) (*models.Tag, error) {
	if err := s.validateTag(req); err != nil {
		return nil, err
	}

	tag, err := s.tags.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tag not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch tag")
	}

	tag.Name = req.Name
	tag.Color = req.Color
	tag.MinRequired = req.MinRequired
	tag.MaxAllowed = req.MaxAllowed

	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update tag")
	}
	return tag, nil
}

// Delete removes a tag and its course links.
func (s *TagService) Delete(ctx context.Context, id string) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "tag not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete tag")
	}
	return nil
}

func (s *TagService) validateTag(req dto.TagRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tag payload")
	}
	if req.MaxAllowed != nil && *req.MaxAllowed < req.MinRequired {
		return appErrors.Clone(appErrors.ErrValidation, "max_allowed must not be below min_required")
	}
	return nil
}
