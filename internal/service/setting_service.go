package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
)

// Site settings recognized by the API. Unknown keys are rejected so a
// typo never creates a dead row.
var knownSettingKeys = map[string]bool{
	"site_title":      true,
	"contact_email":   true,
	"footer_text":     true,
	"maintenance_msg": true,
}

type settingRepo interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key, value string) (*models.Setting, error)
}

// SettingService owns the site-wide key/value settings.
type SettingService struct {
	settings  settingRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingService constructs a SettingService instance.
func NewSettingService(settings settingRepo, validate *validator.Validate, logger *zap.Logger) *SettingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SettingService{settings: settings, validator: validate, logger: logger}
}

// Get returns a setting by key.
func (s *SettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	if !knownSettingKeys[key] {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown setting")
	}
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Setting{Key: key, Value: ""}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch setting")
	}
	return setting, nil
}

// Set upserts a setting value.
func (s *SettingService) Set(ctx context.Context, key string, req dto.SettingRequest) (*models.Setting, error) {
	if !knownSettingKeys[key] {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown setting")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "value is required")
	}

	setting, err := s.settings.Upsert(ctx, key, req.Value)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save setting")
	}
	s.logger.Info("setting updated", zap.String("key", key))
	return setting, nil
}
