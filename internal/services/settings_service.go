package services

import (
	"context"

	"github.com/viklib/backend/internal/models"
	"go.uber.org/zap"
)

// SettingsRepository is the interface that wraps methods for the settings row
type SettingsRepository interface {
	// Method Get retrieves the settings, materializing defaults when no row
	// has been saved yet.
	Get(ctx context.Context) (*models.Settings, error)
	// Method Save upserts the settings row.
	Save(ctx context.Context, settings *models.Settings) error
}

// SettingsService manages the single library-wide settings record
type SettingsService struct {
	settings SettingsRepository
	logger   *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settings SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settings: settings,
		logger:   logger,
	}
}

// GetSettings retrieves the current settings
func (s *SettingsService) GetSettings(ctx context.Context) (*models.Settings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings validates and saves the settings, recording who changed them
func (s *SettingsService) UpdateSettings(ctx context.Context, settings *models.Settings, updatedBy string) (*models.Settings, error) {
	settings.UpdatedBy = updatedBy
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("settings updated", zap.String("by", updatedBy))
	return settings, nil
}

// ResetSettings restores the defaults, recording who reset them
func (s *SettingsService) ResetSettings(ctx context.Context, updatedBy string) (*models.Settings, error) {
	settings := models.DefaultSettings()
	settings.UpdatedBy = updatedBy

	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("settings reset to defaults", zap.String("by", updatedBy))
	return settings, nil
}
