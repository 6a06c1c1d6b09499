package repositories

import (
	"context"
	"fmt"
	"sync"

	"bloxstore/internal/models"

	"gorm.io/gorm"
)

// SettingsRepository reads the singleton site settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
}

// GORMSettingsRepository is a GORM implementation of SettingsRepository.
type GORMSettingsRepository struct {
	db *gorm.DB
}

func NewGORMSettingsRepository(db *gorm.DB) *GORMSettingsRepository {
	return &GORMSettingsRepository{db: db}
}

// Get returns the settings row with id 1.
func (r *GORMSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var s models.SiteSettings
	if err := r.db.WithContext(ctx).First(&s, "id = ?", 1).Error; err != nil {
		return nil, fmt.Errorf("failed to get site settings: %w", classify(err))
	}
	return &s, nil
}

// Save writes the settings row.
func (r *GORMSettingsRepository) Save(ctx context.Context, s *models.SiteSettings) error {
	s.ID = 1
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return fmt.Errorf("failed to save site settings: %w", classify(err))
	}
	return nil
}

// MockSettingsRepository is an in-memory implementation of SettingsRepository.
type MockSettingsRepository struct {
	mu       sync.RWMutex
	settings *models.SiteSettings
}

// NewMockSettingsRepository returns a repository holding s; nil means no row.
func NewMockSettingsRepository(s *models.SiteSettings) *MockSettingsRepository {
	return &MockSettingsRepository{settings: s}
}

func (r *MockSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return nil, fmt.Errorf("site settings: %w", ErrNotFound)
	}
	out := *r.settings
	return &out, nil
}
