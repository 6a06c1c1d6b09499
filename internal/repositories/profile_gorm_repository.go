package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bloxstore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

// NewGORMProfileRepository creates a new instance of GORMProfileRepository.
func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{
		db: db,
	}
}

// GetByID retrieves a profile by its ID.
func (r *GORMProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var rows []map[string]interface{}
	if err := r.db.WithContext(ctx).Table("profiles").Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get profile by ID %s: %w", id, classify(err))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile with ID %s: %w", id, ErrNotFound)
	}
	profile, err := normalizeProfile(rows[0])
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetAll retrieves every profile.
func (r *GORMProfileRepository) GetAll(ctx context.Context) ([]models.Profile, error) {
	var rows []map[string]interface{}
	if err := r.db.WithContext(ctx).Table("profiles").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get all profiles: %w", classify(err))
	}
	profiles := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		p, err := normalizeProfile(row)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Upsert creates the profile, overwriting the mutable columns on id conflict.
func (r *GORMProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "role", "isbanned", "cart_data", "wishlist_data"}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", profile.ID, classify(err))
	}
	return nil
}

// Update writes the non-nil fields of patch.
func (r *GORMProfileRepository) Update(ctx context.Context, id string, patch models.ProfilePatch) error {
	columns, err := profilePatchColumns(patch)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Table("profiles").Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("failed to update profile %s: %w", id, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("profile with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func profilePatchColumns(patch models.ProfilePatch) (map[string]interface{}, error) {
	columns := make(map[string]interface{})
	if patch.Cart != nil {
		cart := *patch.Cart
		if cart == nil {
			cart = []models.CartItem{}
		}
		body, err := json.Marshal(cart)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cart snapshot: %w", err)
		}
		columns["cart_data"] = string(body)
	}
	if patch.Wishlist != nil {
		wishlist := *patch.Wishlist
		if wishlist == nil {
			wishlist = []string{}
		}
		body, err := json.Marshal(wishlist)
		if err != nil {
			return nil, fmt.Errorf("failed to encode wishlist snapshot: %w", err)
		}
		columns["wishlist_data"] = string(body)
	}
	if patch.Role != nil {
		columns["role"] = string(*patch.Role)
	}
	return columns, nil
}
