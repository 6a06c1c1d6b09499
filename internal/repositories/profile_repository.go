package repositories

import (
	"context"

	"bloxstore/internal/models"
)

// ProfileRepository defines data access to shopper profiles, keyed by account id.
type ProfileRepository interface {
	// GetByID returns ErrNotFound when the profile does not exist.
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetAll(ctx context.Context) ([]models.Profile, error)
	// Upsert creates the profile or replaces it on id conflict.
	// A username held by another profile yields ErrDuplicateKey.
	Upsert(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, id string, patch models.ProfilePatch) error
}
