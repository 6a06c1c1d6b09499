package repositories

import (
	"context"

	"bloxstore/internal/models"
)

// AccountRepository defines data access to auth credentials.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}
