package repositories

import (
	"context"
	"fmt"

	"bloxstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAccountRepository is a GORM implementation of AccountRepository.
type GORMAccountRepository struct {
	db *gorm.DB
}

// NewGORMAccountRepository creates a new instance of GORMAccountRepository.
func NewGORMAccountRepository(db *gorm.DB) *GORMAccountRepository {
	return &GORMAccountRepository{
		db: db,
	}
}

// Create creates a new account in the database.
func (r *GORMAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", classify(err))
	}
	return nil
}

// GetByEmail retrieves an account by its email from the database.
func (r *GORMAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get account by email %s: %w", email, classify(err))
	}
	return &account, nil
}

// GetByID retrieves an account by its ID from the database.
func (r *GORMAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get account by ID %s: %w", id, classify(err))
	}
	return &account, nil
}
