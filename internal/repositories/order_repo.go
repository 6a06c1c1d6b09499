package repositories

import (
	"context"

	"bloxstore/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are never deleted; only their status changes.
type OrderRepository interface {
	// GetAll returns every order, newest first.
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetByUserID returns the orders placed by a user, newest first.
	GetByUserID(ctx context.Context, userID string) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
}
