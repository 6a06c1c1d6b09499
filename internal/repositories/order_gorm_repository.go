package repositories

import (
	"context"
	"fmt"

	"bloxstore/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders, newest first.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("createdat desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", classify(err))
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, classify(err))
	}
	return &order, nil
}

// GetByUserID retrieves the orders of a user, newest first.
func (r *GORMOrderRepository) GetByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Where("userid = ?", userID).Order("createdat desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders of user %s: %w", userID, classify(err))
	}
	return orders, nil
}

// Create inserts an order. The ID is assigned by the caller.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order %s: %w", order.ID, classify(err))
	}
	return nil
}

// UpdateStatus sets the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
