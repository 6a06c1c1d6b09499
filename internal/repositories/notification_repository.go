package repositories

import (
	"context"

	"bloxstore/internal/models"
)

// NotificationRepository defines data access to shopper notifications.
type NotificationRepository interface {
	// GetByUserID returns at most limit notifications, newest first.
	GetByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, id string) error
}
