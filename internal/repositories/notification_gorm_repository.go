package repositories

import (
	"context"
	"fmt"

	"bloxstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{db: db}
}

func (r *GORMNotificationRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.WithContext(ctx).Where("userid = ?", userID).Order("createdat desc").Limit(limit).Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications of user %s: %w", userID, classify(err))
	}
	return list, nil
}

func (r *GORMNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", classify(err))
	}
	return nil
}

func (r *GORMNotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("isread", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, classify(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
