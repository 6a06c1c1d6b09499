package services

import (
	"context"
	"fmt"

	"bloxstore/internal/models"
	"bloxstore/internal/repositories"
)

// DefaultNotificationLimit bounds how many notifications are loaded per shopper.
const DefaultNotificationLimit = 20

// NotificationService handles shopper notifications.
type NotificationService struct {
	repo  repositories.NotificationRepository
	limit int
}

// NewNotificationService creates a NotificationService. A non-positive limit means the default.
func NewNotificationService(repo repositories.NotificationRepository, limit int) *NotificationService {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return &NotificationService{repo: repo, limit: limit}
}

// ForUser returns the most recent notifications of userID, newest first.
func (s *NotificationService) ForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	list, err := s.repo.GetByUserID(ctx, userID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications for %s: %w", userID, err)
	}
	return list, nil
}

// Notify stores a new unread notification for userID.
func (s *NotificationService) Notify(ctx context.Context, userID, title, message string) error {
	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification for %s: %w", userID, err)
	}
	return nil
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return nil
}
