package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bloxstore/internal/models"

	"github.com/google/uuid"
)

// MockNotificationRepository is an in-memory implementation of NotificationRepository.
type MockNotificationRepository struct {
	notifications map[string]models.Notification
	mu            sync.RWMutex
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{notifications: make(map[string]models.Notification)}
}

func (r *MockNotificationRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.notifications[n.ID] = *n
	return nil
}

func (r *MockNotificationRepository) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return fmt.Errorf("notification with ID %s: %w", id, ErrNotFound)
	}
	n.IsRead = true
	r.notifications[id] = n
	return nil
}
