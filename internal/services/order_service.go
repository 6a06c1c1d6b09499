package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bloxstore/internal/models"
	"bloxstore/internal/repositories"
	"bloxstore/pkg/rabbitmq"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidStatus         = errors.New("invalid order status")
	ErrStatusTransition      = errors.New("order status can only move forward")
	ErrOrderMissingProduct   = errors.New("order has no product")
	ErrOrderMissingRecipient = errors.New("order has no roblox username")
)

// EventPublisher sends order events to the message broker.
type EventPublisher interface {
	PublishOrderEvent(ev rabbitmq.OrderEvent) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo     repositories.OrderRepository
	notifications *NotificationService
	publisher     EventPublisher
	language      Language
}

// NewOrderService creates a new OrderService. publisher may be nil, in which case no
// events are published.
func NewOrderService(orderRepo repositories.OrderRepository, notifications *NotificationService, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		notifications: notifications,
		publisher:     publisher,
		language:      DefaultLanguage,
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// OrdersForUser returns the order history of a shopper, newest first.
func (s *OrderService) OrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}

// CreateOrder persists order and announces it on the broker.
func (s *OrderService) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ProductID == "" {
		return ErrOrderMissingProduct
	}
	if order.RobloxUsername == "" {
		return ErrOrderMissingRecipient
	}
	if order.Status == "" {
		order.Status = models.StatusPendingPayment
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publish(rabbitmq.RoutingOrderCreated, order)
	return nil
}

// AdvanceStatus moves an order forward in its lifecycle and notifies the buyer.
// The notification and the broker event are best-effort.
func (s *OrderService) AdvanceStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, next)
	}
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanAdvanceTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrStatusTransition, order.Status, next)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	order.Status = next

	if order.UserID != nil && s.notifications != nil {
		title, message := s.statusNotification(order)
		if err := s.notifications.Notify(ctx, *order.UserID, title, message); err != nil {
			log.Printf("Warning: failed to notify buyer of order %s: %v", id, err)
		}
	}

	s.publish(rabbitmq.RoutingOrderStatusChanged, order)
	return order, nil
}

func (s *OrderService) statusNotification(o *models.Order) (string, string) {
	switch o.Status {
	case models.StatusPendingDelivery:
		return Message(s.language, MsgNotifPaidTitle), fmt.Sprintf(Message(s.language, MsgNotifPaidBody), o.ProductName)
	case models.StatusDelivered:
		return Message(s.language, MsgNotifDeliveredTitle), fmt.Sprintf(Message(s.language, MsgNotifDeliveredBody), o.ProductName)
	}
	return Message(s.language, MsgNotifUpdateTitle), fmt.Sprintf(Message(s.language, MsgNotifUpdateBody), o.ProductName, o.Status)
}

func (s *OrderService) publish(routingKey string, o *models.Order) {
	if s.publisher == nil {
		return
	}
	ev := rabbitmq.OrderEvent{
		Type:       routingKey,
		OrderID:    o.ID,
		ProductID:  o.ProductID,
		Status:     string(o.Status),
		Price:      o.ProductPrice.String(),
		OccurredAt: time.Now(),
	}
	if o.UserID != nil {
		ev.UserID = *o.UserID
	}
	if err := s.publisher.PublishOrderEvent(ev); err != nil {
		log.Printf("Warning: failed to publish %s for order %s: %v", routingKey, o.ID, err)
	}
}
