package services_test

import (
	"context"
	"errors"
	"testing"

	"bloxstore/internal/models"
	"bloxstore/internal/repositories"
	"bloxstore/internal/services"
	"bloxstore/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(ev rabbitmq.OrderEvent) error {
	return m.Called(ev).Error(0)
}

func eventOfType(typ string) interface{} {
	return mock.MatchedBy(func(ev rabbitmq.OrderEvent) bool { return ev.Type == typ })
}

func newOrder(id string, userID *string) *models.Order {
	return &models.Order{
		ID:             id,
		UserID:         userID,
		UserName:       "sam",
		ProductID:      "sword-cdk",
		ProductName:    "CDK",
		ProductPrice:   decimal.NewFromInt(1800),
		PaymentMethod:  models.PaymentRoblox,
		RobloxUsername: "blox_fan",
	}
}

func TestOrderServiceCreateOrder(t *testing.T) {
	repo := repositories.NewMockOrderRepository()
	pub := new(MockPublisher)
	pub.On("PublishOrderEvent", eventOfType(rabbitmq.RoutingOrderCreated)).Return(nil).Once()
	svc := services.NewOrderService(repo, nil, pub)

	o := newOrder("ORD-1", nil)
	require.NoError(t, svc.CreateOrder(context.Background(), o))
	assert.Equal(t, models.StatusPendingPayment, o.Status)
	assert.False(t, o.CreatedAt.IsZero())

	stored, err := svc.GetOrderByID(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "CDK", stored.ProductName)
	pub.AssertExpectations(t)
}

func TestOrderServicePublishFailureIsNotFatal(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishOrderEvent", mock.Anything).Return(errors.New("broker down")).Once()
	svc := services.NewOrderService(repositories.NewMockOrderRepository(), nil, pub)

	assert.NoError(t, svc.CreateOrder(context.Background(), newOrder("ORD-1", nil)))
	pub.AssertExpectations(t)
}

func TestOrderServiceCreateOrderValidation(t *testing.T) {
	svc := services.NewOrderService(repositories.NewMockOrderRepository(), nil, nil)

	o := newOrder("ORD-1", nil)
	o.ProductID = ""
	assert.ErrorIs(t, svc.CreateOrder(context.Background(), o), services.ErrOrderMissingProduct)

	o = newOrder("ORD-2", nil)
	o.RobloxUsername = ""
	assert.ErrorIs(t, svc.CreateOrder(context.Background(), o), services.ErrOrderMissingRecipient)
}

func TestOrderServiceAdvanceStatus(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	notifRepo := repositories.NewMockNotificationRepository()
	notifications := services.NewNotificationService(notifRepo, 20)
	pub := new(MockPublisher)
	pub.On("PublishOrderEvent", eventOfType(rabbitmq.RoutingOrderCreated)).Return(nil)
	pub.On("PublishOrderEvent", eventOfType(rabbitmq.RoutingOrderStatusChanged)).Return(nil).Twice()
	svc := services.NewOrderService(repo, notifications, pub)

	uid := "u1"
	require.NoError(t, svc.CreateOrder(ctx, newOrder("ORD-1", &uid)))

	updated, err := svc.AdvanceStatus(ctx, "ORD-1", models.StatusPendingDelivery)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingDelivery, updated.Status)

	_, err = svc.AdvanceStatus(ctx, "ORD-1", models.StatusPendingPayment)
	assert.ErrorIs(t, err, services.ErrStatusTransition)

	_, err = svc.AdvanceStatus(ctx, "ORD-1", models.StatusDelivered)
	require.NoError(t, err)

	list, err := notifications.ForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, n := range list {
		assert.False(t, n.IsRead)
		assert.NotEmpty(t, n.Title)
	}

	_, err = svc.AdvanceStatus(ctx, "ORD-1", "SHIPPED")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)
	_, err = svc.AdvanceStatus(ctx, "missing", models.StatusDelivered)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	pub.AssertExpectations(t)
}

func TestOrderServiceOrdersForUser(t *testing.T) {
	ctx := context.Background()
	svc := services.NewOrderService(repositories.NewMockOrderRepository(), nil, nil)
	mine, theirs := "u1", "u2"
	require.NoError(t, svc.CreateOrder(ctx, newOrder("ORD-1", &mine)))
	require.NoError(t, svc.CreateOrder(ctx, newOrder("ORD-2", &theirs)))
	require.NoError(t, svc.CreateOrder(ctx, newOrder("ORD-3", nil)))

	list, err := svc.OrdersForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ORD-1", list[0].ID)

	all, err := svc.GetAllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
