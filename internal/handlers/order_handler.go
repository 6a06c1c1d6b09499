package handlers

import (
	"errors"
	"fmt"
	"log"

	"bloxstore/internal/middleware"
	"bloxstore/internal/models"
	"bloxstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the shopper's order routes under /orders. The router
// must authenticate.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/mine", h.HandleGetMyOrders)
}

// RegisterAdminRoutes registers the operator routes. The router must authenticate
// and require the operator role.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleAdvanceOrderStatus)
}

// HandleGetMyOrders returns the caller's order history, newest first.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	orders, err := h.service.OrdersForUser(c.UserContext(), userID)
	if err != nil {
		log.Printf("Error getting orders of %s: %v", userID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(orders)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(c.UserContext(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("Order with ID %s not found", orderID), nil)
		}
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleAdvanceOrderStatus moves an order forward in its lifecycle.
func (h *OrderHandler) HandleAdvanceOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body for status update", err)
	}
	if updateData.Status == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Status is required for order status update.", nil)
	}

	order, err := h.service.AdvanceStatus(c.UserContext(), orderID, updateData.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("Order with ID %s not found", orderID), nil)
		case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrStatusTransition):
			return errorResponse(c, fiber.StatusUnprocessableEntity, "Order update failed", err)
		}
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "Could not update order status", err)
	}
	return c.JSON(order)
}
