package handlers

import (
	"errors"
	"log"

	"bloxstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StorefrontHandler exposes the shopper's cart, wishlist, session and preferences.
type StorefrontHandler struct {
	store         *services.Store
	catalog       *services.CatalogService
	observer      *services.SessionObserver
	notifications *services.NotificationService
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(store *services.Store, catalog *services.CatalogService, observer *services.SessionObserver, notifications *services.NotificationService) *StorefrontHandler {
	return &StorefrontHandler{
		store:         store,
		catalog:       catalog,
		observer:      observer,
		notifications: notifications,
	}
}

// RegisterRoutes registers the storefront routes with the Fiber app.
func (h *StorefrontHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/session", h.HandleGetSession)
	router.Put("/language", h.HandleSetLanguage)
	router.Get("/notices", h.HandleTakeNotices)

	cart := router.Group("/cart")
	cart.Get("/", h.HandleGetCart)
	cart.Post("/", h.HandleAddToCart)
	cart.Delete("/", h.HandleClearCart)
	cart.Delete("/:id", h.HandleRemoveFromCart)

	wishlist := router.Group("/wishlist")
	wishlist.Get("/", h.HandleGetWishlist)
	wishlist.Post("/:id/toggle", h.HandleToggleWishlist)

	notifications := router.Group("/notifications")
	notifications.Get("/", h.HandleGetNotifications)
	notifications.Post("/:id/read", h.HandleMarkNotificationRead)
}

// HandleGetSession returns the current identity and sync state.
func (h *StorefrontHandler) HandleGetSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"session":  h.store.Session(),
		"state":    h.observer.State().String(),
		"phase":    h.store.Phase().String(),
		"language": h.store.Language(),
	})
}

// HandleSetLanguage changes the display language.
func (h *StorefrontHandler) HandleSetLanguage(c *fiber.Ctx) error {
	var req struct {
		Language services.Language `json:"language"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.store.SetLanguage(req.Language); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Unsupported language", err)
	}
	return c.JSON(fiber.Map{"language": h.store.Language()})
}

// HandleTakeNotices returns and clears pending notices.
func (h *StorefrontHandler) HandleTakeNotices(c *fiber.Ctx) error {
	notices := h.store.TakeNotices()
	if notices == nil {
		notices = []services.Notice{}
	}
	return c.JSON(notices)
}

func (h *StorefrontHandler) cartBody() fiber.Map {
	items := h.store.Cart()
	return fiber.Map{
		"items": items,
		"total": h.store.Total(),
		"count": len(items),
	}
}

// HandleGetCart returns the cart with its total.
func (h *StorefrontHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(h.cartBody())
}

// HandleAddToCart adds a catalog product to the cart.
func (h *StorefrontHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.BodyParser(&req); err != nil || req.ProductID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "productId is required", err)
	}
	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, "Product "+req.ProductID+" not found", nil)
	}

	if err := h.store.AddToCart(product); err != nil {
		lang := h.store.Language()
		switch {
		case errors.Is(err, services.ErrDuplicateCartItem):
			return errorResponse(c, fiber.StatusConflict, services.Message(lang, services.MsgCartDuplicate), err)
		case errors.Is(err, services.ErrOutOfStock):
			return errorResponse(c, fiber.StatusUnprocessableEntity, services.Message(lang, services.MsgCartOutOfStock), err)
		}
		log.Printf("Error adding %s to cart: %v", req.ProductID, err)
		return errorResponse(c, fiber.StatusInternalServerError, "Could not add to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.cartBody())
}

// HandleRemoveFromCart removes a product from the cart.
func (h *StorefrontHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	h.store.RemoveFromCart(c.Params("id"))
	return c.JSON(h.cartBody())
}

// HandleClearCart empties the cart.
func (h *StorefrontHandler) HandleClearCart(c *fiber.Ctx) error {
	h.store.ClearCart()
	return c.JSON(h.cartBody())
}

// HandleGetWishlist returns the wishlisted product ids.
func (h *StorefrontHandler) HandleGetWishlist(c *fiber.Ctx) error {
	return c.JSON(h.store.Wishlist())
}

// HandleToggleWishlist flips the wishlist membership of a product.
func (h *StorefrontHandler) HandleToggleWishlist(c *fiber.Ctx) error {
	id := c.Params("id")
	in := h.store.ToggleWishlist(id)
	return c.JSON(fiber.Map{
		"productId":  id,
		"inWishlist": in,
		"wishlist":   h.store.Wishlist(),
	})
}

// HandleGetNotifications returns the loaded notifications of the signed-in shopper.
func (h *StorefrontHandler) HandleGetNotifications(c *fiber.Ctx) error {
	if !h.store.Session().IsAuthenticated() {
		return errorResponse(c, fiber.StatusUnauthorized, "Sign in to see notifications", nil)
	}
	return c.JSON(h.store.Notifications())
}

// HandleMarkNotificationRead flags a notification as read.
func (h *StorefrontHandler) HandleMarkNotificationRead(c *fiber.Ctx) error {
	if !h.store.Session().IsAuthenticated() {
		return errorResponse(c, fiber.StatusUnauthorized, "Sign in to see notifications", nil)
	}
	id := c.Params("id")
	if err := h.notifications.MarkRead(c.UserContext(), id); err != nil {
		log.Printf("Error marking notification %s read: %v", id, err)
		return errorResponse(c, fiber.StatusNotFound, "Could not mark notification read", err)
	}
	h.store.MarkNotificationRead(id)
	return c.JSON(fiber.Map{"message": "Notification marked read"})
}
