package handlers

import (
	"errors"
	"log"

	"bloxstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler drives the checkout dialog.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	store    *services.Store
	catalog  *services.CatalogService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService, store *services.Store, catalog *services.CatalogService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, store: store, catalog: catalog}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkout := router.Group("/checkout")
	checkout.Get("/", h.HandleGetCheckout)
	checkout.Post("/open", h.HandleOpen)
	checkout.Post("/submit", h.HandleSubmit)
	checkout.Post("/copy", h.HandleCopy)
	checkout.Post("/close", h.HandleClose)
}

func (h *CheckoutHandler) body() fiber.Map {
	body := fiber.Map{
		"step":     h.checkout.Step(),
		"details":  h.checkout.Details(),
		"inFlight": h.checkout.InFlight(),
	}
	if summary, ok := h.checkout.Summary(); ok {
		body["summary"] = summary
		body["text"] = summary.Text(h.store.Language())
	}
	if h.checkout.Step() == services.StepPlatform {
		body["gamePassUrl"] = h.catalog.Settings().RobloxGamePassURL
	}
	return body
}

// HandleGetCheckout returns the dialog state.
func (h *CheckoutHandler) HandleGetCheckout(c *fiber.Ctx) error {
	return c.JSON(h.body())
}

// HandleOpen shows the details step.
func (h *CheckoutHandler) HandleOpen(c *fiber.Ctx) error {
	h.checkout.Open()
	return c.JSON(h.body())
}

// HandleSubmit places the orders for the cart.
func (h *CheckoutHandler) HandleSubmit(c *fiber.Ctx) error {
	var details services.CheckoutDetails
	if err := c.BodyParser(&details); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if _, err := h.checkout.Submit(c.UserContext(), details); err != nil {
		lang := h.store.Language()
		switch {
		case errors.Is(err, services.ErrMissingCheckoutFields):
			return errorResponse(c, fiber.StatusBadRequest, services.Message(lang, services.MsgCheckoutMissingFields), err)
		case errors.Is(err, services.ErrEmptyCart):
			return errorResponse(c, fiber.StatusBadRequest, services.Message(lang, services.MsgCheckoutMissingFields), err)
		case errors.Is(err, services.ErrCheckoutStep):
			return errorResponse(c, fiber.StatusConflict, "Checkout is not open", err)
		}
		log.Printf("Error submitting checkout: %v", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Could not submit checkout", err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.body())
}

// captureClipboard hands the copied text back to the HTTP caller.
type captureClipboard struct {
	text string
}

func (cb *captureClipboard) WriteText(text string) error {
	cb.text = text
	return nil
}

// HandleCopy returns the summary text for the caller's clipboard.
func (h *CheckoutHandler) HandleCopy(c *fiber.Ctx) error {
	cb := &captureClipboard{}
	copied, err := h.checkout.Copy(cb)
	if err != nil {
		return errorResponse(c, fiber.StatusConflict, "Nothing to copy", err)
	}
	return c.JSON(fiber.Map{"copied": copied, "text": cb.text})
}

// HandleClose dismisses the dialog.
func (h *CheckoutHandler) HandleClose(c *fiber.Ctx) error {
	h.checkout.Close()
	return c.JSON(h.body())
}
