package handlers

import (
	"bloxstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the loaded catalog.
type CatalogHandler struct {
	catalog *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProductByID)
	router.Get("/settings", h.HandleGetSettings)
	router.Get("/status", h.HandleGetStatus)
}

// HandleGetProducts lists the catalog.
func (h *CatalogHandler) HandleGetProducts(c *fiber.Ctx) error {
	return c.JSON(h.catalog.Products())
}

// HandleGetProductByID returns one product.
func (h *CatalogHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id := c.Params("id")
	p, ok := h.catalog.Product(id)
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, "Product "+id+" not found", nil)
	}
	return c.JSON(p)
}

// HandleGetSettings returns the site settings.
func (h *CatalogHandler) HandleGetSettings(c *fiber.Ctx) error {
	return c.JSON(h.catalog.Settings())
}

// HandleGetStatus reports where the catalog was loaded from.
func (h *CatalogHandler) HandleGetStatus(c *fiber.Ctx) error {
	current := h.catalog.Current()
	return c.JSON(fiber.Map{
		"backend":  current.State,
		"products": len(current.Products),
		"server":   current.Settings.ServerStatus,
	})
}
