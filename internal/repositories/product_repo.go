package repositories

import (
	"context"

	"bloxstore/internal/models"
)

// ProductRepository defines read access to the remote catalog.
// Catalog editing belongs to the admin screens and is not part of this service.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
}
