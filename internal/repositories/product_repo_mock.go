package repositories

import (
	"context"
	"sort"
	"sync"

	"bloxstore/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository holding products.
func NewMockProductRepository(products ...models.Product) *MockProductRepository {
	r := &MockProductRepository{
		products: make(map[string]models.Product),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

// GetAll returns all products ordered by name.
func (r *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool { return productList[i].Name < productList[j].Name })
	return productList, nil
}

// Create adds a product, replacing one with the same ID.
func (r *MockProductRepository) Create(ctx context.Context, product models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = product
	return nil
}
