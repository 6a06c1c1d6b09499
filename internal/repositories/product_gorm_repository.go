package repositories

import (
	"context"
	"fmt"

	"bloxstore/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productRow is the products table layout with PostgreSQL-folded column names.
type productRow struct {
	ID             string          `gorm:"primaryKey;column:id"`
	Name           string          `gorm:"column:name;not null"`
	Description    string          `gorm:"column:description"`
	Image          string          `gorm:"column:image"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	Type           string          `gorm:"column:type"`
	Level          int             `gorm:"column:level"`
	Fruits         []string        `gorm:"column:fruits;serializer:json"`
	RareItems      []string        `gorm:"column:rareitems;serializer:json"`
	PaymentMethods []string        `gorm:"column:paymentmethods;serializer:json"`
	InStock        bool            `gorm:"column:instock"`
	StockQuantity  int             `gorm:"column:stockquantity"`
}

func (productRow) TableName() string { return "products" }

func newProductRow(p models.Product) productRow {
	methods := make([]string, 0, len(p.PaymentMethods))
	for _, m := range p.PaymentMethods {
		methods = append(methods, string(m))
	}
	return productRow{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Image:          p.Image,
		Price:          p.Price,
		Type:           string(p.Type),
		Level:          p.Level,
		Fruits:         p.Fruits,
		RareItems:      p.RareItems,
		PaymentMethods: methods,
		InStock:        p.InStock,
		StockQuantity:  p.StockQuantity,
	}
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products ordered by name. Rows are read loosely and normalized.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var rows []map[string]interface{}
	if err := r.db.WithContext(ctx).Table("products").Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", classify(err))
	}
	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, normalizeProduct(row))
	}
	return products, nil
}

// Create inserts a product. Used to seed the catalog.
func (r *GORMProductRepository) Create(ctx context.Context, product models.Product) error {
	row := newProductRow(product)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create product %s: %w", product.ID, classify(err))
	}
	return nil
}
