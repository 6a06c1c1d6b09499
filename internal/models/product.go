package models

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, the shape stored in profile snapshots.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductType is the catalog category of a product.
type ProductType string

const (
	ProductAccount  ProductType = "ACCOUNT"
	ProductStyle    ProductType = "STYLE"
	ProductSword    ProductType = "SWORD"
	ProductLeveling ProductType = "LEVELING"
)

// PaymentMethod is how the shopper settles an order out-of-band.
type PaymentMethod string

const PaymentRoblox PaymentMethod = "ROBLOX"

// Product represents a game account or virtual item in the store.
// A zero price means the price is agreed with the shopper after checkout.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Image          string          `json:"image"`
	Price          decimal.Decimal `json:"price"`
	Type           ProductType     `json:"type"`
	Level          int             `json:"level,omitempty"`
	Fruits         []string        `json:"fruits,omitempty"`
	RareItems      []string        `json:"rareItems,omitempty"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	InStock        bool            `json:"inStock"`
	StockQuantity  int             `json:"stockQuantity"`
}

// IsOutOfStock reports whether the product can not be added to a cart.
// Styles and swords are counted; accounts only honour the in-stock flag.
func (p Product) IsOutOfStock() bool {
	if !p.InStock {
		return true
	}
	return (p.Type == ProductStyle || p.Type == ProductSword) && p.StockQuantity <= 0
}

// Snapshot captures the cart-relevant fields of the product at add time.
func (p Product) Snapshot() CartItem {
	return CartItem{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
		Type:  p.Type,
	}
}

// CartItem is a product snapshot held in a cart. Later catalog edits do not change it.
type CartItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
	Type  ProductType     `json:"type"`
}

// HasCustomPrice reports whether the price is settled manually.
func (c CartItem) HasCustomPrice() bool {
	return !c.Price.IsPositive()
}

// CartTotal sums the prices of the given items.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}
