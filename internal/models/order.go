package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the operator-driven lifecycle of an order. It only moves forward.
type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusPendingPayment  OrderStatus = "PENDING_PAYMENT"
	StatusPendingDelivery OrderStatus = "PENDING_DELIVERY"
	StatusDelivered       OrderStatus = "DELIVERED"
)

var statusRank = map[OrderStatus]int{
	StatusNew:             0,
	StatusPendingPayment:  1,
	StatusPendingDelivery: 2,
	StatusDelivered:       3,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether next is strictly later in the lifecycle than s.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	n, ok := statusRank[next]
	return ok && n > cur
}

// Order is one purchased product. A checkout with several cart lines creates several orders.
// ProductPrice is the price at purchase time.
type Order struct {
	ID             string          `json:"id" gorm:"primaryKey;column:id"`
	UserID         *string         `json:"userId,omitempty" gorm:"column:userid"`
	UserName       string          `json:"userName" gorm:"column:username"`
	UserEmail      string          `json:"userEmail,omitempty" gorm:"column:useremail"`
	ProductID      string          `json:"productId" gorm:"column:productid"`
	ProductName    string          `json:"productName" gorm:"column:productname"`
	ProductPrice   decimal.Decimal `json:"productPrice" gorm:"column:productprice;type:numeric"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod" gorm:"column:paymentmethod"`
	Status         OrderStatus     `json:"status" gorm:"column:status"`
	ProofImage     string          `json:"proofImage,omitempty" gorm:"column:proofimage"`
	RobloxUsername string          `json:"robloxUsername,omitempty" gorm:"column:robloxusername"`
	Country        string          `json:"country,omitempty" gorm:"column:country"`
	Notes          string          `json:"notes,omitempty" gorm:"column:notes"`
	CreatedAt      time.Time       `json:"createdAt" gorm:"column:createdat"`
}

func (Order) TableName() string { return "orders" }

// BelongsTo reports whether the order was placed by the given user.
func (o Order) BelongsTo(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}
