package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categories is the fixed set of product categories the shop trades in.
// Scanned items with an unrecognised category fall back to Categories[0].
var Categories = []string{
	"Dairy",
	"Cooking Oil",
	"Beverages",
	"Rice",
	"Spices",
	"Snacks",
	"Personal Care",
}

// DefaultCategory is the fallback for unrecognised or missing categories.
func DefaultCategory() string {
	return Categories[0]
}

// IsKnownCategory reports whether c is one of the enumerated categories.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// DefaultMinStockLevel is assigned to products synthesised from a scan.
const DefaultMinStockLevel = 5

// Product is a catalog item. Quantity is whole units on hand; prices are
// in taka (৳).
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Quantity      int             `json:"quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsLowStock reports whether the product has reached its reorder threshold.
func (p Product) IsLowStock() bool {
	return p.Quantity <= p.MinStockLevel
}

type OrderStatus string

const (
	OrderProcessing OrderStatus = "Processing"
	OrderReady      OrderStatus = "Ready"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPartial PaymentStatus = "Partial"
	PaymentDue     PaymentStatus = "Due"
)

// OrderItem is a snapshot of a product at the moment the order was placed.
// It never references live catalog state.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal returns price × quantity for this line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a sales order. Items are immutable once created; Status and
// PaymentStatus move through their lifecycles afterwards.
type Order struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Items         []OrderItem     `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Customer is a buyer with an outstanding-due (baki) balance.
// CurrentDue only ever increases through reconciliation; settling a due is a
// separate manual flow.
type Customer struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	OrderHistory []string        `json:"order_history"`
	CurrentDue   decimal.Decimal `json:"current_due"`
	CreatedAt    time.Time       `json:"created_at"`
}

// User is an authenticated dashboard user.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // "Admin" or "Staff"
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
