package models

import "github.com/google/uuid"

// Payment statuses the rollups distinguish. Anything else is treated as
// PaymentStatusOther when tallying, but stored as given.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusOther   = "other"
)

// Order is a placed order under review. Items carry a denormalized snapshot
// of the purchased products, not live references.
type Order struct {
	BaseModel
	OrderNumber       string      `gorm:"uniqueIndex" json:"order_number"`
	UserID            uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	Items             []OrderItem `json:"items,omitempty"`
	Subtotal          float64     `json:"subtotal"`
	TotalAmount       float64     `json:"total_amount"`
	ShippingAddressID *uuid.UUID  `gorm:"type:uuid" json:"shipping_address_id"`
	PaymentStatus     string      `json:"payment_status"`
	PaymentProvider   string      `json:"payment_provider"`
	ProviderSessionID string      `json:"provider_session_id"`
}

// OrderItem is one purchased line. ProductID may point at a since-deleted
// product; name and price are the snapshot taken at purchase time.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
}
