package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer statuses accepted at the repository edge.
const (
	CustomerStatusActive   = "active"
	CustomerStatusDeactive = "deactive"
	CustomerStatusSuspend  = "suspend"
)

// ValidCustomerStatus reports whether s is one of the accepted statuses.
func ValidCustomerStatus(s string) bool {
	switch s {
	case CustomerStatusActive, CustomerStatusDeactive, CustomerStatusSuspend:
		return true
	}
	return false
}

// Customer is a store shopper as seen from the back office. UserID is the
// join key to addresses and orders and is unique per customer.
type Customer struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`

	// Order metrics, computed at read time.
	OrderCount int64   `gorm:"-" json:"order_count"`
	TotalSpent float64 `gorm:"-" json:"total_spent"`
}

// Address is a shipping address owned by a customer through user_id.
type Address struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label      string    `json:"label"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
}
