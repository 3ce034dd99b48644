package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment status constants, shared by Order and Payment
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// Fulfillment status constants
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order represents a customer's purchase intent. Payment status only ever
// moves pending -> success or pending -> failed; fulfillment advances to
// "paid" only when payment status is "success". Orders are never deleted,
// only soft-archived.
type Order struct {
	ID            string         `gorm:"primaryKey" json:"id"`
	UserID        uint           `json:"user_id"`
	User          User           `json:"-" gorm:"foreignKey:UserID"`
	TotalAmount   float64        `json:"total_amount"`
	Currency      string         `json:"currency"`
	PaymentStatus string         `json:"payment_status" gorm:"default:pending"`
	Status        string         `json:"status" gorm:"default:pending"`
	Payments      []Payment      `json:"-" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
