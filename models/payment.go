package models

import (
	"time"
)

// Payment represents one attempt to collect funds for an order via one
// gateway. The ID is the gateway reference generated at initiation
// ({prefix}_{orderID}_{unixMilli}) so it stays unique across retries of
// the same order and is easy to trace in provider dashboards.
//
// Exactly one Payment per order may ever hold status "success"; an order
// may accumulate failed attempts. Payments are never deleted.
type Payment struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	OrderID      string     `json:"order_id" gorm:"index"`
	Order        Order      `json:"-" gorm:"foreignKey:OrderID"`
	UserID       uint       `json:"user_id"`
	Method       string     `json:"method"`
	Amount       float64    `json:"amount"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status" gorm:"default:pending;index"`
	GatewayTxnID string     `json:"gateway_txn_id"`
	RawResponse  string     `json:"-" gorm:"type:text"` // opaque provider payload kept for audit
	ProcessedAt  *time.Time `json:"processed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
