package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds a user's accumulated affiliate commissions.
type Wallet struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex"`
	Balance   float64        `json:"balance" gorm:"default:0"`
	Currency  string         `json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WalletTransaction records a single wallet credit.
type WalletTransaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WalletID    uint           `json:"wallet_id"`
	Wallet      Wallet         `json:"-" gorm:"foreignKey:WalletID"`
	Amount      float64        `json:"amount"`
	Type        string         `json:"type"` // credit
	Description string         `json:"description"`
	OrderID     *string        `json:"order_id"`
	Reference   string         `json:"reference"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

const TransactionTypeCredit = "credit"
