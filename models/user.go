package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `json:"username" gorm:"uniqueIndex"`
	Email        string         `json:"email" gorm:"uniqueIndex"`
	Password     string         `json:"-"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Phone        string         `json:"phone"`
	Country      string         `json:"country"` // ISO 3166-1 alpha-2, drives gateway availability and currency
	ReferralCode string         `json:"referral_code" gorm:"index"`
	IsAdmin      bool           `json:"is_admin" gorm:"default:false"`
	IsBlocked    bool           `json:"is_blocked" gorm:"default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
