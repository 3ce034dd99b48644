package models

import (
	"time"

	"gorm.io/gorm"
)

// Referral links a referred buyer to the user whose code they signed up
// with. Successful payments by the referred user earn the referrer a
// commission credit.
type Referral struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ReferrerUserID uint           `json:"referrer_user_id"`
	ReferredUserID uint           `json:"referred_user_id" gorm:"index"`
	ReferralCode   string         `json:"referral_code"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
