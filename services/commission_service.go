package services

import (
	"errors"
	"fmt"

	"zuricart/models"
	"zuricart/utils"

	"gorm.io/gorm"
)

// commissionRate is the share of a referred user's order total credited
// to the referrer's wallet.
const commissionRate = 0.01

// CommissionService implements payments.CommissionSink: when a referred
// user's order is paid, the referrer's wallet is credited a fixed
// percentage. Runs best-effort after reconciliation.
type CommissionService struct {
	db *gorm.DB
}

func NewCommissionService(db *gorm.DB) *CommissionService {
	return &CommissionService{db: db}
}

func (s *CommissionService) RecordCommission(order *models.Order) error {
	var referral models.Referral
	if err := s.db.Where("referred_user_id = ?", order.UserID).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // buyer was not referred, nothing to credit
		}
		return utils.WrapError(err, "failed to load referral")
	}

	amount := order.TotalAmount * commissionRate
	orderID := order.ID

	return s.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := getOrCreateWallet(tx, referral.ReferrerUserID, order.Currency)
		if err != nil {
			return err
		}
		txn := models.WalletTransaction{
			WalletID:    wallet.ID,
			Amount:      amount,
			Type:        models.TransactionTypeCredit,
			Description: fmt.Sprintf("Referral commission for order %s", order.ID),
			OrderID:     &orderID,
			Reference:   fmt.Sprintf("comm_%s", order.ID),
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return tx.Model(&models.Wallet{}).
			Where("id = ?", wallet.ID).
			Update("balance", gorm.Expr("balance + ?", amount)).Error
	})
}

func getOrCreateWallet(tx *gorm.DB, userID uint, currency string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			wallet = models.Wallet{UserID: userID, Balance: 0, Currency: currency}
			if err := tx.Create(&wallet).Error; err != nil {
				return nil, err
			}
			return &wallet, nil
		}
		return nil, err
	}
	return &wallet, nil
}
