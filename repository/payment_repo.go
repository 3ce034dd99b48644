package repository

import (
	"errors"
	"net/http"
	"time"

	"zuricart/models"
	"zuricart/payments"
	"zuricart/utils"

	"gorm.io/gorm"
)

// PaymentRepository implements payments.PaymentStore on gorm.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payments.ErrPaymentNotFound
		}
		return nil, utils.NewAppError(http.StatusInternalServerError, "Failed to load payment", err)
	}
	return &p, nil
}

// FinalizeIfPending is the row-level compare-and-set behind the
// reconcile idempotency guarantee: the UPDATE carries the pending-status
// predicate, so of any number of concurrent reconciles exactly one sees
// RowsAffected == 1.
func (r *PaymentRepository) FinalizeIfPending(id, status, gatewayTxnID, rawResponse string, processedAt *time.Time) (bool, error) {
	res := r.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"gateway_txn_id": gatewayTxnID,
			"raw_response":   rawResponse,
			"processed_at":   processedAt,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListBetween returns payments created in a time window, newest first.
// Used by the admin reconciliation report.
func (r *PaymentRepository) ListBetween(start, end time.Time) ([]models.Payment, error) {
	var list []models.Payment
	err := r.db.Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
