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

// OrderRepository implements payments.OrderStore on gorm.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *OrderRepository) GetForUser(orderID string, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payments.ErrOrderNotFound
		}
		return nil, utils.NewAppError(http.StatusInternalServerError, "Failed to load order", err)
	}
	return &order, nil
}

func (r *OrderRepository) GetByID(orderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payments.ErrOrderNotFound
		}
		return nil, utils.NewAppError(http.StatusInternalServerError, "Failed to load order", err)
	}
	return &order, nil
}

// SetPaymentOutcome resolves the order's payment status with a
// conditional update: it only applies while the status is still
// "pending", so of any number of concurrent attempt reconciles exactly
// one sees RowsAffected == 1 and owns the post-payment side effects.
func (r *OrderRepository) SetPaymentOutcome(orderID, paymentStatus, fulfillmentStatus string) (bool, error) {
	updates := map[string]interface{}{
		"payment_status": paymentStatus,
		"updated_at":     time.Now(),
	}
	if fulfillmentStatus != "" {
		updates["status"] = fulfillmentStatus
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, models.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
