package services

import (
	"fmt"
	"strconv"

	"zuricart/config"
	"zuricart/models"
	"zuricart/utils"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// EmailNotifier implements payments.NotificationSink over SMTP. It is
// invoked best-effort after a successful payment; the orchestrator
// swallows any error it returns.
type EmailNotifier struct {
	cfg config.SMTPConfig
	db  *gorm.DB
}

func NewEmailNotifier(cfg config.SMTPConfig, db *gorm.DB) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, db: db}
}

func (n *EmailNotifier) PaymentConfirmed(order *models.Order, payment *models.Payment) error {
	if n.cfg.Host == "" {
		return fmt.Errorf("smtp not configured")
	}
	port, err := strconv.Atoi(n.cfg.Port)
	if err != nil {
		port = 587
	}

	var user models.User
	if err := n.db.First(&user, order.UserID).Error; err != nil {
		return utils.WrapError(err, "failed to load user for confirmation email")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", fmt.Sprintf("%s payment received for order %s", utils.AppName, order.ID))

	body := fmt.Sprintf(`
		<h2>Thank you for your payment!</h2>
		<p>We have received your payment of <strong>%.2f %s</strong> for order <strong>%s</strong>.</p>
		<p>Payment reference: %s</p>
		<p>Your order is now being prepared for shipment.</p>
	`, payment.Amount, payment.Currency, order.ID, payment.ID)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.cfg.Host, port, n.cfg.Username, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return utils.WrapError(err, "failed to send confirmation email")
	}
	return nil
}
