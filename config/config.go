package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// GatewayCredentials holds one provider's namespaced configuration.
// Credentials may be absent; the adapter is still constructed and fails
// fast with a configuration error on first use.
type GatewayCredentials struct {
	BaseURL    string
	MerchantID string // client ID for OAuth2 providers
	Secret     string // merchant key / client secret
	Passphrase string // webhook signing secret / callback token
}

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Config holds all configuration for the application.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string // "production" flips every gateway out of sandbox mode

	// Public base URL this deployment is reachable on; gateways call
	// back to {WebhookBaseURL}/v1/payments/webhook.
	WebhookBaseURL string

	SMTP SMTPConfig

	PayHaven  GatewayCredentials
	MintGate  GatewayCredentials
	Flexcore  GatewayCredentials
	MoWave    GatewayCredentials
	CelloCash GatewayCredentials
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         os.Getenv("DB_PORT"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		Port:           os.Getenv("PORT"),
		Env:            os.Getenv("ENV"),
		WebhookBaseURL: os.Getenv("WEBHOOK_BASE_URL"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		PayHaven:  loadGateway("PAYHAVEN"),
		MintGate:  loadGateway("MINTGATE"),
		Flexcore:  loadGateway("FLEXCORE"),
		MoWave:    loadGateway("MOWAVE"),
		CelloCash: loadGateway("CELLOCASH"),
	}

	return config, nil
}

// loadGateway reads one provider's namespaced variable set, e.g.
// PAYHAVEN_BASE_URL, PAYHAVEN_MERCHANT_ID, PAYHAVEN_SECRET,
// PAYHAVEN_PASSPHRASE.
func loadGateway(prefix string) GatewayCredentials {
	return GatewayCredentials{
		BaseURL:    os.Getenv(prefix + "_BASE_URL"),
		MerchantID: os.Getenv(prefix + "_MERCHANT_ID"),
		Secret:     os.Getenv(prefix + "_SECRET"),
		Passphrase: os.Getenv(prefix + "_PASSPHRASE"),
	}
}

// Sandbox reports whether gateways should run against sandbox endpoints.
func (c *Config) Sandbox() bool {
	return c.Env != "production"
}
