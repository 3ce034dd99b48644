package main

import (
	"log"

	"zuricart/config"
	"zuricart/controllers"
	"zuricart/gateway"
	"zuricart/payments"
	"zuricart/repository"
	"zuricart/routes"
	"zuricart/services"
	"zuricart/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB(cfg)
	db := config.DB

	// Gateway registry and persistence
	registry := gateway.NewRegistry(cfg)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Best-effort side effects
	notifier := services.NewEmailNotifier(cfg.SMTP, db)
	commission := services.NewCommissionService(db)

	orchestrator := payments.NewOrchestrator(
		registry,
		orderRepo,
		paymentRepo,
		notifier,
		commission,
		cfg.WebhookBaseURL+"/v1/payments/webhook",
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupRouter(router, &routes.Handlers{
		Auth:    controllers.NewAuthHandler(db),
		Orders:  controllers.NewOrderHandler(orderRepo),
		Payment: controllers.NewPaymentHandler(orchestrator, registry),
		Webhook: controllers.NewWebhookHandler(orchestrator),
		Receipt: controllers.NewReceiptHandler(orchestrator),
		Report:  controllers.NewAdminReportHandler(paymentRepo),
	})

	port := cfg.Port
	if port == "" {
		port = utils.DefaultPort
	}
	utils.LogInfo("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
