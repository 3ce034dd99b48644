package routes

import (
	"zuricart/controllers"
	"zuricart/middleware"
	"zuricart/utils"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every controller the router needs. Everything is
// injected; route setup holds no globals.
type Handlers struct {
	Auth    *controllers.AuthHandler
	Orders  *controllers.OrderHandler
	Payment *controllers.PaymentHandler
	Webhook *controllers.WebhookHandler
	Receipt *controllers.ReceiptHandler
	Report  *controllers.AdminReportHandler
}

// SetupRouter configures all the routes for the application.
func SetupRouter(router *gin.Engine, h *Handlers) {
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	v1 := router.Group("/v1")
	{
		v1.POST("/register", h.Auth.Register)
		v1.POST("/login", h.Auth.Login)

		// Providers authenticate by signature, not by session.
		v1.POST("/payments/webhook", h.Webhook.HandleWebhook)
		v1.GET("/payments/methods", h.Payment.GetPaymentMethods)

		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("/orders", h.Orders.CreateOrder)
			authed.GET("/orders/:id", h.Orders.GetOrder)

			authed.POST("/payments/initialize", h.Payment.InitializePayment)
			authed.GET("/payments/status/:paymentId", h.Payment.GetPaymentStatus)
			authed.POST("/payments/verify", h.Payment.VerifyPayment)
			authed.GET("/payments/:paymentId/receipt", h.Receipt.DownloadReceipt)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			admin.GET("/payments/report", h.Report.GetPaymentsReport)
			admin.GET("/payments/report/excel", h.Report.DownloadPaymentsReportExcel)
		}
	}
}
