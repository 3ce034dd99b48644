package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"zuricart/models"
	"zuricart/payments"
	"zuricart/utils"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// ReceiptHandler renders a PDF receipt for a completed payment.
type ReceiptHandler struct {
	orchestrator *payments.Orchestrator
}

func NewReceiptHandler(orchestrator *payments.Orchestrator) *ReceiptHandler {
	return &ReceiptHandler{orchestrator: orchestrator}
}

// DownloadReceipt generates and returns a PDF receipt for a payment.
// GET /payments/:paymentId/receipt
func (h *ReceiptHandler) DownloadReceipt(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	payment, order, err := h.orchestrator.Status(user.ID, c.Param("paymentId"))
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	if payment.Status != models.PaymentStatusSuccess {
		utils.BadRequest(c, "Receipts are only available for successful payments", nil)
		return
	}
	utils.LogInfo("Generating receipt for payment %s", payment.ID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "ZuriCart")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "support@zuricart.co.za")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(90, 8, "Receipt No: "+payment.ID)
	pdf.Ln(8)
	pdf.Cell(90, 8, "Order ID: "+order.ID)
	pdf.Ln(8)
	if payment.ProcessedAt != nil {
		pdf.Cell(90, 8, "Paid At: "+payment.ProcessedAt.Format("2006-01-02 15:04:05"))
		pdf.Ln(8)
	}
	pdf.Cell(90, 8, "Payment Method: "+payment.Method)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, user.FirstName+" "+user.LastName)
	pdf.Ln(6)
	pdf.Cell(100, 8, user.Email)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(90, 8, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Currency", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(90, 8, "Order "+order.ID, "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, payment.Currency, "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", payment.Amount), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for shopping with ZuriCart!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Receipt PDF generation failed for payment %s: %v", payment.ID, err)
		utils.InternalServerError(c, "Failed to generate receipt", nil)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=receipt-"+payment.ID+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	utils.LogInfo("Receipt download completed for payment %s", payment.ID)
}
