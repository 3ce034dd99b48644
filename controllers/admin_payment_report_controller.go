package controllers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"zuricart/models"
	"zuricart/repository"
	"zuricart/utils"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

// AdminReportHandler serves the payment reconciliation report for the
// back office: a JSON listing and an Excel export over the same window.
type AdminReportHandler struct {
	payments *repository.PaymentRepository
}

func NewAdminReportHandler(payments *repository.PaymentRepository) *AdminReportHandler {
	return &AdminReportHandler{payments: payments}
}

func reportWindow(period string) (time.Time, time.Time, bool) {
	now := time.Now()
	switch period {
	case "day":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start, start.Add(24*time.Hour - time.Nanosecond), true
	case "week":
		end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		start := end.AddDate(0, 0, -6)
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return start, end, true
	case "month":
		return now.AddDate(0, 0, -30).Truncate(24 * time.Hour), now.Add(24 * time.Hour), true
	}
	return time.Time{}, time.Time{}, false
}

type paymentSummary struct {
	Total      int                `json:"total"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Pending    int                `json:"pending"`
	Collected  float64            `json:"collected"`
	ByMethod   map[string]int     `json:"by_method"`
	ByCurrency map[string]float64 `json:"collected_by_currency"`
}

func summarize(list []models.Payment) paymentSummary {
	s := paymentSummary{ByMethod: map[string]int{}, ByCurrency: map[string]float64{}}
	for _, p := range list {
		s.Total++
		s.ByMethod[p.Method]++
		switch p.Status {
		case models.PaymentStatusSuccess:
			s.Succeeded++
			s.Collected += p.Amount
			s.ByCurrency[p.Currency] += p.Amount
		case models.PaymentStatusFailed:
			s.Failed++
		default:
			s.Pending++
		}
	}
	s.Collected = math.Round(s.Collected*100) / 100
	for cur, amt := range s.ByCurrency {
		s.ByCurrency[cur] = math.Round(amt*100) / 100
	}
	return s
}

// GetPaymentsReport returns the payment listing and summary as JSON.
// GET /admin/payments/report?period=day|week|month
func (h *AdminReportHandler) GetPaymentsReport(c *gin.Context) {
	period := c.DefaultQuery("period", "day")
	start, end, ok := reportWindow(period)
	if !ok {
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	list, err := h.payments.ListBetween(start, end)
	if err != nil {
		utils.LogError("Failed to fetch payments for report: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", nil)
		return
	}
	utils.LogDebug("Retrieved %d payments for %s report", len(list), period)

	utils.Success(c, "Payments report generated successfully", gin.H{
		"period":   period,
		"from":     start.Format("2006-01-02"),
		"to":       end.Format("2006-01-02"),
		"summary":  summarize(list),
		"payments": list,
	})
}

// DownloadPaymentsReportExcel exports the same window as an xlsx file.
// GET /admin/payments/report/excel?period=day|week|month
func (h *AdminReportHandler) DownloadPaymentsReportExcel(c *gin.Context) {
	period := c.DefaultQuery("period", "day")
	start, end, ok := reportWindow(period)
	if !ok {
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	list, err := h.payments.ListBetween(start, end)
	if err != nil {
		utils.LogError("Failed to fetch payments for Excel report: %v", err)
		utils.InternalServerError(c, "Failed to fetch payments", nil)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Payments Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("ZURICART - Payments Report")
	periodRow := sheet.AddRow()
	periodRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + start.Format("2006-01-02") + " to " + end.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Payment ID", "Order ID", "User ID", "Method", "Currency", "Amount", "Status", "Gateway Txn", "Created", "Processed"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}

	for _, p := range list {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.OrderID)
		row.AddCell().SetString(fmt.Sprintf("%d", p.UserID))
		row.AddCell().SetString(p.Method)
		row.AddCell().SetString(p.Currency)
		row.AddCell().SetFloat(p.Amount)
		row.AddCell().SetString(p.Status)
		row.AddCell().SetString(p.GatewayTxnID)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		if p.ProcessedAt != nil {
			row.AddCell().SetString(p.ProcessedAt.Format("2006-01-02 15:04:05"))
		} else {
			row.AddCell().SetString("-")
		}
	}

	s := summarize(list)
	sheet.AddRow()
	sumRow := sheet.AddRow()
	sumRow.AddCell().SetString("Totals")
	sumRow.AddCell().SetString(fmt.Sprintf("%d payments", s.Total))
	sumRow.AddCell().SetString(fmt.Sprintf("%d succeeded", s.Succeeded))
	sumRow.AddCell().SetString(fmt.Sprintf("%d failed", s.Failed))
	sumRow.AddCell().SetString(fmt.Sprintf("%d pending", s.Pending))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=payments-report-"+period+".xlsx")
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel report: %v", err)
	}
	utils.LogInfo("Payments Excel report exported for period %s (%d rows)", period, len(list))
}
