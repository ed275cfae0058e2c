package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/domain/reports"
)

// ReportHandler handles HTTP requests for reports and the dashboard.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// DailySummary handles GET /reports/daily?date=2006-01-02.
// Defaults to today.
func (h *ReportHandler) DailySummary(c *gin.Context) {
	date := time.Now()
	if parsed := h.ParseDateQuery(c, "date"); parsed != nil {
		date = *parsed
	}

	summary, err := h.service.DailySummary(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// SalesHistory handles GET /reports/sales-history?from=...&to=...
func (h *ReportHandler) SalesHistory(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if parsed := h.ParseDateQuery(c, "from"); parsed != nil {
		from = *parsed
	}
	if parsed := h.ParseDateQuery(c, "to"); parsed != nil {
		to = *parsed
	}

	history, err := h.service.SalesHistory(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, history)
}

// LowStock handles GET /reports/low-stock.
func (h *ReportHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// PurchaseSuggestions handles GET /reports/purchase-suggestions.
func (h *ReportHandler) PurchaseSuggestions(c *gin.Context) {
	items, err := h.service.PurchaseSuggestions(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// TopDebtors handles GET /reports/top-debtors.
func (h *ReportHandler) TopDebtors(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 20)
	if limit > 100 {
		h.Error(c, apperror.NewValidation("limit must not exceed 100"))
		return
	}

	items, err := h.service.TopDebtors(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/daily", h.DailySummary)
	rg.GET("/sales-history", h.SalesHistory)
	rg.GET("/low-stock", h.LowStock)
	rg.GET("/purchase-suggestions", h.PurchaseSuggestions)
	rg.GET("/top-debtors", h.TopDebtors)
}
