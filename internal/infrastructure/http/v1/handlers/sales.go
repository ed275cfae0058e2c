package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/ledger/sale"
	"almacen/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles HTTP requests for sale documents.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Create handles POST /sales.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req.ToCreateRequest())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	filter := sale.ListFilter{
		From:   h.ParseDateQuery(c, "from"),
		To:     h.ParseDateQuery(c, "to"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if customerID := c.Query("customerId"); customerID != "" {
		if parsed, err := id.Parse(customerID); err == nil {
			filter.CustomerID = &parsed
		}
	}
	if method := c.Query("paymentMethod"); method != "" {
		m := sale.PaymentMethod(method)
		filter.PaymentMethod = &m
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items), filter.Limit, filter.Offset)
}

// Today handles GET /sales/today.
func (h *SaleHandler) Today(c *gin.Context) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	items, err := h.service.List(c.Request.Context(), sale.ListFilter{
		From:  &from,
		To:    &to,
		Limit: 500,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// RegisterRoutes registers sale routes.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/today", h.Today)
	rg.GET("/:id", h.Get)
}
