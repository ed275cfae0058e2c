package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/ledger/payment"
	"almacen/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles HTTP requests for debt payments.
type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *payment.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// Create handles POST /payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
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

// Get handles GET /payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /payments.
func (h *PaymentHandler) List(c *gin.Context) {
	from := h.ParseDateQuery(c, "from")
	to := h.ParseDateQuery(c, "to")
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	items, err := h.service.List(c.Request.Context(), from, to, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items), limit, offset)
}

// RegisterRoutes registers payment routes.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
}
