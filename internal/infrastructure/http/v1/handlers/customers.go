package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/domain/ledger/payment"
	"almacen/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles HTTP requests for the customer catalog.
type CustomerHandler struct {
	*BaseHandler
	service  *customer.Service
	payments *payment.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service, payments *payment.Service) *CustomerHandler {
	return &CustomerHandler{BaseHandler: base, service: service, payments: payments}
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), cust); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cust)
}

// Get handles GET /customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	cust, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cust)
}

// Update handles PUT /customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust, err := h.service.GetByID(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(cust)

	if err := h.service.Update(c.Request.Context(), cust); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cust)
}

// List handles GET /customers.
func (h *CustomerHandler) List(c *gin.Context) {
	filter := customer.ListFilter{
		Search:          c.Query("search"),
		IncludeInactive: c.Query("includeInactive") == "true",
		Limit:           h.ParseIntQuery(c, "limit", 50),
		Offset:          h.ParseIntQuery(c, "offset", 0),
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items), filter.Limit, filter.Offset)
}

// Search handles GET /customers/search?q=...
func (h *CustomerHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.Error(c, apperror.NewValidation("query parameter q is required"))
		return
	}

	items, err := h.service.Search(c.Request.Context(), query, h.ParseIntQuery(c, "limit", 10))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// WithDebt handles GET /customers/with-debt.
func (h *CustomerHandler) WithDebt(c *gin.Context) {
	items, err := h.service.ListWithDebt(c.Request.Context(), h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Payments handles GET /customers/:id/payments.
func (h *CustomerHandler) Payments(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	items, err := h.payments.ListByCustomer(c.Request.Context(), customerID, h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Deactivate handles DELETE /customers/:id (soft delete).
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), customerID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/search", h.Search)
	rg.GET("/with-debt", h.WithDebt)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Deactivate)
	rg.GET("/:id/payments", h.Payments)
}
