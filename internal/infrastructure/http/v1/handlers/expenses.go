package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/ledger/expense"
	"almacen/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler handles HTTP requests for expenses.
type ExpenseHandler struct {
	*BaseHandler
	service *expense.Service
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{BaseHandler: base, service: service}
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// Get handles GET /expenses/:id.
func (h *ExpenseHandler) Get(c *gin.Context) {
	expenseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	e, err := h.service.GetByID(c.Request.Context(), expenseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// List handles GET /expenses.
func (h *ExpenseHandler) List(c *gin.Context) {
	filter := expense.ListFilter{
		From:   h.ParseDateQuery(c, "from"),
		To:     h.ParseDateQuery(c, "to"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, items, len(items), filter.Limit, filter.Offset)
}

// RegisterRoutes registers expense routes.
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
}
