package handlers

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/registers/stock"
	"almacen/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
	stock   *stock.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service, stockSvc *stock.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service, stock: stockSvc}
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(p)

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
	filter := product.ListFilter{
		Search:          c.Query("search"),
		Category:        c.Query("category"),
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

// Search handles GET /products/search?q=...
func (h *ProductHandler) Search(c *gin.Context) {
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

// GetByBarcode handles GET /products/barcode/:barcode.
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	p, err := h.service.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Deactivate handles DELETE /products/:id (soft delete).
func (h *ProductHandler) Deactivate(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Movements handles GET /products/:id/movements.
func (h *ProductHandler) Movements(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter := stock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if t := c.Query("type"); t != "" {
		mt := stock.MovementType(t)
		filter.Type = &mt
	}

	movements, err := h.stock.History(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.BaseHandler.List(c, movements, len(movements), filter.Limit, filter.Offset)
}

// RegisterRoutes registers product routes.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/search", h.Search)
	rg.GET("/barcode/:barcode", h.GetByBarcode)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Deactivate)
	rg.GET("/:id/movements", h.Movements)
}
