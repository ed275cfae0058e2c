package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/auth"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/ledger/payment"
	"almacen/internal/domain/ledger/sale"
	"almacen/internal/domain/registers/stock"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/http/v1/dto"
	"almacen/internal/infrastructure/http/v1/middleware"
)

// MobileHandler serves the phone assistant's API. Every lookup here is
// by name, resolved to the best fuzzy match, because the assistant has
// no access to ids.
type MobileHandler struct {
	*BaseHandler
	products  *product.Service
	customers *customer.Service
	sales     *sale.Service
	payments  *payment.Service
	stock     *stock.Service
	reports   *reports.Service
}

// NewMobileHandler creates a new mobile handler.
func NewMobileHandler(
	base *BaseHandler,
	products *product.Service,
	customers *customer.Service,
	sales *sale.Service,
	payments *payment.Service,
	stockSvc *stock.Service,
	reportsSvc *reports.Service,
) *MobileHandler {
	return &MobileHandler{
		BaseHandler: base,
		products:    products,
		customers:   customers,
		sales:       sales,
		payments:    payments,
		stock:       stockSvc,
		reports:     reportsSvc,
	}
}

// CreateSale handles POST /mobile/sales. Products and the optional
// customer are resolved by name before the coordinator runs.
func (h *MobileHandler) CreateSale(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.MobileSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	createReq := &sale.CreateRequest{
		PaymentMethod: sale.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		qty, err := types.ParseQuantity("quantity", item.Quantity)
		if err != nil {
			h.Error(c, err)
			return
		}
		p, err := h.resolveProduct(c, item.ProductName)
		if err != nil {
			h.Error(c, err)
			return
		}
		createReq.Items = append(createReq.Items, sale.ItemRequest{
			ProductID: p.ID,
			Quantity:  qty,
		})
	}

	doc, err := h.sales.CreateByCustomerName(ctx, createReq, req.CustomerName)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.MobileSaleResponse{
		ID:           doc.ID.String(),
		Number:       doc.Number,
		TotalAmount:  doc.TotalAmount,
		CustomerName: req.CustomerName,
		ItemCount:    len(doc.Items),
		CreatedAt:    doc.CreatedAt,
	})
}

// CreatePayment handles POST /mobile/payments.
func (h *MobileHandler) CreatePayment(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.MobilePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	amount, err := types.ParseMoney("amount", req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}

	cust, err := h.customers.FindByName(ctx, req.CustomerName)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.payments.Create(ctx, &payment.CreateRequest{
		CustomerID:  cust.ID,
		Amount:      amount,
		Method:      payment.Method(req.PaymentMethod),
		EntryMethod: payment.EntryAPI,
		Notes:       req.Notes,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.MobilePaymentResponse{
		ID:            doc.ID.String(),
		CustomerName:  cust.Name,
		Amount:        doc.Amount,
		RemainingDebt: cust.CurrentDebt.Sub(doc.Amount),
	})
}

// UpdateStock handles PATCH /mobile/products/:id/stock. Sets an
// absolute level; the register records the signed difference as an
// adjustment movement.
func (h *MobileHandler) UpdateStock(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id"))
		return
	}

	var req dto.MobileStockUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	level, err := types.ParseQuantity("newStock", req.NewStock)
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.products.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "mobile stock update"
	}

	result, err := h.stock.Adjust(ctx, p.ID, level, reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MobileStockUpdateResponse{
		ProductID:     result.ProductID.String(),
		ProductName:   p.Name,
		PreviousStock: result.PreviousStock,
		NewStock:      result.NewStock,
	})
}

// Status handles GET /mobile/status. Answers with the key's identity
// so the assistant can confirm its configuration.
func (h *MobileHandler) Status(c *gin.Context) {
	actor := appctx.GetActor(c.Request.Context())
	if actor == nil {
		h.Error(c, apperror.NewUnauthorized("missing credentials"))
		return
	}
	h.OK(c, gin.H{
		"status":      "ok",
		"keyName":     actor.Name,
		"permissions": actor.Permissions,
		"serverTime":  time.Now().UTC(),
	})
}

// ProductStock handles GET /mobile/products/stock?barcode=|name=.
// Barcode wins when both are given; name takes the first fuzzy match.
func (h *MobileHandler) ProductStock(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		p   *product.Product
		err error
	)
	switch {
	case c.Query("barcode") != "":
		p, err = h.products.GetByBarcode(ctx, c.Query("barcode"))
	case c.Query("name") != "":
		p, err = h.resolveProduct(c, c.Query("name"))
	default:
		h.Error(c, apperror.NewValidation("barcode or name query parameter is required"))
		return
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MobileStockResponse{
		ProductID:    p.ID.String(),
		Name:         p.Name,
		Barcode:      p.Barcode,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		Unit:         p.Unit,
		SalePrice:    p.SalePrice,
	})
}

// CustomerDebt handles GET /mobile/customers/debt?name=.
func (h *MobileHandler) CustomerDebt(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		h.Error(c, apperror.NewValidation("name query parameter is required"))
		return
	}

	cust, err := h.customers.FindByName(c.Request.Context(), name)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MobileDebtResponse{
		CustomerID:  cust.ID.String(),
		Name:        cust.Name,
		CurrentDebt: cust.CurrentDebt,
		CreditLimit: cust.CreditLimit,
	})
}

// Debtors handles GET /mobile/customers/debtors.
func (h *MobileHandler) Debtors(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 10)
	if limit > 50 {
		limit = 50
	}

	custs, err := h.customers.ListWithDebt(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	out := make([]dto.MobileDebtResponse, 0, len(custs))
	for _, cust := range custs {
		out = append(out, dto.MobileDebtResponse{
			CustomerID:  cust.ID.String(),
			Name:        cust.Name,
			CurrentDebt: cust.CurrentDebt,
			CreditLimit: cust.CreditLimit,
		})
	}
	h.OK(c, out)
}

// SearchProducts handles GET /mobile/products?q=...
func (h *MobileHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.Error(c, apperror.NewValidation("query parameter q is required"))
		return
	}

	items, err := h.products.Search(c.Request.Context(), query, h.ParseIntQuery(c, "limit", 5))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// DailySummary handles GET /mobile/reports/daily.
func (h *MobileHandler) DailySummary(c *gin.Context) {
	date := time.Now()
	if parsed := h.ParseDateQuery(c, "date"); parsed != nil {
		date = *parsed
	}

	summary, err := h.reports.DailySummary(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

func (h *MobileHandler) resolveProduct(c *gin.Context, name string) (*product.Product, error) {
	matches, err := h.products.Search(c.Request.Context(), name, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, apperror.NewNotFound("product", name)
	}
	return matches[0], nil
}

// RegisterRoutes registers mobile routes. Each route is gated on the
// specific permission its API key must carry.
func (h *MobileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/status", h.Status)

	rg.GET("/products", middleware.RequirePermission(auth.PermReadStock), h.SearchProducts)
	rg.GET("/products/stock", middleware.RequirePermission(auth.PermReadStock), h.ProductStock)
	rg.PATCH("/products/:id/stock", middleware.RequirePermission(auth.PermUpdateStock), h.UpdateStock)

	rg.GET("/customers/debt", middleware.RequirePermission(auth.PermReadReports), h.CustomerDebt)
	rg.GET("/customers/debtors", middleware.RequirePermission(auth.PermReadReports), h.Debtors)

	rg.POST("/sales", middleware.RequirePermission(auth.PermCreateSale), h.CreateSale)
	rg.POST("/payments", middleware.RequirePermission(auth.PermCreatePayment), h.CreatePayment)

	rg.GET("/reports/sales", middleware.RequirePermission(auth.PermReadReports), h.DailySummary)
}
