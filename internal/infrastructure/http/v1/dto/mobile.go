package dto

import (
	"time"

	"almacen/internal/core/types"
)

// Mobile DTOs. The phone assistant works with names and decimal strings,
// not ids, so these requests are resolved against the catalogs before
// reaching the coordinators.

// MobileSaleItem is one spoken sale line: a product name and an amount.
type MobileSaleItem struct {
	ProductName string `json:"productName" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
}

// MobileSaleRequest records a sale by product and customer names.
type MobileSaleRequest struct {
	CustomerName  string           `json:"customerName,omitempty"`
	PaymentMethod string           `json:"paymentMethod" binding:"required"`
	Notes         *string          `json:"notes,omitempty"`
	Items         []MobileSaleItem `json:"items" binding:"required,min=1,dive"`
}

// MobilePaymentRequest records a debt payment by customer name.
type MobilePaymentRequest struct {
	CustomerName  string  `json:"customerName" binding:"required"`
	Amount        string  `json:"amount" binding:"required"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// MobileStockUpdateRequest sets an absolute stock level; the product
// comes from the route.
type MobileStockUpdateRequest struct {
	NewStock string `json:"newStock" binding:"required"`
	Reason   string `json:"reason,omitempty"`
}

// MobileSaleResponse is the confirmation the assistant reads back.
type MobileSaleResponse struct {
	ID           string      `json:"id"`
	Number       string      `json:"number"`
	TotalAmount  types.Money `json:"totalAmount"`
	CustomerName string      `json:"customerName,omitempty"`
	ItemCount    int         `json:"itemCount"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// MobilePaymentResponse confirms a recorded payment.
type MobilePaymentResponse struct {
	ID            string      `json:"id"`
	CustomerName  string      `json:"customerName"`
	Amount        types.Money `json:"amount"`
	RemainingDebt types.Money `json:"remainingDebt"`
}

// MobileStockResponse answers a stock question about one product.
type MobileStockResponse struct {
	ProductID    string         `json:"productId"`
	Name         string         `json:"name"`
	Barcode      *string        `json:"barcode,omitempty"`
	CurrentStock types.Quantity `json:"currentStock"`
	MinStock     types.Quantity `json:"minStock"`
	Unit         string         `json:"unit"`
	SalePrice    types.Money    `json:"salePrice"`
}

// MobileDebtResponse answers a debt question about one customer.
type MobileDebtResponse struct {
	CustomerID  string      `json:"customerId"`
	Name        string      `json:"name"`
	CurrentDebt types.Money `json:"currentDebt"`
	CreditLimit types.Money `json:"creditLimit"`
}

// MobileStockUpdateResponse confirms a stock adjustment.
type MobileStockUpdateResponse struct {
	ProductID     string         `json:"productId"`
	ProductName   string         `json:"productName"`
	PreviousStock types.Quantity `json:"previousStock"`
	NewStock      types.Quantity `json:"newStock"`
}
