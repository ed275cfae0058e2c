package dto

import (
	"time"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/ledger/closing"
	"almacen/internal/domain/ledger/expense"
	"almacen/internal/domain/ledger/payment"
	"almacen/internal/domain/ledger/sale"
)

// --- Sale DTOs ---

// SaleItemRequest is one requested line of a new sale.
type SaleItemRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity"`
}

// CreateSaleRequest for recording a sale.
type CreateSaleRequest struct {
	SaleDate      *time.Time        `json:"saleDate,omitempty"`
	CustomerID    *string           `json:"customerId,omitempty"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	Notes         *string           `json:"notes,omitempty"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToCreateRequest maps the DTO onto the coordinator's request. Malformed
// ids are dropped here and fail the coordinator's validation.
func (r *CreateSaleRequest) ToCreateRequest() *sale.CreateRequest {
	req := &sale.CreateRequest{
		PaymentMethod: sale.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
	}
	if r.SaleDate != nil {
		req.SaleDate = *r.SaleDate
	}
	if r.CustomerID != nil {
		if parsed, err := id.Parse(*r.CustomerID); err == nil {
			req.CustomerID = &parsed
		}
	}
	for _, item := range r.Items {
		productID, _ := id.Parse(item.ProductID)
		req.Items = append(req.Items, sale.ItemRequest{
			ProductID: productID,
			Quantity:  types.RoundQuantity(item.Quantity),
		})
	}
	return req
}

// --- Payment DTOs ---

// CreatePaymentRequest for recording a debt payment.
type CreatePaymentRequest struct {
	CustomerID    string      `json:"customerId" binding:"required"`
	Amount        types.Money `json:"amount"`
	PaymentDate   *time.Time  `json:"paymentDate,omitempty"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
}

// ToCreateRequest maps the DTO onto the coordinator's request.
func (r *CreatePaymentRequest) ToCreateRequest() *payment.CreateRequest {
	customerID, _ := id.Parse(r.CustomerID)
	req := &payment.CreateRequest{
		CustomerID: customerID,
		Amount:     r.Amount,
		Method:     payment.Method(r.PaymentMethod),
		Notes:      r.Notes,
	}
	if r.PaymentDate != nil {
		req.PaymentDate = *r.PaymentDate
	}
	return req
}

// --- Expense DTOs ---

// CreateExpenseRequest for recording an expense.
type CreateExpenseRequest struct {
	Amount        types.Money `json:"amount"`
	Category      string      `json:"category" binding:"required"`
	Description   *string     `json:"description,omitempty"`
	PaymentMethod string      `json:"paymentMethod" binding:"required"`
	ExpenseDate   *time.Time  `json:"expenseDate,omitempty"`
}

// ToEntity builds an expense from the request.
func (r *CreateExpenseRequest) ToEntity() *expense.Expense {
	e := &expense.Expense{
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description,
		Method:      expense.Method(r.PaymentMethod),
	}
	if r.ExpenseDate != nil {
		e.ExpenseDate = *r.ExpenseDate
	}
	return e
}

// --- Closing DTOs ---

// CreateClosingRequest for performing the daily cash closing. Only the
// counted actuals come from the client; expected positions are computed
// server-side from committed rows.
type CreateClosingRequest struct {
	ClosingDate     *time.Time  `json:"closingDate,omitempty"`
	ActualCash      types.Money `json:"actualCash"`
	ActualTransfers types.Money `json:"actualTransfers"`
	Notes           *string     `json:"notes,omitempty"`
}

// ToCreateRequest maps the DTO onto the engine's request.
func (r *CreateClosingRequest) ToCreateRequest() *closing.CreateRequest {
	req := &closing.CreateRequest{
		ActualCash:      r.ActualCash,
		ActualTransfers: r.ActualTransfers,
		Notes:           r.Notes,
	}
	if r.ClosingDate != nil {
		req.ClosingDate = *r.ClosingDate
	}
	return req
}
