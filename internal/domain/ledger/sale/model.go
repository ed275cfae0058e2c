// Package sale provides the sale document and its transaction
// coordinator: the only entry point for recording a sale, which writes
// the header, the line items, the stock outflows and, for credit sales,
// the customer's debt accrual in one transaction.
package sale

import (
	"context"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// PaymentMethod is how the sale was settled.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"

	// MethodCredit is a "fiado" sale: the customer takes goods now and
	// pays later. Accrues customer debt instead of counting as income.
	MethodCredit PaymentMethod = "credit"
)

// Valid reports whether m is a known settlement method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCredit:
		return true
	}
	return false
}

// EntryMethod tags where the operation came from.
type EntryMethod string

const (
	EntryManual EntryMethod = "manual"
	EntryAPI    EntryMethod = "api"
)

// Sale is an immutable sales document. There is no update path once
// recorded; corrections are administrative.
type Sale struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	SaleDate time.Time `db:"sale_date" json:"saleDate"`

	// CustomerID is required for credit sales. For cash and transfer
	// sales it may still be set; it is then stored for record-keeping
	// and the debt step is skipped.
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	TotalAmount   types.Money   `db:"total_amount" json:"totalAmount"`

	// IsPaid is false only for credit sales at creation.
	IsPaid bool `db:"is_paid" json:"isPaid"`

	EntryMethod EntryMethod `db:"entry_method" json:"entryMethod"`
	Notes       *string     `db:"notes" json:"notes,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	Items []*Item `db:"-" json:"items"`
}

// Item is a sale line. UnitPrice is a snapshot of the product's sale
// price at sale time, not a live reference.
type Item struct {
	ID        id.ID `db:"id" json:"id"`
	SaleID    id.ID `db:"sale_id" json:"saleId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice  types.Money    `db:"unit_price" json:"unitPrice"`
	TotalPrice types.Money    `db:"total_price" json:"totalPrice"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ItemRequest is one requested line of a new sale.
type ItemRequest struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// CreateRequest carries everything needed to record a sale.
type CreateRequest struct {
	SaleDate      time.Time     `json:"saleDate"`
	CustomerID    *id.ID        `json:"customerId,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	EntryMethod   EntryMethod   `json:"entryMethod"`
	Notes         *string       `json:"notes,omitempty"`
	Items         []ItemRequest `json:"items"`
}

// Validate checks the request before any storage round-trip.
func (r *CreateRequest) Validate(ctx context.Context) error {
	if len(r.Items) == 0 {
		return apperror.NewValidation("sale must have at least one item").
			WithDetail("field", "items")
	}
	if !r.PaymentMethod.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(r.PaymentMethod))
	}
	if r.PaymentMethod == MethodCredit && r.CustomerID == nil {
		return apperror.NewValidation("credit sale requires a customer").
			WithDetail("field", "customerId")
	}
	for i, item := range r.Items {
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("item product id is required").
				WithDetail("item", i)
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("item", i).
				WithDetail("value", item.Quantity.String())
		}
	}
	return nil
}
