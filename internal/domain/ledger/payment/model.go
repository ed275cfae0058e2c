// Package payment provides the debt payment document and its
// coordinator: the only entry point for collecting on a customer's
// credit balance.
package payment

import (
	"context"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Method is how the payment was received.
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodCard     Method = "card"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard:
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

// Payment records a debt collection. Always paired with a debt
// reduction in the same transaction.
type Payment struct {
	ID         id.ID `db:"id" json:"id"`
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	Amount      types.Money `db:"amount" json:"amount"`
	PaymentDate time.Time   `db:"payment_date" json:"paymentDate"`
	Method      Method      `db:"payment_method" json:"paymentMethod"`

	EntryMethod EntryMethod `db:"entry_method" json:"entryMethod"`
	Notes       *string     `db:"notes" json:"notes,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CreateRequest carries everything needed to record a payment.
type CreateRequest struct {
	CustomerID  id.ID       `json:"customerId"`
	Amount      types.Money `json:"amount"`
	PaymentDate time.Time   `json:"paymentDate"`
	Method      Method      `json:"paymentMethod"`
	EntryMethod EntryMethod `json:"entryMethod"`
	Notes       *string     `json:"notes,omitempty"`
}

// Validate checks the request before any storage round-trip.
// Amount must be checked before the customer lookup so malformed input
// never costs a database read.
func (r *CreateRequest) Validate(ctx context.Context) error {
	if !r.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", r.Amount.String())
	}
	if r.Method != "" && !r.Method.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(r.Method))
	}
	return nil
}
