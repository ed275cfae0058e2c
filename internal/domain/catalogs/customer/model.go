// Package customer provides the customer catalog and credit ("fiado")
// account fields.
//
// CurrentDebt is mutated exclusively by the debt register, always inside
// the same transaction as the sale or payment that caused the change.
package customer

import (
	"context"
	"strings"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Customer represents a buyer with an optional credit account.
type Customer struct {
	ID         id.ID   `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Phone      *string `db:"phone" json:"phone,omitempty"`
	Email      *string `db:"email" json:"email,omitempty"`
	Address    *string `db:"address" json:"address,omitempty"`
	IDDocument *string `db:"id_document" json:"idDocument,omitempty"`

	// CreditLimit is an advisory ceiling checked at sale time. It is not
	// enforced at the data layer.
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`

	// CurrentDebt is always >= 0. The debt register's conditional update
	// is the enforcement point.
	CurrentDebt types.Money `db:"current_debt" json:"currentDebt"`

	IsActive bool    `db:"is_active" json:"isActive"`
	Notes    *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a customer with defaults applied.
func New(name string) *Customer {
	now := time.Now().UTC()
	return &Customer{
		ID:          id.New(),
		Name:        strings.TrimSpace(name),
		CreditLimit: types.Zero(),
		CurrentDebt: types.Zero(),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks customer invariants.
func (c *Customer) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "name")
	}
	if c.CreditLimit.IsNegative() {
		return apperror.NewValidation("credit limit must not be negative").
			WithDetail("field", "creditLimit")
	}
	if c.CurrentDebt.IsNegative() {
		return apperror.NewValidation("current debt must not be negative").
			WithDetail("field", "currentDebt")
	}
	return nil
}
