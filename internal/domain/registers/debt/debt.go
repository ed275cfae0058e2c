// Package debt provides the debt register: the only component allowed
// to change a customer's current debt. Both operations must run inside
// the caller's transaction, paired with the sale or payment that caused
// the change.
package debt

import (
	"context"
	"fmt"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Repository defines storage operations for the debt register.
type Repository interface {
	// Accrue increments current_debt by amount. Returns false when the
	// customer row does not exist.
	Accrue(ctx context.Context, customerID id.ID, amount types.Money) (bool, error)

	// Settle decrements current_debt by amount with a
	// "current_debt >= amount" precondition in the same statement.
	// Returns false when the precondition no longer holds. This is the
	// authoritative overpayment guard; earlier reads are fast paths.
	Settle(ctx context.Context, customerID id.ID, amount types.Money) (bool, error)

	// CurrentDebt returns the customer's debt balance.
	CurrentDebt(ctx context.Context, customerID id.ID) (types.Money, error)
}

// Service provides debt register operations.
type Service struct {
	repo Repository
}

// NewService creates a new debt register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Accrue adds a credit sale's total to the customer's debt.
func (s *Service) Accrue(ctx context.Context, customerID id.ID, amount types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("debt accrual amount must be positive").
			WithDetail("value", amount.String())
	}
	applied, err := s.repo.Accrue(ctx, customerID, amount)
	if err != nil {
		return fmt.Errorf("accrue debt: %w", err)
	}
	if !applied {
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}

// Settle reduces the customer's debt by a payment amount. Debt can reach
// exactly zero but never go negative.
func (s *Service) Settle(ctx context.Context, customerID id.ID, amount types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("settlement amount must be positive").
			WithDetail("value", amount.String())
	}
	applied, err := s.repo.Settle(ctx, customerID, amount)
	if err != nil {
		return fmt.Errorf("settle debt: %w", err)
	}
	if !applied {
		current, err := s.repo.CurrentDebt(ctx, customerID)
		if err != nil {
			return fmt.Errorf("read current debt: %w", err)
		}
		return apperror.NewOverpayment(amount, current)
	}
	return nil
}
