package stock

import (
	"context"
	"fmt"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/pkg/logger"
)

// Service provides stock register operations. Transactions are managed
// by the caller; the service performs no independent commits.
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Issue records a sale outflow: decrements stock with a floor-at-zero
// precondition and appends a movement with quantity = -qty referencing
// the sale. Must be called within the sale's transaction.
func (s *Service) Issue(ctx context.Context, productID id.ID, qty types.Quantity, saleID id.ID) error {
	applied, err := s.repo.ApplyOutflow(ctx, productID, qty)
	if err != nil {
		return fmt.Errorf("apply outflow: %w", err)
	}
	if !applied {
		name, available, err := s.repo.Available(ctx, productID)
		if err != nil {
			return fmt.Errorf("read available stock: %w", err)
		}
		return apperror.NewInsufficientStock(productID.String(), name, qty, available)
	}

	ref := saleID
	m := &Movement{
		ID:          id.New(),
		ProductID:   productID,
		Type:        MovementSale,
		Quantity:    qty.Neg(),
		Reason:      fmt.Sprintf("sale %s", saleID),
		ReferenceID: &ref,
		CreatedBy:   appctx.GetActorID(ctx),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.AppendMovement(ctx, m); err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// AdjustResult reports the outcome of an absolute stock adjustment.
type AdjustResult struct {
	ProductID     id.ID
	PreviousStock types.Quantity
	NewStock      types.Quantity
}

// Adjust sets an absolute stock level and records an adjustment movement
// carrying the signed difference. Used by the mobile assistant's
// update_stock operation and by manual corrections.
func (s *Service) Adjust(ctx context.Context, productID id.ID, level types.Quantity, reason string) (*AdjustResult, error) {
	if level.IsNegative() {
		return nil, apperror.NewValidation("stock level must not be negative").
			WithDetail("value", level.String())
	}
	if reason == "" {
		reason = "manual adjustment"
	}

	prev, err := s.repo.SetLevel(ctx, productID, level)
	if err != nil {
		return nil, err
	}

	m := &Movement{
		ID:        id.New(),
		ProductID: productID,
		Type:      MovementAdjustment,
		Quantity:  level.Sub(prev),
		Reason:    reason,
		CreatedBy: appctx.GetActorID(ctx),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AppendMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("append movement: %w", err)
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", productID,
		"previous", prev.String(),
		"new", level.String(),
	)

	return &AdjustResult{ProductID: productID, PreviousStock: prev, NewStock: level}, nil
}

// History returns movement rows for a product, newest first.
func (s *Service) History(ctx context.Context, productID id.ID, filter MovementFilter) ([]*Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.ListMovements(ctx, productID, filter)
}
