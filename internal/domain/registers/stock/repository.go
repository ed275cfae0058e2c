package stock

import (
	"context"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	Type   *MovementType
	Limit  int
	Offset int
}

// Repository defines storage operations for the stock register.
type Repository interface {
	// ApplyOutflow decrements current_stock by qty with a
	// "current_stock >= qty" precondition in the same statement.
	// Returns false when the precondition no longer holds, which the
	// service converts into an insufficient-stock failure. The
	// conditional write, not any earlier read, is the authoritative
	// guard against concurrent depletion.
	ApplyOutflow(ctx context.Context, productID id.ID, qty types.Quantity) (bool, error)

	// SetLevel overwrites current_stock and returns the previous level.
	// Locks the product row for the rest of the transaction.
	SetLevel(ctx context.Context, productID id.ID, level types.Quantity) (types.Quantity, error)

	// AppendMovement inserts an audit row.
	AppendMovement(ctx context.Context, m *Movement) error

	// Available returns the product's name and current stock.
	Available(ctx context.Context, productID id.ID) (string, types.Quantity, error)

	// ListMovements returns movement history for a product, newest first.
	ListMovements(ctx context.Context, productID id.ID, filter MovementFilter) ([]*Movement, error)
}
