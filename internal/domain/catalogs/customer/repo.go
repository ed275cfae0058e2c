package customer

import (
	"context"

	"almacen/internal/core/id"
)

// ListFilter narrows customer listings.
type ListFilter struct {
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// Repository defines persistence operations for the customer catalog.
// CurrentDebt is read-only here; only the debt register writes it.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)

	// Search returns active customers whose name matches the query,
	// best match first. The mobile API resolves customers by taking
	// the first result.
	Search(ctx context.Context, query string, limit int) ([]*Customer, error)

	List(ctx context.Context, filter ListFilter) ([]*Customer, error)

	// ListWithDebt returns active customers with current_debt > 0,
	// largest debt first.
	ListWithDebt(ctx context.Context, limit int) ([]*Customer, error)

	// Deactivate sets is_active = false (soft delete).
	Deactivate(ctx context.Context, customerID id.ID) error
}
