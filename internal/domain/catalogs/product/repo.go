package product

import (
	"context"

	"almacen/internal/core/id"
)

// ListFilter narrows product listings.
type ListFilter struct {
	Search          string
	Category        string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// Repository defines persistence operations for the product catalog.
//
// CurrentStock is read-only here: stock mutation belongs to the stock
// register so that every change leaves a movement row.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)

	// Search returns active products whose name matches the query,
	// best match first. The mobile API uses the first result.
	Search(ctx context.Context, query string, limit int) ([]*Product, error)

	List(ctx context.Context, filter ListFilter) ([]*Product, error)

	// Deactivate sets is_active = false (soft delete).
	Deactivate(ctx context.Context, productID id.ID) error
}
