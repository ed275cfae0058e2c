package sale

import (
	"context"
	"time"

	"almacen/internal/core/id"
)

// ListFilter narrows sale queries.
type ListFilter struct {
	From          *time.Time
	To            *time.Time
	CustomerID    *id.ID
	PaymentMethod *PaymentMethod
	Limit         int
	Offset        int
}

// Repository defines storage operations for sales.
type Repository interface {
	// Create inserts the sale header.
	Create(ctx context.Context, s *Sale) error

	// InsertItems inserts all line items for a sale.
	InsertItems(ctx context.Context, items []*Item) error

	// GetByID returns a sale with its items.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// List returns sales with items, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Sale, error)
}
