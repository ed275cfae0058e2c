// Package product provides the product catalog.
// Stock levels live on the product row but are mutated exclusively by
// the stock register, never by catalog CRUD.
package product

import (
	"context"
	"strings"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Product represents an item sold by the business.
type Product struct {
	ID       id.ID   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Barcode  *string `db:"barcode" json:"barcode,omitempty"`
	Category *string `db:"category" json:"category,omitempty"`

	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// CostPrice is informational; SalePrice is snapshotted onto sale
	// items at sale time.
	CostPrice *types.Money `db:"cost_price" json:"costPrice,omitempty"`
	SalePrice types.Money  `db:"sale_price" json:"salePrice"`

	// CurrentStock uses three fraction digits (weighed goods).
	CurrentStock types.Quantity `db:"current_stock" json:"currentStock"`
	MinStock     types.Quantity `db:"min_stock" json:"minStock"`
	MaxStock     types.Quantity `db:"max_stock" json:"maxStock"`

	// Unit is a display unit: "unit", "kg", "litre", ...
	Unit string `db:"unit" json:"unit"`

	// IsActive is the soft-delete flag. Products are never hard-deleted.
	IsActive bool `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a product with defaults applied.
func New(name string, salePrice types.Money) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		Name:      strings.TrimSpace(name),
		SalePrice: salePrice,
		Unit:      "unit",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "name")
	}
	if !p.SalePrice.IsPositive() {
		return apperror.NewValidation("sale price must be positive").
			WithDetail("field", "salePrice").
			WithDetail("value", p.SalePrice.String())
	}
	if p.CostPrice != nil && p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price must not be negative").
			WithDetail("field", "costPrice")
	}
	if p.MinStock.IsNegative() || p.MaxStock.IsNegative() {
		return apperror.NewValidation("stock thresholds must not be negative")
	}
	return nil
}
