// Package stock provides the stock register: the only component allowed
// to change a product's current stock. Every change appends a movement
// row so the quantity on hand can always be reconstructed.
//
// The register exposes no atomicity of its own; callers invoke it from
// inside an already-open transaction.
package stock

import (
	"time"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// MovementType classifies why a stock level changed.
type MovementType string

const (
	// MovementSale is an outflow caused by a recorded sale.
	MovementSale MovementType = "sale"

	// MovementAdjustment is a manual correction (counted stock, breakage,
	// mobile assistant update).
	MovementAdjustment MovementType = "adjustment"
)

// Movement is an append-only audit row for a stock change.
// Quantity is signed: negative for outflow.
type Movement struct {
	ID        id.ID        `db:"id" json:"id"`
	ProductID id.ID        `db:"product_id" json:"productId"`
	Type      MovementType `db:"movement_type" json:"movementType"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`
	Reason   string         `db:"reason" json:"reason"`

	// ReferenceID is the originating sale id for sale movements.
	ReferenceID *id.ID `db:"reference_id" json:"referenceId,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
