// Package audit defines the audit trail contract consumed by ledger
// coordinators. The storage implementation lives in
// infrastructure/storage/postgres.
package audit

import (
	"context"

	"almacen/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionClose  Action = "close"
)

// Entry describes one audited change. Changes is an arbitrary
// JSON-serializable payload (values written, computed totals).
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Changes    map[string]any
}

// Recorder appends audit entries. Implementations must write through
// the caller's open transaction so audit rows share the document's
// atomicity.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}
