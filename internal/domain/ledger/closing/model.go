// Package closing provides the daily cash closing: the reconciliation
// of system-computed expected money positions against the physically
// counted drawer and bank amounts. At most one closing exists per date
// and a closing is never updated once created.
package closing

import (
	"context"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Status is the reconciliation outcome.
type Status string

const (
	// StatusCompleted means both variances are within tolerance.
	StatusCompleted Status = "completed"

	// StatusDiscrepancy means at least one variance exceeds tolerance.
	StatusDiscrepancy Status = "discrepancy"
)

// CashClosing is the immutable end-of-day reconciliation record.
type CashClosing struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	// ClosingDate is a calendar date; the time part is always midnight
	// UTC. Unique per date.
	ClosingDate time.Time `db:"closing_date" json:"closingDate"`

	// Expected positions are computed from committed ledger rows, never
	// accepted from the client.
	ExpectedCash      types.Money `db:"expected_cash" json:"expectedCash"`
	ExpectedTransfers types.Money `db:"expected_transfers" json:"expectedTransfers"`

	// Actual positions are the physically counted amounts.
	ActualCash      types.Money `db:"actual_cash" json:"actualCash"`
	ActualTransfers types.Money `db:"actual_transfers" json:"actualTransfers"`

	CashVariance     types.Money `db:"cash_variance" json:"cashVariance"`
	TransferVariance types.Money `db:"transfer_variance" json:"transferVariance"`

	// Day aggregates snapshotted at closing time.
	TotalSales    types.Money `db:"total_sales" json:"totalSales"`
	TotalExpenses types.Money `db:"total_expenses" json:"totalExpenses"`
	DebtCollected types.Money `db:"debt_collected" json:"debtCollected"`
	CreditGiven   types.Money `db:"credit_given" json:"creditGiven"`

	Status Status  `db:"status" json:"status"`
	Notes  *string `db:"notes" json:"notes,omitempty"`

	// ClosedBy is always the authenticated actor, never client input.
	ClosedBy  string    `db:"closed_by" json:"closedBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CreateRequest carries the client-supplied half of a closing: the
// counted actuals and optional notes.
type CreateRequest struct {
	ClosingDate     time.Time   `json:"closingDate"`
	ActualCash      types.Money `json:"actualCash"`
	ActualTransfers types.Money `json:"actualTransfers"`
	Notes           *string     `json:"notes,omitempty"`
}

// Validate checks the request before any storage round-trip.
func (r *CreateRequest) Validate(ctx context.Context) error {
	if r.ActualCash.IsNegative() {
		return apperror.NewValidation("actual cash must not be negative").
			WithDetail("field", "actualCash")
	}
	if r.ActualTransfers.IsNegative() {
		return apperror.NewValidation("actual transfers must not be negative").
			WithDetail("field", "actualTransfers")
	}
	return nil
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
