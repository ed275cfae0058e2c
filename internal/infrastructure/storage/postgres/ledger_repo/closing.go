package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/ledger/closing"
	"almacen/internal/infrastructure/storage/postgres"
)

const closingsTable = "cash_closings"

var closingColumns = []string{
	"id", "number", "closing_date",
	"expected_cash", "expected_transfers", "actual_cash", "actual_transfers",
	"cash_variance", "transfer_variance",
	"total_sales", "total_expenses", "debt_collected", "credit_given",
	"status", "notes", "closed_by", "created_at",
}

// ClosingRepo implements closing.Repository.
type ClosingRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewClosingRepo creates a new cash closing repository.
func NewClosingRepo(txManager *postgres.TxManager) *ClosingRepo {
	return &ClosingRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a closing. The unique index on closing_date is the
// authoritative one-per-date guard; its violation surfaces as a
// duplicate error.
func (r *ClosingRepo) Create(ctx context.Context, c *closing.CashClosing) error {
	q := r.builder.Insert(closingsTable).
		Columns(closingColumns...).
		Values(
			c.ID, c.Number, c.ClosingDate,
			c.ExpectedCash, c.ExpectedTransfers, c.ActualCash, c.ActualTransfers,
			c.CashVariance, c.TransferVariance,
			c.TotalSales, c.TotalExpenses, c.DebtCollected, c.CreditGiven,
			c.Status, c.Notes, c.ClosedBy, c.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate("cash closing", "closing_date",
				c.ClosingDate.Format("2006-01-02"))
		}
		return fmt.Errorf("insert closing: %w", err)
	}
	return nil
}

// GetByID retrieves a closing.
func (r *ClosingRepo) GetByID(ctx context.Context, closingID id.ID) (*closing.CashClosing, error) {
	q := r.builder.Select(closingColumns...).
		From(closingsTable).
		Where(squirrel.Eq{"id": closingID})

	return r.getOne(ctx, q, closingID.String())
}

// GetByDate retrieves the closing for a calendar date.
func (r *ClosingRepo) GetByDate(ctx context.Context, day time.Time) (*closing.CashClosing, error) {
	q := r.builder.Select(closingColumns...).
		From(closingsTable).
		Where(squirrel.Eq{"closing_date": day})

	return r.getOne(ctx, q, day.Format("2006-01-02"))
}

func (r *ClosingRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*closing.CashClosing, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c closing.CashClosing
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("cash closing", key)
		}
		return nil, fmt.Errorf("get closing: %w", err)
	}
	return &c, nil
}

// ExistsForDate reports whether a closing exists for the date.
func (r *ClosingRepo) ExistsForDate(ctx context.Context, day time.Time) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM cash_closings WHERE closing_date = $1)`

	var exists bool
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, q, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("check closing exists: %w", err)
	}
	return exists, nil
}

// List returns closings in a date range, newest first.
func (r *ClosingRepo) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*closing.CashClosing, error) {
	q := r.builder.Select(closingColumns...).
		From(closingsTable).
		OrderBy("closing_date DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"closing_date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"closing_date": *to})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var closings []*closing.CashClosing
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &closings, sql, args...); err != nil {
		return nil, fmt.Errorf("list closings: %w", err)
	}
	return closings, nil
}
