package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/ledger/payment"
	"almacen/internal/infrastructure/storage/postgres"
)

const paymentsTable = "payments"

var paymentColumns = []string{
	"id", "customer_id", "amount", "payment_date", "payment_method",
	"entry_method", "notes", "created_by", "created_at",
}

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a payment.
func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	q := r.builder.Insert(paymentsTable).
		Columns(paymentColumns...).
		Values(
			p.ID, p.CustomerID, p.Amount, p.PaymentDate, p.Method,
			p.EntryMethod, p.Notes, p.CreatedBy, p.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p payment.Payment
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// ListByCustomer returns a customer's payments, newest first.
func (r *PaymentRepo) ListByCustomer(ctx context.Context, customerID id.ID, limit int) ([]*payment.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("payment_date DESC", "created_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []*payment.Payment
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// List returns payments in a date window, newest first.
func (r *PaymentRepo) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*payment.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		OrderBy("payment_date DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"payment_date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.Lt{"payment_date": *to})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []*payment.Payment
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}
