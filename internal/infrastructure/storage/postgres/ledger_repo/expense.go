package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/ledger/expense"
	"almacen/internal/infrastructure/storage/postgres"
)

const expensesTable = "expenses"

var expenseColumns = []string{
	"id", "amount", "category", "description", "payment_method",
	"expense_date", "created_by", "created_at",
}

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an expense.
func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	q := r.builder.Insert(expensesTable).
		Columns(expenseColumns...).
		Values(
			e.ID, e.Amount, e.Category, e.Description, e.Method,
			e.ExpenseDate, e.CreatedBy, e.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense.
func (r *ExpenseRepo) GetByID(ctx context.Context, expenseID id.ID) (*expense.Expense, error) {
	q := r.builder.Select(expenseColumns...).
		From(expensesTable).
		Where(squirrel.Eq{"id": expenseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e expense.Expense
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &e, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("expense", expenseID.String())
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return &e, nil
}

// List returns expenses matching the filter, newest first.
func (r *ExpenseRepo) List(ctx context.Context, filter expense.ListFilter) ([]*expense.Expense, error) {
	q := r.builder.Select(expenseColumns...).
		From(expensesTable).
		OrderBy("expense_date DESC", "created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"expense_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"expense_date": *filter.To})
	}
	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": *filter.Category})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var expenses []*expense.Expense
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &expenses, sql, args...); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}
