package register_repo

import (
	"context"
	"fmt"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/infrastructure/storage/postgres"
)

// DebtRepo implements debt.Repository.
type DebtRepo struct {
	txManager *postgres.TxManager
}

// NewDebtRepo creates a new debt register repository.
func NewDebtRepo(txManager *postgres.TxManager) *DebtRepo {
	return &DebtRepo{txManager: txManager}
}

// Accrue increments current_debt. Zero rows affected means the
// customer does not exist.
func (r *DebtRepo) Accrue(ctx context.Context, customerID id.ID, amount types.Money) (bool, error) {
	const q = `
		UPDATE customers
		SET current_debt = current_debt + $2, updated_at = now()
		WHERE id = $1`

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, q, customerID, amount)
	if err != nil {
		return false, fmt.Errorf("accrue debt: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Settle decrements current_debt only while it covers amount. The
// WHERE clause is the authoritative overpayment guard.
func (r *DebtRepo) Settle(ctx context.Context, customerID id.ID, amount types.Money) (bool, error) {
	const q = `
		UPDATE customers
		SET current_debt = current_debt - $2, updated_at = now()
		WHERE id = $1 AND current_debt >= $2`

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, q, customerID, amount)
	if err != nil {
		return false, fmt.Errorf("settle debt: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CurrentDebt returns the customer's debt balance.
func (r *DebtRepo) CurrentDebt(ctx context.Context, customerID id.ID) (types.Money, error) {
	const q = `SELECT current_debt FROM customers WHERE id = $1`

	var debt types.Money
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, q, customerID).Scan(&debt); err != nil {
		if postgres.IsNoRows(err) {
			return types.Zero(), apperror.NewNotFound("customer", customerID.String())
		}
		return types.Zero(), fmt.Errorf("read debt: %w", err)
	}
	return debt, nil
}
