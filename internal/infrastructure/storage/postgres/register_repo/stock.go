// Package register_repo provides PostgreSQL implementations for the
// stock and debt registers. Both rely on conditional single-statement
// updates so concurrent writers fail the precondition instead of
// corrupting a balance.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/registers/stock"
	"almacen/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "stock_movements"

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ApplyOutflow decrements current_stock only while it covers qty. Zero
// rows affected means the precondition failed under concurrency (or
// the product vanished); the caller distinguishes via Available.
func (r *StockRepo) ApplyOutflow(ctx context.Context, productID id.ID, qty types.Quantity) (bool, error) {
	const q = `
		UPDATE products
		SET current_stock = current_stock - $2, updated_at = now()
		WHERE id = $1 AND current_stock >= $2`

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, q, productID, qty)
	if err != nil {
		return false, fmt.Errorf("apply outflow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetLevel overwrites current_stock and returns the previous level in
// the same statement, locking the row for the rest of the transaction.
func (r *StockRepo) SetLevel(ctx context.Context, productID id.ID, level types.Quantity) (types.Quantity, error) {
	const q = `
		UPDATE products p
		SET current_stock = $2, updated_at = now()
		FROM (SELECT id, current_stock FROM products WHERE id = $1 FOR UPDATE) prev
		WHERE p.id = prev.id
		RETURNING prev.current_stock`

	var prev types.Quantity
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, q, productID, level).Scan(&prev); err != nil {
		if postgres.IsNoRows(err) {
			return types.Zero(), apperror.NewNotFound("product", productID.String())
		}
		return types.Zero(), fmt.Errorf("set stock level: %w", err)
	}
	return prev, nil
}

// AppendMovement inserts an audit row.
func (r *StockRepo) AppendMovement(ctx context.Context, m *stock.Movement) error {
	q := r.builder.Insert(stockMovementsTable).
		Columns("id", "product_id", "movement_type", "quantity", "reason", "reference_id", "created_by", "created_at").
		Values(m.ID, m.ProductID, m.Type, m.Quantity, m.Reason, m.ReferenceID, m.CreatedBy, m.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// Available returns the product's name and current stock.
func (r *StockRepo) Available(ctx context.Context, productID id.ID) (string, types.Quantity, error) {
	const q = `SELECT name, current_stock FROM products WHERE id = $1`

	var name string
	var level types.Quantity
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, q, productID).Scan(&name, &level); err != nil {
		if postgres.IsNoRows(err) {
			return "", types.Zero(), apperror.NewNotFound("product", productID.String())
		}
		return "", types.Zero(), fmt.Errorf("read stock: %w", err)
	}
	return name, level, nil
}

// ListMovements returns movement history for a product, newest first.
func (r *StockRepo) ListMovements(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]*stock.Movement, error) {
	q := r.builder.Select("id", "product_id", "movement_type", "quantity", "reason", "reference_id", "created_by", "created_at").
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []*stock.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}
