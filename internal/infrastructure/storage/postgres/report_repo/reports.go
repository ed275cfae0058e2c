// Package report_repo provides the read-only aggregation queries used
// by the reconciliation engine and the reports service.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/ledger/closing"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository and closing.DayAggregator.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// Compile-time checks.
var (
	_ reports.Repository    = (*ReportRepo)(nil)
	_ closing.DayAggregator = (*ReportRepo)(nil)
)

// TotalsForDay aggregates committed sales, expenses and payments for
// one calendar date. COALESCE keeps empty days at zero instead of NULL.
func (r *ReportRepo) TotalsForDay(ctx context.Context, day time.Time) (closing.DayTotals, error) {
	const q = `
		SELECT
			COALESCE((SELECT SUM(total_amount) FROM sales
				WHERE sale_date >= $1 AND sale_date < $2 AND payment_method = 'cash'), 0)     AS cash_sales,
			COALESCE((SELECT SUM(total_amount) FROM sales
				WHERE sale_date >= $1 AND sale_date < $2 AND payment_method = 'transfer'), 0) AS transfer_sales,
			COALESCE((SELECT SUM(total_amount) FROM sales
				WHERE sale_date >= $1 AND sale_date < $2 AND payment_method = 'credit'), 0)   AS credit_sales,
			COALESCE((SELECT SUM(amount) FROM expenses
				WHERE expense_date >= $1 AND expense_date < $2 AND payment_method = 'cash'), 0)     AS cash_expenses,
			COALESCE((SELECT SUM(amount) FROM expenses
				WHERE expense_date >= $1 AND expense_date < $2 AND payment_method = 'transfer'), 0) AS transfer_expenses,
			COALESCE((SELECT SUM(amount) FROM payments
				WHERE payment_date >= $1 AND payment_date < $2 AND payment_method = 'cash'), 0)     AS cash_payments,
			COALESCE((SELECT SUM(amount) FROM payments
				WHERE payment_date >= $1 AND payment_date < $2 AND payment_method = 'transfer'), 0) AS transfer_payments,
			COALESCE((SELECT SUM(amount) FROM payments
				WHERE payment_date >= $1 AND payment_date < $2 AND payment_method = 'card'), 0)     AS card_payments`

	dayStart := closing.Day(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var totals closing.DayTotals
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &totals, q, dayStart, dayEnd); err != nil {
		return closing.DayTotals{}, fmt.Errorf("aggregate day totals: %w", err)
	}
	return totals, nil
}

// SalesCounts returns the day's sale count and API-entered share.
func (r *ReportRepo) SalesCounts(ctx context.Context, day time.Time) (int, int, error) {
	const q = `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE entry_method = 'api') AS api
		FROM sales
		WHERE sale_date >= $1 AND sale_date < $2`

	dayStart := closing.Day(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var total, api int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, q, dayStart, dayEnd).Scan(&total, &api); err != nil {
		return 0, 0, fmt.Errorf("count sales: %w", err)
	}
	return total, api, nil
}

// SalesByDay groups sales totals per calendar date, oldest first.
func (r *ReportRepo) SalesByDay(ctx context.Context, from, to time.Time) ([]*reports.SalesByDay, error) {
	const q = `
		SELECT date_trunc('day', sale_date) AS day,
		       COALESCE(SUM(total_amount), 0) AS total_amount,
		       COUNT(*) AS sales_count
		FROM sales
		WHERE sale_date >= $1 AND sale_date < $2
		GROUP BY 1
		ORDER BY 1`

	var rows []*reports.SalesByDay
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, q, from, to.AddDate(0, 0, 1)); err != nil {
		return nil, fmt.Errorf("sales by day: %w", err)
	}
	return rows, nil
}

// LowStock returns active products at or below their minimum stock,
// most depleted first relative to the threshold.
func (r *ReportRepo) LowStock(ctx context.Context) ([]*product.Product, error) {
	const q = `
		SELECT id, name, barcode, category, supplier_id,
		       cost_price, sale_price,
		       current_stock, min_stock, max_stock, unit,
		       is_active, created_at, updated_at
		FROM products
		WHERE is_active AND current_stock <= min_stock
		ORDER BY (current_stock - min_stock), name`

	var products []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, q); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return products, nil
}

// TopDebtors returns customers with outstanding debt, largest first.
func (r *ReportRepo) TopDebtors(ctx context.Context, limit int) ([]*reports.Debtor, error) {
	const q = `
		SELECT id AS customer_id, name, phone, current_debt, credit_limit
		FROM customers
		WHERE is_active AND current_debt > 0
		ORDER BY current_debt DESC
		LIMIT $1`

	var debtors []*reports.Debtor
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &debtors, q, limit); err != nil {
		return nil, fmt.Errorf("top debtors: %w", err)
	}
	return debtors, nil
}

// DebtTotal returns the sum of all outstanding debt.
func (r *ReportRepo) DebtTotal(ctx context.Context) (types.Money, error) {
	const q = `SELECT COALESCE(SUM(current_debt), 0) FROM customers WHERE is_active`

	var total types.Money
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, q).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("debt total: %w", err)
	}
	return total, nil
}
