// Package ledger_repo provides PostgreSQL implementations for the
// ledger document repositories: sales, payments, expenses and cash
// closings.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/ledger/sale"
	"almacen/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"
)

var saleColumns = []string{
	"id", "number", "sale_date", "customer_id", "payment_method",
	"total_amount", "is_paid", "entry_method", "notes",
	"created_by", "created_at",
}

var saleItemColumns = []string{
	"id", "sale_id", "product_id", "quantity", "unit_price", "total_price", "created_at",
}

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the sale header.
func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(
			s.ID, s.Number, s.SaleDate, s.CustomerID, s.PaymentMethod,
			s.TotalAmount, s.IsPaid, s.EntryMethod, s.Notes,
			s.CreatedBy, s.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// InsertItems inserts all line items in one statement.
func (r *SaleRepo) InsertItems(ctx context.Context, items []*sale.Item) error {
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(saleItemsTable).Columns(saleItemColumns...)
	for _, it := range items {
		q = q.Values(it.ID, it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice, it.CreatedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}
	return nil
}

// GetByID returns a sale with its items.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s sale.Sale
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &s, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	items, err := r.itemsFor(ctx, []id.ID{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return &s, nil
}

// List returns sales with items, newest first.
func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		OrderBy("sale_date DESC", "created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"sale_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"sale_date": *filter.To})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.PaymentMethod != nil {
		q = q.Where(squirrel.Eq{"payment_method": *filter.PaymentMethod})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sales []*sale.Sale
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]id.ID, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range sales {
		s.Items = items[s.ID]
	}
	return sales, nil
}

func (r *SaleRepo) itemsFor(ctx context.Context, saleIDs []id.ID) (map[id.ID][]*sale.Item, error) {
	q := r.builder.Select(saleItemColumns...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleIDs}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*sale.Item
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}

	bySale := make(map[id.ID][]*sale.Item, len(saleIDs))
	for _, it := range items {
		bySale[it.SaleID] = append(bySale[it.SaleID], it)
	}
	return bySale, nil
}
