// Package catalog_repo provides PostgreSQL implementations for the
// catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productColumns = []string{
	"id", "name", "barcode", "category", "supplier_id",
	"cost_price", "sale_price",
	"current_stock", "min_stock", "max_stock", "unit",
	"is_active", "created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Name, p.Barcode, p.Category, p.SupplierID,
			p.CostPrice, p.SalePrice,
			p.CurrentStock, p.MinStock, p.MaxStock, p.Unit,
			p.IsActive, p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate("product", "barcode", stringOrEmpty(p.Barcode))
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update persists catalog fields. current_stock is deliberately absent
// from the SET list; only the stock register writes it.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("name", p.Name).
		Set("barcode", p.Barcode).
		Set("category", p.Category).
		Set("supplier_id", p.SupplierID).
		Set("cost_price", p.CostPrice).
		Set("sale_price", p.SalePrice).
		Set("min_stock", p.MinStock).
		Set("max_stock", p.MaxStock).
		Set("unit", p.Unit).
		Set("is_active", p.IsActive).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return apperror.NewDuplicate("product", "barcode", stringOrEmpty(p.Barcode))
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID.String())
	}
	return nil
}

// GetByID retrieves a product.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetByBarcode retrieves a product by its barcode.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"barcode": barcode})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("product", barcode)
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return &p, nil
}

// Search returns active products matching the query by name or
// barcode, shortest (closest) name first.
func (r *ProductRepo) Search(ctx context.Context, query string, limit int) ([]*product.Product, error) {
	pattern := "%" + query + "%"
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.Eq{"barcode": query},
		}).
		OrderBy("length(name)", "name").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// List retrieves products matching the filter.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		OrderBy("name").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Deactivate soft-deletes a product.
func (r *ProductRepo) Deactivate(ctx context.Context, productID id.ID) error {
	q := r.builder.Update(productsTable).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
