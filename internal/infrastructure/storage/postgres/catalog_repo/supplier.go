package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/catalogs/supplier"
	"almacen/internal/infrastructure/storage/postgres"
)

const suppliersTable = "suppliers"

var supplierColumns = []string{
	"id", "name", "contact_person", "phone", "email", "address", "notes",
	"created_at", "updated_at",
}

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new supplier.
func (r *SupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	q := r.builder.Insert(suppliersTable).
		Columns(supplierColumns...).
		Values(
			s.ID, s.Name, s.ContactPerson, s.Phone, s.Email, s.Address, s.Notes,
			s.CreatedAt, s.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// Update persists supplier changes.
func (r *SupplierRepo) Update(ctx context.Context, s *supplier.Supplier) error {
	q := r.builder.Update(suppliersTable).
		Set("name", s.Name).
		Set("contact_person", s.ContactPerson).
		Set("phone", s.Phone).
		Set("email", s.Email).
		Set("address", s.Address).
		Set("notes", s.Notes).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", s.ID.String())
	}
	return nil
}

// GetByID retrieves a supplier.
func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).
		From(suppliersTable).
		Where(squirrel.Eq{"id": supplierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s supplier.Supplier
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &s, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("supplier", supplierID.String())
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// List retrieves suppliers ordered by name.
func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).
		From(suppliersTable).
		OrderBy("name").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var suppliers []*supplier.Supplier
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &suppliers, sql, args...); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// Delete removes a supplier. Products referencing it keep a NULL
// supplier via the FK's ON DELETE SET NULL.
func (r *SupplierRepo) Delete(ctx context.Context, supplierID id.ID) error {
	q := r.builder.Delete(suppliersTable).
		Where(squirrel.Eq{"id": supplierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", supplierID.String())
	}
	return nil
}
