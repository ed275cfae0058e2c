package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/infrastructure/storage/postgres"
)

const customersTable = "customers"

var customerColumns = []string{
	"id", "name", "phone", "email", "address", "id_document",
	"credit_limit", "current_debt",
	"is_active", "notes", "created_at", "updated_at",
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Insert(customersTable).
		Columns(customerColumns...).
		Values(
			c.ID, c.Name, c.Phone, c.Email, c.Address, c.IDDocument,
			c.CreditLimit, c.CurrentDebt,
			c.IsActive, c.Notes, c.CreatedAt, c.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// Update persists catalog fields. current_debt is deliberately absent
// from the SET list; only the debt register writes it.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Update(customersTable).
		Set("name", c.Name).
		Set("phone", c.Phone).
		Set("email", c.Email).
		Set("address", c.Address).
		Set("id_document", c.IDDocument).
		Set("credit_limit", c.CreditLimit).
		Set("is_active", c.IsActive).
		Set("notes", c.Notes).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", c.ID.String())
	}
	return nil
}

// GetByID retrieves a customer.
func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).
		From(customersTable).
		Where(squirrel.Eq{"id": customerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c customer.Customer
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if postgres.IsNoRows(err) {
			return nil, apperror.NewNotFound("customer", customerID.String())
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// Search returns active customers matching the query by name, shortest
// name first so the mobile API's first-match resolution picks the
// closest one.
func (r *CustomerRepo) Search(ctx context.Context, query string, limit int) ([]*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).
		From(customersTable).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.ILike{"name": "%" + query + "%"}).
		OrderBy("length(name)", "name").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var customers []*customer.Customer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &customers, sql, args...); err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return customers, nil
}

// List retrieves customers matching the filter.
func (r *CustomerRepo) List(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).
		From(customersTable).
		OrderBy("name").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var customers []*customer.Customer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &customers, sql, args...); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// ListWithDebt returns active customers with outstanding debt, largest
// first.
func (r *CustomerRepo) ListWithDebt(ctx context.Context, limit int) ([]*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).
		From(customersTable).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Expr("current_debt > 0")).
		OrderBy("current_debt DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var customers []*customer.Customer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &customers, sql, args...); err != nil {
		return nil, fmt.Errorf("list debtors: %w", err)
	}
	return customers, nil
}

// Deactivate soft-deletes a customer.
func (r *CustomerRepo) Deactivate(ctx context.Context, customerID id.ID) error {
	q := r.builder.Update(customersTable).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": customerID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deactivate customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}
