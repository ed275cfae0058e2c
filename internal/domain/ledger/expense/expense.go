// Package expense provides the expense document. Expenses touch no
// stock or debt; they only reduce the day's expected cash and transfer
// positions at closing time.
package expense

import (
	"context"
	"strings"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/pkg/logger"
)

// Method is how the expense was paid.
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
)

// Valid reports whether m is a known expense method.
func (m Method) Valid() bool {
	return m == MethodCash || m == MethodTransfer
}

// Expense records a business outflow.
type Expense struct {
	ID id.ID `db:"id" json:"id"`

	Amount      types.Money `db:"amount" json:"amount"`
	Category    string      `db:"category" json:"category"`
	Description *string     `db:"description" json:"description,omitempty"`
	Method      Method      `db:"payment_method" json:"paymentMethod"`
	ExpenseDate time.Time   `db:"expense_date" json:"expenseDate"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks expense invariants.
func (e *Expense) Validate(ctx context.Context) error {
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("expense amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", e.Amount.String())
	}
	if strings.TrimSpace(e.Category) == "" {
		return apperror.NewValidation("expense category is required").
			WithDetail("field", "category")
	}
	if !e.Method.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(e.Method))
	}
	return nil
}

// ListFilter narrows expense queries.
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Category *string
	Limit    int
	Offset   int
}

// Repository defines storage operations for expenses.
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, expenseID id.ID) (*Expense, error)
	List(ctx context.Context, filter ListFilter) ([]*Expense, error)
}

// SummaryInvalidator drops cached daily aggregates after a write.
type SummaryInvalidator interface {
	InvalidateDay(ctx context.Context, day time.Time) error
}

// Service provides expense operations.
type Service struct {
	repo  Repository
	cache SummaryInvalidator // optional
}

// NewService creates a new expense service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithSummaryCache attaches a daily-summary invalidator.
func (s *Service) WithSummaryCache(inv SummaryInvalidator) *Service {
	s.cache = inv
	return s
}

// Create records an expense. A single-row insert, no transaction
// needed.
func (s *Service) Create(ctx context.Context, e *Expense) error {
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = time.Now().UTC()
	}
	e.Amount = types.RoundMoney(e.Amount)
	e.CreatedBy = appctx.GetActorID(ctx)
	e.CreatedAt = time.Now().UTC()

	if err := e.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}

	logger.Info(ctx, "expense recorded",
		"id", e.ID,
		"category", e.Category,
		"amount", e.Amount.StringFixed(2),
	)

	if s.cache != nil {
		if err := s.cache.InvalidateDay(ctx, e.ExpenseDate); err != nil {
			logger.Warn(ctx, "invalidate daily summary cache", "error", err)
		}
	}
	return nil
}

// GetByID returns an expense.
func (s *Service) GetByID(ctx context.Context, expenseID id.ID) (*Expense, error) {
	return s.repo.GetByID(ctx, expenseID)
}

// List returns expenses matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Expense, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
