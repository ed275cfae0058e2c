package payment

import (
	"context"
	"fmt"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
	"almacen/internal/core/tx"
	"almacen/internal/core/types"
	"almacen/internal/domain/audit"
	"almacen/internal/domain/catalogs/customer"
	"almacen/pkg/logger"
)

// Repository defines storage operations for payments.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)
	ListByCustomer(ctx context.Context, customerID id.ID, limit int) ([]*Payment, error)
	List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*Payment, error)
}

// CustomerCatalog is the customer lookup the coordinator needs.
type CustomerCatalog interface {
	GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error)
	FindByName(ctx context.Context, name string) (*customer.Customer, error)
}

// DebtRegister settles customer debt inside the payment's transaction.
type DebtRegister interface {
	Settle(ctx context.Context, customerID id.ID, amount types.Money) error
}

// SummaryInvalidator drops cached daily aggregates after a write.
type SummaryInvalidator interface {
	InvalidateDay(ctx context.Context, day time.Time) error
}

// Service is the payment transaction coordinator.
type Service struct {
	repo      Repository
	customers CustomerCatalog
	debt      DebtRegister
	txManager tx.Manager

	auditor audit.Recorder     // optional
	cache   SummaryInvalidator // optional
}

// NewService creates a new payment coordinator.
func NewService(repo Repository, customers CustomerCatalog, debt DebtRegister, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		debt:      debt,
		txManager: txManager,
	}
}

// WithAudit attaches an audit recorder.
func (s *Service) WithAudit(rec audit.Recorder) *Service {
	s.auditor = rec
	return s
}

// WithSummaryCache attaches a daily-summary invalidator.
func (s *Service) WithSummaryCache(inv SummaryInvalidator) *Service {
	s.cache = inv
	return s
}

// Create records a debt payment. Validation order is fixed: amount
// first, then customer existence, then the overpayment check against
// the customer's current debt. The debt register's conditional update
// repeats the overpayment check at write time, so a concurrent payment
// racing past the read still fails cleanly.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Payment, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	cust, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	if req.Amount.GreaterThan(cust.CurrentDebt) {
		return nil, apperror.NewOverpayment(req.Amount, cust.CurrentDebt)
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}
	method := req.Method
	if method == "" {
		method = MethodCash
	}
	entry := req.EntryMethod
	if entry == "" {
		entry = EntryManual
	}

	doc := &Payment{
		ID:          id.New(),
		CustomerID:  cust.ID,
		Amount:      types.RoundMoney(req.Amount),
		PaymentDate: paymentDate,
		Method:      method,
		EntryMethod: entry,
		Notes:       req.Notes,
		CreatedBy:   appctx.GetActorID(ctx),
		CreatedAt:   time.Now().UTC(),
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := s.debt.Settle(ctx, doc.CustomerID, doc.Amount); err != nil {
			return err
		}
		if s.auditor != nil {
			if err := s.auditor.Record(ctx, audit.Entry{
				EntityType: "payment",
				EntityID:   doc.ID,
				Action:     audit.ActionCreate,
				Changes: map[string]any{
					"customer_id":    doc.CustomerID.String(),
					"amount":         doc.Amount.StringFixed(2),
					"payment_method": string(doc.Method),
				},
			}); err != nil {
				return fmt.Errorf("record audit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateDay(ctx, paymentDate); err != nil {
			logger.Warn(ctx, "invalidate daily summary cache", "error", err)
		}
	}

	logger.Info(ctx, "payment recorded",
		"id", doc.ID,
		"customer_id", doc.CustomerID,
		"amount", doc.Amount.StringFixed(2),
	)
	return doc, nil
}

// CreateByCustomerName records a payment resolving the customer by
// fuzzy name lookup. Used by the mobile assistant.
func (s *Service) CreateByCustomerName(ctx context.Context, req *CreateRequest, customerName string) (*Payment, error) {
	cust, err := s.customers.FindByName(ctx, customerName)
	if err != nil {
		return nil, err
	}
	req.CustomerID = cust.ID
	req.EntryMethod = EntryAPI
	return s.Create(ctx, req)
}

// GetByID returns a payment.
func (s *Service) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

// ListByCustomer returns a customer's payments, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID id.ID, limit int) ([]*Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByCustomer(ctx, customerID, limit)
}

// List returns payments in a date window, newest first.
func (s *Service) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*Payment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, from, to, limit, offset)
}
