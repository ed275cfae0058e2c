package sale

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
	"almacen/internal/domain/catalogs/product"
	"almacen/pkg/logger"
	"almacen/pkg/numerator"
)

// NumberPrefix is the receipt series for sales ("V-2026-000123").
const NumberPrefix = "V"

// ProductCatalog is the product lookup the coordinator needs.
type ProductCatalog interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// CustomerCatalog is the customer lookup the coordinator needs.
type CustomerCatalog interface {
	GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error)
	FindByName(ctx context.Context, name string) (*customer.Customer, error)
}

// StockRegister issues stock outflows inside the sale's transaction.
type StockRegister interface {
	Issue(ctx context.Context, productID id.ID, qty types.Quantity, saleID id.ID) error
}

// DebtRegister accrues customer debt inside the sale's transaction.
type DebtRegister interface {
	Accrue(ctx context.Context, customerID id.ID, amount types.Money) error
}

// NumberSource draws sequential receipt numbers.
type NumberSource interface {
	NextNumber(ctx context.Context, cfg numerator.Config, at time.Time) (string, error)
}

// SummaryInvalidator drops cached daily aggregates after a write.
type SummaryInvalidator interface {
	InvalidateDay(ctx context.Context, day time.Time) error
}

// Service is the sale transaction coordinator.
type Service struct {
	repo      Repository
	products  ProductCatalog
	customers CustomerCatalog
	stock     StockRegister
	debt      DebtRegister
	numbers   NumberSource
	txManager tx.Manager

	auditor audit.Recorder    // optional
	cache   SummaryInvalidator // optional
}

// NewService creates a new sale coordinator.
func NewService(
	repo Repository,
	products ProductCatalog,
	customers CustomerCatalog,
	stock StockRegister,
	debt DebtRegister,
	numbers NumberSource,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		customers: customers,
		stock:     stock,
		debt:      debt,
		numbers:   numbers,
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

// Create records a sale: validates input and stock against the current
// snapshot, computes totals from the products' current sale prices,
// then atomically writes the header, the items, the stock outflows
// and, for credit sales, the customer's debt accrual. Any failure
// rolls back the whole document.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Sale, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	saleDate := req.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}
	if req.EntryMethod == "" {
		req.EntryMethod = EntryManual
	}

	var cust *customer.Customer
	if req.CustomerID != nil {
		var err error
		cust, err = s.customers.GetByID(ctx, *req.CustomerID)
		if err != nil {
			return nil, err
		}
	}

	doc := &Sale{
		ID:            id.New(),
		SaleDate:      saleDate,
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		IsPaid:        req.PaymentMethod != MethodCredit,
		EntryMethod:   req.EntryMethod,
		Notes:         req.Notes,
		CreatedBy:     appctx.GetActorID(ctx),
		CreatedAt:     time.Now().UTC(),
	}

	// Pre-transaction stock check against the snapshot. The stock
	// register's conditional decrement is the authoritative guard; this
	// pass exists to fail before opening a transaction and to snapshot
	// unit prices.
	total := types.Zero()
	for _, ir := range req.Items {
		p, err := s.products.GetByID(ctx, ir.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, apperror.NewValidation("product is inactive").
				WithDetail("product_id", p.ID.String()).
				WithDetail("product_name", p.Name)
		}
		if ir.Quantity.GreaterThan(p.CurrentStock) {
			return nil, apperror.NewInsufficientStock(p.ID.String(), p.Name, ir.Quantity, p.CurrentStock)
		}

		item := &Item{
			ID:         id.New(),
			SaleID:     doc.ID,
			ProductID:  p.ID,
			Quantity:   ir.Quantity,
			UnitPrice:  p.SalePrice,
			TotalPrice: types.RoundMoney(ir.Quantity.Mul(p.SalePrice)),
			CreatedAt:  doc.CreatedAt,
		}
		doc.Items = append(doc.Items, item)
		total = total.Add(item.TotalPrice)
	}
	doc.TotalAmount = total

	// Credit limit is advisory. The sale proceeds; the owner sees the
	// warning in the logs and the dashboard.
	if doc.PaymentMethod == MethodCredit && cust != nil && cust.CreditLimit.IsPositive() {
		if cust.CurrentDebt.Add(total).GreaterThan(cust.CreditLimit) {
			logger.Warn(ctx, "credit sale exceeds customer credit limit",
				"customer_id", cust.ID,
				"current_debt", cust.CurrentDebt.String(),
				"sale_total", total.String(),
				"credit_limit", cust.CreditLimit.String(),
			)
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.NextNumber(ctx, numerator.DefaultConfig(NumberPrefix), saleDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.InsertItems(ctx, doc.Items); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}

		for _, item := range doc.Items {
			if err := s.stock.Issue(ctx, item.ProductID, item.Quantity, doc.ID); err != nil {
				return err
			}
		}

		switch {
		case doc.PaymentMethod == MethodCredit:
			if err := s.debt.Accrue(ctx, *doc.CustomerID, doc.TotalAmount); err != nil {
				return err
			}
		case doc.CustomerID != nil:
			// Customer named on a cash or transfer sale: the id is kept
			// for record-keeping only, no debt accrues.
		}

		if s.auditor != nil {
			if err := s.auditor.Record(ctx, audit.Entry{
				EntityType: "sale",
				EntityID:   doc.ID,
				Action:     audit.ActionCreate,
				Changes: map[string]any{
					"number":         doc.Number,
					"payment_method": string(doc.PaymentMethod),
					"total_amount":   doc.TotalAmount.StringFixed(2),
					"items":          len(doc.Items),
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

	s.invalidateDay(ctx, saleDate)

	logger.Info(ctx, "sale recorded",
		"id", doc.ID,
		"number", doc.Number,
		"method", string(doc.PaymentMethod),
		"total", doc.TotalAmount.StringFixed(2),
	)
	return doc, nil
}

// CreateByCustomerName records a sale resolving the customer by fuzzy
// name lookup (first match). Used by the mobile assistant, which works
// with names, not ids.
func (s *Service) CreateByCustomerName(ctx context.Context, req *CreateRequest, customerName string) (*Sale, error) {
	if customerName != "" {
		cust, err := s.customers.FindByName(ctx, customerName)
		if err != nil {
			return nil, err
		}
		req.CustomerID = &cust.ID
	}
	req.EntryMethod = EntryAPI
	return s.Create(ctx, req)
}

// GetByID returns a sale with its items.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// List returns sales matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) invalidateDay(ctx context.Context, day time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDay(ctx, day); err != nil {
		logger.Warn(ctx, "invalidate daily summary cache", "error", err)
	}
}
