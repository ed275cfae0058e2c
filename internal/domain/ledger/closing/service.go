package closing

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
	"almacen/pkg/logger"
	"almacen/pkg/numerator"
)

// NumberPrefix is the receipt series for closings ("CC-2026-000042").
const NumberPrefix = "CC"

// DefaultTolerance is the variance band, in currency units, inside
// which a closing still counts as completed. Overridable via config.
var DefaultTolerance = types.MustMoney("1")

// DayTotals are the committed ledger aggregates for one calendar date.
// Credit sales appear only in CreditGiven; they are a liability, not
// received money, and must never be summed into either expected
// position.
type DayTotals struct {
	CashSales     types.Money `db:"cash_sales" json:"cashSales"`
	TransferSales types.Money `db:"transfer_sales" json:"transferSales"`
	CreditSales   types.Money `db:"credit_sales" json:"creditSales"`

	CashExpenses     types.Money `db:"cash_expenses" json:"cashExpenses"`
	TransferExpenses types.Money `db:"transfer_expenses" json:"transferExpenses"`

	CashPayments     types.Money `db:"cash_payments" json:"cashPayments"`
	TransferPayments types.Money `db:"transfer_payments" json:"transferPayments"`
	CardPayments     types.Money `db:"card_payments" json:"cardPayments"`
}

// DebtCollected is the sum of all payments regardless of method.
func (t DayTotals) DebtCollected() types.Money {
	return t.CashPayments.Add(t.TransferPayments).Add(t.CardPayments)
}

// TotalSales is income from settled sales; credit sales are excluded.
func (t DayTotals) TotalSales() types.Money {
	return t.CashSales.Add(t.TransferSales)
}

// TotalExpenses is the day's outflow across methods.
func (t DayTotals) TotalExpenses() types.Money {
	return t.CashExpenses.Add(t.TransferExpenses)
}

// DayAggregator reads the day's totals from committed rows.
type DayAggregator interface {
	TotalsForDay(ctx context.Context, day time.Time) (DayTotals, error)
}

// Repository defines storage operations for cash closings.
// Create must surface a duplicate-date unique violation as a conflict;
// the database constraint, not the service's pre-check, is the
// authoritative one-per-date guard.
type Repository interface {
	Create(ctx context.Context, c *CashClosing) error
	GetByID(ctx context.Context, closingID id.ID) (*CashClosing, error)
	GetByDate(ctx context.Context, day time.Time) (*CashClosing, error)
	ExistsForDate(ctx context.Context, day time.Time) (bool, error)
	List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*CashClosing, error)
}

// NumberSource draws sequential receipt numbers.
type NumberSource interface {
	NextNumber(ctx context.Context, cfg numerator.Config, at time.Time) (string, error)
}

// Service is the reconciliation engine.
type Service struct {
	repo       Repository
	aggregator DayAggregator
	numbers    NumberSource
	txManager  tx.Manager
	tolerance  types.Money

	auditor audit.Recorder // optional
}

// NewService creates a new reconciliation engine with the given
// variance tolerance.
func NewService(
	repo Repository,
	aggregator DayAggregator,
	numbers NumberSource,
	txManager tx.Manager,
	tolerance types.Money,
) *Service {
	if tolerance.IsNegative() {
		tolerance = DefaultTolerance
	}
	return &Service{
		repo:       repo,
		aggregator: aggregator,
		numbers:    numbers,
		txManager:  txManager,
		tolerance:  tolerance,
	}
}

// WithAudit attaches an audit recorder.
func (s *Service) WithAudit(rec audit.Recorder) *Service {
	s.auditor = rec
	return s
}

// Create performs the daily closing for the request's date:
//
//	expectedCash      = cash sales + cash debt payments - cash expenses
//	expectedTransfers = transfer sales + transfer debt payments - transfer expenses
//
// and marks the record a discrepancy when either variance exceeds the
// tolerance band. Every figure shown to the owner as "today's result"
// derives from these two formulas.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CashClosing, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	actor := appctx.GetActor(ctx)
	if actor == nil {
		return nil, apperror.NewUnauthorized("cash closing requires an authenticated actor")
	}

	day := req.ClosingDate
	if day.IsZero() {
		day = time.Now()
	}
	day = Day(day)

	// Fast path only. The unique constraint on closing_date decides
	// the race between two concurrent closings.
	exists, err := s.repo.ExistsForDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("check existing closing: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("closing already exists for this date").
			WithDetail("closing_date", day.Format("2006-01-02"))
	}

	totals, err := s.aggregator.TotalsForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("aggregate day totals: %w", err)
	}

	expectedCash := totals.CashSales.Add(totals.CashPayments).Sub(totals.CashExpenses)
	expectedTransfers := totals.TransferSales.Add(totals.TransferPayments).Sub(totals.TransferExpenses)

	actualCash := types.RoundMoney(req.ActualCash)
	actualTransfers := types.RoundMoney(req.ActualTransfers)

	cashVariance := actualCash.Sub(expectedCash)
	transferVariance := actualTransfers.Sub(expectedTransfers)

	status := StatusCompleted
	if cashVariance.Abs().GreaterThan(s.tolerance) || transferVariance.Abs().GreaterThan(s.tolerance) {
		status = StatusDiscrepancy
	}

	doc := &CashClosing{
		ID:                id.New(),
		ClosingDate:       day,
		ExpectedCash:      expectedCash,
		ExpectedTransfers: expectedTransfers,
		ActualCash:        actualCash,
		ActualTransfers:   actualTransfers,
		CashVariance:      cashVariance,
		TransferVariance:  transferVariance,
		TotalSales:        totals.TotalSales(),
		TotalExpenses:     totals.TotalExpenses(),
		DebtCollected:     totals.DebtCollected(),
		CreditGiven:       totals.CreditSales,
		Status:            status,
		Notes:             req.Notes,
		ClosedBy:          actor.ID,
		CreatedAt:         time.Now().UTC(),
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numbers.NextNumber(ctx, numerator.DefaultConfig(NumberPrefix), day)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return err
		}

		if s.auditor != nil {
			if err := s.auditor.Record(ctx, audit.Entry{
				EntityType: "cash_closing",
				EntityID:   doc.ID,
				Action:     audit.ActionClose,
				Changes: map[string]any{
					"closing_date":  day.Format("2006-01-02"),
					"expected_cash": expectedCash.StringFixed(2),
					"actual_cash":   actualCash.StringFixed(2),
					"status":        string(status),
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

	if status == StatusDiscrepancy {
		logger.Warn(ctx, "cash closing has a discrepancy",
			"closing_date", day.Format("2006-01-02"),
			"cash_variance", cashVariance.StringFixed(2),
			"transfer_variance", transferVariance.StringFixed(2),
		)
	} else {
		logger.Info(ctx, "cash closing completed",
			"closing_date", day.Format("2006-01-02"),
			"number", doc.Number,
		)
	}
	return doc, nil
}

// Preview computes the expected positions for a date without
// persisting anything. The UI shows it before the owner counts the
// drawer.
func (s *Service) Preview(ctx context.Context, date time.Time) (*CashClosing, error) {
	day := Day(date)

	totals, err := s.aggregator.TotalsForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("aggregate day totals: %w", err)
	}

	return &CashClosing{
		ClosingDate:       day,
		ExpectedCash:      totals.CashSales.Add(totals.CashPayments).Sub(totals.CashExpenses),
		ExpectedTransfers: totals.TransferSales.Add(totals.TransferPayments).Sub(totals.TransferExpenses),
		TotalSales:        totals.TotalSales(),
		TotalExpenses:     totals.TotalExpenses(),
		DebtCollected:     totals.DebtCollected(),
		CreditGiven:       totals.CreditSales,
	}, nil
}

// GetByID returns a closing.
func (s *Service) GetByID(ctx context.Context, closingID id.ID) (*CashClosing, error) {
	return s.repo.GetByID(ctx, closingID)
}

// GetByDate returns the closing for a calendar date.
func (s *Service) GetByDate(ctx context.Context, date time.Time) (*CashClosing, error) {
	return s.repo.GetByDate(ctx, Day(date))
}

// List returns closings in a date range, newest first.
func (s *Service) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*CashClosing, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, from, to, limit, offset)
}
