package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/ledger/closing"
	"almacen/pkg/logger"
)

// Repository defines the read-only queries backing the reports.
type Repository interface {
	// TotalsForDay aggregates the day's committed ledger rows. Shared
	// with the reconciliation engine.
	TotalsForDay(ctx context.Context, day time.Time) (closing.DayTotals, error)

	// SalesCounts returns the day's sale count and how many of those
	// came through the keyed API.
	SalesCounts(ctx context.Context, day time.Time) (total, api int, err error)

	// SalesByDay groups sales totals per calendar date, oldest first.
	SalesByDay(ctx context.Context, from, to time.Time) ([]*SalesByDay, error)

	// LowStock returns active products with current_stock <= min_stock,
	// most depleted first.
	LowStock(ctx context.Context) ([]*product.Product, error)

	// TopDebtors returns customers with positive debt, largest first.
	TopDebtors(ctx context.Context, limit int) ([]*Debtor, error)
}

// ClosingSource lists persisted closings for export.
type ClosingSource interface {
	List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*closing.CashClosing, error)
}

// SummaryCache caches daily summaries. Implementations must treat a
// miss as (nil, false, nil).
type SummaryCache interface {
	GetDay(ctx context.Context, day time.Time) (*DailySummary, bool, error)
	SetDay(ctx context.Context, day time.Time, s *DailySummary) error
}

// Service builds the reports.
type Service struct {
	repo     Repository
	closings ClosingSource
	cache    SummaryCache // optional
}

// NewService creates a new reports service.
func NewService(repo Repository, closings ClosingSource) *Service {
	return &Service{repo: repo, closings: closings}
}

// WithCache attaches a daily-summary cache.
func (s *Service) WithCache(cache SummaryCache) *Service {
	s.cache = cache
	return s
}

// DailySummary computes the dashboard figures for a date. Results are
// cached; ledger writes invalidate the day's entry, so a stale read
// only ever follows a cache failure, which is logged and tolerated.
func (s *Service) DailySummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	day := closing.Day(date)

	if s.cache != nil {
		if cached, ok, err := s.cache.GetDay(ctx, day); err != nil {
			logger.Warn(ctx, "daily summary cache read", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	totals, err := s.repo.TotalsForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("aggregate day totals: %w", err)
	}
	total, api, err := s.repo.SalesCounts(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("count sales: %w", err)
	}

	summary := &DailySummary{
		Date:              day.Format("2006-01-02"),
		CashSales:         totals.CashSales,
		TransferSales:     totals.TransferSales,
		TotalIncome:       totals.TotalSales(),
		CreditGiven:       totals.CreditSales,
		DebtCollected:     totals.DebtCollected(),
		TotalExpenses:     totals.TotalExpenses(),
		ExpectedCash:      totals.CashSales.Add(totals.CashPayments).Sub(totals.CashExpenses),
		ExpectedTransfers: totals.TransferSales.Add(totals.TransferPayments).Sub(totals.TransferExpenses),
		SalesCount:        total,
		APISalesCount:     api,
	}

	if s.cache != nil {
		if err := s.cache.SetDay(ctx, day, summary); err != nil {
			logger.Warn(ctx, "daily summary cache write", "error", err)
		}
	}
	return summary, nil
}

// SalesHistory returns per-day sales totals for a date range.
func (s *Service) SalesHistory(ctx context.Context, from, to time.Time) ([]*SalesByDay, error) {
	if to.Before(from) {
		from, to = to, from
	}
	return s.repo.SalesByDay(ctx, closing.Day(from), closing.Day(to))
}

// LowStock returns active products at or below their minimum stock.
func (s *Service) LowStock(ctx context.Context) ([]*product.Product, error) {
	return s.repo.LowStock(ctx)
}

// PurchaseSuggestions recommends restock quantities for low-stock
// products: fill to max_stock when a maximum is set, otherwise twice
// the minimum. Products at zero are urgent.
func (s *Service) PurchaseSuggestions(ctx context.Context) ([]*PurchaseSuggestion, error) {
	low, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*PurchaseSuggestion, 0, len(low))
	for _, p := range low {
		suggested := p.MaxStock.Sub(p.CurrentStock)
		if !p.MaxStock.IsPositive() {
			suggested = p.MinStock.Mul(two)
		}
		if !suggested.IsPositive() {
			continue
		}

		priority := PriorityNormal
		if p.CurrentStock.IsZero() {
			priority = PriorityUrgent
		}

		suggestions = append(suggestions, &PurchaseSuggestion{
			ProductID:         p.ID,
			ProductName:       p.Name,
			SupplierID:        p.SupplierID,
			CurrentStock:      p.CurrentStock,
			MinStock:          p.MinStock,
			MaxStock:          p.MaxStock,
			SuggestedQuantity: suggested,
			Priority:          priority,
		})
	}
	return suggestions, nil
}

var two = types.MustMoney("2")

// TopDebtors returns the largest outstanding credit balances.
func (s *Service) TopDebtors(ctx context.Context, limit int) ([]*Debtor, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.TopDebtors(ctx, limit)
}

// ExportClosings renders the closings in a date range as an XLSX
// workbook for the owner's accountant.
func (s *Service) ExportClosings(ctx context.Context, from, to *time.Time) ([]byte, error) {
	closings, err := s.closings.List(ctx, from, to, 1000, 0)
	if err != nil {
		return nil, fmt.Errorf("list closings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Closings"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{
		"Date", "Number", "Expected Cash", "Actual Cash", "Cash Variance",
		"Expected Transfers", "Actual Transfers", "Transfer Variance",
		"Total Sales", "Total Expenses", "Debt Collected", "Credit Given",
		"Status", "Closed By",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, c := range closings {
		values := []any{
			c.ClosingDate.Format("2006-01-02"),
			c.Number,
			moneyCell(c.ExpectedCash),
			moneyCell(c.ActualCash),
			moneyCell(c.CashVariance),
			moneyCell(c.ExpectedTransfers),
			moneyCell(c.ActualTransfers),
			moneyCell(c.TransferVariance),
			moneyCell(c.TotalSales),
			moneyCell(c.TotalExpenses),
			moneyCell(c.DebtCollected),
			moneyCell(c.CreditGiven),
			string(c.Status),
			c.ClosedBy,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func moneyCell(m types.Money) float64 {
	v, _ := m.Float64()
	return v
}
