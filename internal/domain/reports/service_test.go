package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/ledger/closing"
)

type fakeRepo struct {
	totals     closing.DayTotals
	salesCount int
	apiCount   int
	low        []*product.Product
}

func (f *fakeRepo) TotalsForDay(ctx context.Context, day time.Time) (closing.DayTotals, error) {
	return f.totals, nil
}

func (f *fakeRepo) SalesCounts(ctx context.Context, day time.Time) (int, int, error) {
	return f.salesCount, f.apiCount, nil
}

func (f *fakeRepo) SalesByDay(ctx context.Context, from, to time.Time) ([]*SalesByDay, error) {
	return nil, nil
}

func (f *fakeRepo) LowStock(ctx context.Context) ([]*product.Product, error) {
	return f.low, nil
}

func (f *fakeRepo) TopDebtors(ctx context.Context, limit int) ([]*Debtor, error) {
	return nil, nil
}

type fakeClosings struct{ list []*closing.CashClosing }

func (f *fakeClosings) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*closing.CashClosing, error) {
	return f.list, nil
}

type memCache struct {
	entries map[string]*DailySummary
	hits    int
}

func (c *memCache) GetDay(ctx context.Context, day time.Time) (*DailySummary, bool, error) {
	s, ok := c.entries[day.Format("2006-01-02")]
	if ok {
		c.hits++
	}
	return s, ok, nil
}

func (c *memCache) SetDay(ctx context.Context, day time.Time, s *DailySummary) error {
	c.entries[day.Format("2006-01-02")] = s
	return nil
}

func lowProduct(name, current, min, max string) *product.Product {
	p := product.New(name, types.MustMoney("10"))
	p.CurrentStock = types.MustMoney(current)
	p.MinStock = types.MustMoney(min)
	p.MaxStock = types.MustMoney(max)
	return p
}

func TestDailySummary_FiguresAndCache(t *testing.T) {
	repo := &fakeRepo{
		totals: closing.DayTotals{
			CashSales:        types.MustMoney("1000"),
			TransferSales:    types.MustMoney("500"),
			CreditSales:      types.MustMoney("300"),
			CashExpenses:     types.MustMoney("200"),
			TransferExpenses: types.MustMoney("50"),
			CashPayments:     types.MustMoney("80"),
		},
		salesCount: 12,
		apiCount:   3,
	}
	cache := &memCache{entries: make(map[string]*DailySummary)}
	svc := NewService(repo, &fakeClosings{}).WithCache(cache)

	day := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	got, err := svc.DailySummary(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-28", got.Date)
	assert.True(t, got.TotalIncome.Equal(types.MustMoney("1500")), "income = %s", got.TotalIncome)
	assert.True(t, got.CreditGiven.Equal(types.MustMoney("300")))
	assert.True(t, got.ExpectedCash.Equal(types.MustMoney("880")))
	assert.True(t, got.ExpectedTransfers.Equal(types.MustMoney("450")))
	assert.Equal(t, 12, got.SalesCount)
	assert.Equal(t, 3, got.APISalesCount)

	_, err = svc.DailySummary(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestPurchaseSuggestions(t *testing.T) {
	withMax := lowProduct("Rice", "2", "5", "20")
	noMax := lowProduct("Beans", "1", "4", "0")
	empty := lowProduct("Oil", "0", "3", "10")

	repo := &fakeRepo{low: []*product.Product{withMax, noMax, empty}}
	svc := NewService(repo, &fakeClosings{})

	got, err := svc.PurchaseSuggestions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Fill to max when a maximum is configured.
	assert.True(t, got[0].SuggestedQuantity.Equal(types.MustMoney("18")))
	assert.Equal(t, PriorityNormal, got[0].Priority)

	// Twice the minimum otherwise.
	assert.True(t, got[1].SuggestedQuantity.Equal(types.MustMoney("8")))

	// Out of stock is urgent.
	assert.Equal(t, PriorityUrgent, got[2].Priority)
	assert.True(t, got[2].SuggestedQuantity.Equal(types.MustMoney("10")))
}

func TestExportClosings(t *testing.T) {
	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	closings := &fakeClosings{list: []*closing.CashClosing{{
		ClosingDate:  day,
		Number:       "CC-2026-000001",
		ExpectedCash: types.MustMoney("880"),
		ActualCash:   types.MustMoney("880"),
		Status:       closing.StatusCompleted,
		ClosedBy:     "user-1",
	}}}
	svc := NewService(&fakeRepo{}, closings)

	data, err := svc.ExportClosings(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
