package closing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/pkg/numerator"
)

type fakeRepo struct {
	byDate map[string]*CashClosing
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byDate: make(map[string]*CashClosing)}
}

func dateKey(day time.Time) string { return day.Format("2006-01-02") }

func (r *fakeRepo) Create(ctx context.Context, c *CashClosing) error {
	key := dateKey(c.ClosingDate)
	if _, ok := r.byDate[key]; ok {
		// Mirrors the unique constraint on closing_date.
		return apperror.NewDuplicate("cash closing", "closing_date", key)
	}
	cp := *c
	r.byDate[key] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, closingID id.ID) (*CashClosing, error) {
	for _, c := range r.byDate {
		if c.ID == closingID {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("cash closing", closingID.String())
}

func (r *fakeRepo) GetByDate(ctx context.Context, day time.Time) (*CashClosing, error) {
	if c, ok := r.byDate[dateKey(day)]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFound("cash closing", dateKey(day))
}

func (r *fakeRepo) ExistsForDate(ctx context.Context, day time.Time) (bool, error) {
	_, ok := r.byDate[dateKey(day)]
	return ok, nil
}

func (r *fakeRepo) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*CashClosing, error) {
	var out []*CashClosing
	for _, c := range r.byDate {
		out = append(out, c)
	}
	return out, nil
}

type fakeAggregator struct{ totals DayTotals }

func (f *fakeAggregator) TotalsForDay(ctx context.Context, day time.Time) (DayTotals, error) {
	return f.totals, nil
}

type fakeNumbers struct{ n int64 }

func (f *fakeNumbers) NextNumber(ctx context.Context, cfg numerator.Config, at time.Time) (string, error) {
	f.n++
	return numerator.FormatNumber(cfg, at.Year(), f.n), nil
}

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// A busy day: cash sales 1000, transfer sales 500, credit sales 300,
// cash expenses 200, transfer expenses 50, cash debt payments 80.
func busyDay() DayTotals {
	return DayTotals{
		CashSales:        types.MustMoney("1000"),
		TransferSales:    types.MustMoney("500"),
		CreditSales:      types.MustMoney("300"),
		CashExpenses:     types.MustMoney("200"),
		TransferExpenses: types.MustMoney("50"),
		CashPayments:     types.MustMoney("80"),
	}
}

func newService(totals DayTotals, tolerance string) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAggregator{totals}, &fakeNumbers{}, noopTxManager{}, types.MustMoney(tolerance))
	return svc, repo
}

func testCtx() context.Context {
	return appctx.WithActor(context.Background(), &appctx.Actor{
		ID:     "user-1",
		Name:   "owner@example.com",
		Source: appctx.SourceSession,
	})
}

var testDate = time.Date(2026, 8, 28, 22, 30, 0, 0, time.UTC)

func TestCreate_ExpectedPositions(t *testing.T) {
	svc, _ := newService(busyDay(), "1")

	got, err := svc.Create(testCtx(), &CreateRequest{
		ClosingDate:     testDate,
		ActualCash:      types.MustMoney("880"),
		ActualTransfers: types.MustMoney("450"),
	})
	require.NoError(t, err)

	// expectedCash = 1000 + 80 - 200, expectedTransfers = 500 + 0 - 50.
	assert.True(t, got.ExpectedCash.Equal(types.MustMoney("880")), "expectedCash = %s", got.ExpectedCash)
	assert.True(t, got.ExpectedTransfers.Equal(types.MustMoney("450")), "expectedTransfers = %s", got.ExpectedTransfers)

	// Credit sales are a liability, never income.
	assert.True(t, got.TotalSales.Equal(types.MustMoney("1500")))
	assert.True(t, got.CreditGiven.Equal(types.MustMoney("300")))
	assert.True(t, got.DebtCollected.Equal(types.MustMoney("80")))
	assert.True(t, got.TotalExpenses.Equal(types.MustMoney("250")))

	assert.True(t, got.CashVariance.IsZero())
	assert.True(t, got.TransferVariance.IsZero())
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "CC-2026-000001", got.Number)
	assert.Equal(t, "user-1", got.ClosedBy)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), got.ClosingDate)
}

func TestCreate_DiscrepancyOverTolerance(t *testing.T) {
	svc, _ := newService(busyDay(), "1")

	got, err := svc.Create(testCtx(), &CreateRequest{
		ClosingDate:     testDate,
		ActualCash:      types.MustMoney("900"),
		ActualTransfers: types.MustMoney("450"),
	})
	require.NoError(t, err)

	assert.True(t, got.CashVariance.Equal(types.MustMoney("20")), "cashVariance = %s", got.CashVariance)
	assert.Equal(t, StatusDiscrepancy, got.Status)
}

func TestCreate_ToleranceEdges(t *testing.T) {
	tests := []struct {
		name       string
		tolerance  string
		actualCash string
		want       Status
	}{
		{"variance exactly at tolerance", "1", "881", StatusCompleted},
		{"variance just over tolerance", "1", "881.01", StatusDiscrepancy},
		{"short by tolerance", "1", "879", StatusCompleted},
		{"zero tolerance flags any variance", "0", "880.01", StatusDiscrepancy},
		{"zero tolerance exact match", "0", "880", StatusCompleted},
		{"wider configured tolerance", "5", "884.50", StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(busyDay(), tt.tolerance)
			got, err := svc.Create(testCtx(), &CreateRequest{
				ClosingDate:     testDate,
				ActualCash:      types.MustMoney(tt.actualCash),
				ActualTransfers: types.MustMoney("450"),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestCreate_DuplicateDateRejected(t *testing.T) {
	svc, repo := newService(busyDay(), "1")

	first, err := svc.Create(testCtx(), &CreateRequest{
		ClosingDate:     testDate,
		ActualCash:      types.MustMoney("880"),
		ActualTransfers: types.MustMoney("450"),
	})
	require.NoError(t, err)

	_, err = svc.Create(testCtx(), &CreateRequest{
		ClosingDate:     testDate.Add(2 * time.Hour),
		ActualCash:      types.MustMoney("0"),
		ActualTransfers: types.MustMoney("0"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	// Original record untouched.
	stored, err := repo.GetByDate(context.Background(), Day(testDate))
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.True(t, stored.ActualCash.Equal(types.MustMoney("880")))
}

func TestCreate_UniqueConstraintDecidesRace(t *testing.T) {
	// Bypass the fast-path existence check by seeding the repo after
	// constructing the service but racing Create directly: the repo's
	// duplicate error must surface as a conflict even when ExistsForDate
	// said no.
	repo := newFakeRepo()
	agg := &fakeAggregator{busyDay()}
	svc := NewService(&racingRepo{fakeRepo: repo}, agg, &fakeNumbers{}, noopTxManager{}, types.MustMoney("1"))

	_, err := svc.Create(testCtx(), &CreateRequest{
		ClosingDate:     testDate,
		ActualCash:      types.MustMoney("880"),
		ActualTransfers: types.MustMoney("450"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

// racingRepo reports no closing on the fast path but fails the insert,
// as happens when a concurrent request commits in between.
type racingRepo struct {
	*fakeRepo
}

func (r *racingRepo) ExistsForDate(ctx context.Context, day time.Time) (bool, error) {
	return false, nil
}

func (r *racingRepo) Create(ctx context.Context, c *CashClosing) error {
	return apperror.NewDuplicate("cash closing", "closing_date", dateKey(c.ClosingDate))
}

func TestCreate_RequiresActor(t *testing.T) {
	svc, _ := newService(busyDay(), "1")

	_, err := svc.Create(context.Background(), &CreateRequest{
		ClosingDate:     testDate,
		ActualCash:      types.MustMoney("880"),
		ActualTransfers: types.MustMoney("450"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestCreate_NegativeActualRejected(t *testing.T) {
	svc, _ := newService(busyDay(), "1")

	_, err := svc.Create(testCtx(), &CreateRequest{
		ClosingDate:     testDate,
		ActualCash:      types.MustMoney("-1"),
		ActualTransfers: types.MustMoney("0"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	svc, repo := newService(busyDay(), "1")

	got, err := svc.Preview(testCtx(), testDate)
	require.NoError(t, err)

	assert.True(t, got.ExpectedCash.Equal(types.MustMoney("880")))
	assert.True(t, got.ExpectedTransfers.Equal(types.MustMoney("450")))
	assert.Empty(t, repo.byDate)
}

func TestDayTotals_ExpensesOnlyDayGoesNegative(t *testing.T) {
	totals := DayTotals{CashExpenses: types.MustMoney("120")}
	svc, _ := newService(totals, "1")

	got, err := svc.Create(testCtx(), &CreateRequest{
		ClosingDate:     testDate,
		ActualCash:      types.MustMoney("0"),
		ActualTransfers: types.MustMoney("0"),
	})
	require.NoError(t, err)

	// Expected position can be negative when nothing came in.
	assert.True(t, got.ExpectedCash.Equal(types.MustMoney("-120")))
	assert.True(t, got.CashVariance.Equal(types.MustMoney("120")))
	assert.Equal(t, StatusDiscrepancy, got.Status)
}
