package debt

import (
	"context"
	"testing"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

type memRepo struct {
	debts map[id.ID]types.Money
}

func newMemRepo() *memRepo {
	return &memRepo{debts: make(map[id.ID]types.Money)}
}

func (r *memRepo) Accrue(ctx context.Context, customerID id.ID, amount types.Money) (bool, error) {
	d, ok := r.debts[customerID]
	if !ok {
		return false, nil
	}
	r.debts[customerID] = d.Add(amount)
	return true, nil
}

func (r *memRepo) Settle(ctx context.Context, customerID id.ID, amount types.Money) (bool, error) {
	d, ok := r.debts[customerID]
	if !ok || d.LessThan(amount) {
		return false, nil
	}
	r.debts[customerID] = d.Sub(amount)
	return true, nil
}

func (r *memRepo) CurrentDebt(ctx context.Context, customerID id.ID) (types.Money, error) {
	d, ok := r.debts[customerID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("customer", customerID.String())
	}
	return d, nil
}

func TestAccrueAndSettle(t *testing.T) {
	repo := newMemRepo()
	cid := id.New()
	repo.debts[cid] = types.MustMoney("150.00")

	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Accrue(ctx, cid, types.MustMoney("50.00")); err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if !repo.debts[cid].Equal(types.MustMoney("200.00")) {
		t.Errorf("debt = %s, want 200.00", repo.debts[cid])
	}

	if err := svc.Settle(ctx, cid, types.MustMoney("200.00")); err != nil {
		t.Fatalf("settle to zero: %v", err)
	}
	if !repo.debts[cid].IsZero() {
		t.Errorf("debt = %s, want 0", repo.debts[cid])
	}
}

func TestSettle_OverpaymentReportsBothFigures(t *testing.T) {
	repo := newMemRepo()
	cid := id.New()
	repo.debts[cid] = types.MustMoney("200.00")

	svc := NewService(repo)
	err := svc.Settle(context.Background(), cid, types.MustMoney("200.01"))
	if !apperror.IsOverpayment(err) {
		t.Fatalf("got %v, want overpayment", err)
	}

	appErr, _ := apperror.AsAppError(err)
	if appErr.Details["attempted"] != "200.01" || appErr.Details["current_debt"] != "200.00" {
		t.Errorf("details = %v", appErr.Details)
	}
	if !repo.debts[cid].Equal(types.MustMoney("200.00")) {
		t.Errorf("debt changed on rejected settle")
	}
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	repo := newMemRepo()
	cid := id.New()
	repo.debts[cid] = types.MustMoney("10.00")

	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Accrue(ctx, cid, types.Zero()); err == nil {
		t.Error("zero accrual accepted")
	}
	if err := svc.Settle(ctx, cid, types.MustMoney("-5")); err == nil {
		t.Error("negative settlement accepted")
	}
}

func TestAccrue_UnknownCustomer(t *testing.T) {
	svc := NewService(newMemRepo())
	err := svc.Accrue(context.Background(), id.New(), types.MustMoney("10"))
	if !apperror.IsNotFound(err) {
		t.Fatalf("got %v, want not found", err)
	}
}
