package stock

import (
	"context"
	"testing"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

type memRepo struct {
	names     map[id.ID]string
	levels    map[id.ID]types.Quantity
	movements []*Movement
}

func newMemRepo() *memRepo {
	return &memRepo{
		names:  make(map[id.ID]string),
		levels: make(map[id.ID]types.Quantity),
	}
}

func (r *memRepo) ApplyOutflow(ctx context.Context, productID id.ID, qty types.Quantity) (bool, error) {
	level, ok := r.levels[productID]
	if !ok {
		return false, apperror.NewNotFound("product", productID.String())
	}
	if level.LessThan(qty) {
		return false, nil
	}
	r.levels[productID] = level.Sub(qty)
	return true, nil
}

func (r *memRepo) SetLevel(ctx context.Context, productID id.ID, level types.Quantity) (types.Quantity, error) {
	prev, ok := r.levels[productID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("product", productID.String())
	}
	r.levels[productID] = level
	return prev, nil
}

func (r *memRepo) AppendMovement(ctx context.Context, m *Movement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *memRepo) Available(ctx context.Context, productID id.ID) (string, types.Quantity, error) {
	level, ok := r.levels[productID]
	if !ok {
		return "", types.Zero(), apperror.NewNotFound("product", productID.String())
	}
	return r.names[productID], level, nil
}

func (r *memRepo) ListMovements(ctx context.Context, productID id.ID, filter MovementFilter) ([]*Movement, error) {
	var out []*Movement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestIssue_FloorAtZero(t *testing.T) {
	repo := newMemRepo()
	pid := id.New()
	repo.names[pid] = "Rice 1kg"
	repo.levels[pid] = types.MustMoney("5")

	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Issue(ctx, pid, types.MustMoney("5"), id.New()); err != nil {
		t.Fatalf("issue to exactly zero: %v", err)
	}
	if !repo.levels[pid].IsZero() {
		t.Errorf("level = %s, want 0", repo.levels[pid])
	}
	if len(repo.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(repo.movements))
	}
	if !repo.movements[0].Quantity.Equal(types.MustMoney("-5")) {
		t.Errorf("movement quantity = %s, want -5", repo.movements[0].Quantity)
	}

	err := svc.Issue(ctx, pid, types.MustMoney("0.001"), id.New())
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("issue below zero: got %v, want insufficient stock", err)
	}
	if len(repo.movements) != 1 {
		t.Errorf("failed issue appended a movement")
	}
}

func TestAdjust_RecordsSignedDelta(t *testing.T) {
	repo := newMemRepo()
	pid := id.New()
	repo.names[pid] = "Beans"
	repo.levels[pid] = types.MustMoney("12")

	svc := NewService(repo)
	ctx := context.Background()

	res, err := svc.Adjust(ctx, pid, types.MustMoney("7.5"), "counted stock")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if !res.PreviousStock.Equal(types.MustMoney("12")) || !res.NewStock.Equal(types.MustMoney("7.5")) {
		t.Errorf("result = %s -> %s, want 12 -> 7.5", res.PreviousStock, res.NewStock)
	}

	if len(repo.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(repo.movements))
	}
	m := repo.movements[0]
	if m.Type != MovementAdjustment {
		t.Errorf("movement type = %s", m.Type)
	}
	if !m.Quantity.Equal(types.MustMoney("-4.5")) {
		t.Errorf("movement quantity = %s, want -4.5", m.Quantity)
	}
	if m.Reason != "counted stock" {
		t.Errorf("reason = %q", m.Reason)
	}
}

func TestAdjust_RejectsNegativeLevel(t *testing.T) {
	repo := newMemRepo()
	pid := id.New()
	repo.levels[pid] = types.MustMoney("3")

	svc := NewService(repo)
	if _, err := svc.Adjust(context.Background(), pid, types.MustMoney("-1"), ""); err == nil {
		t.Fatal("negative level accepted")
	}
	if !repo.levels[pid].Equal(types.MustMoney("3")) {
		t.Errorf("level changed on rejected adjust")
	}
}
