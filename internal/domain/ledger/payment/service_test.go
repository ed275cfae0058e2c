package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/domain/registers/debt"
)

type memStore struct {
	customers map[id.ID]*customer.Customer
	payments  []*Payment
}

func newMemStore() *memStore {
	return &memStore{customers: make(map[id.ID]*customer.Customer)}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.customers {
		cp := *v
		c.customers[k] = &cp
	}
	c.payments = append(c.payments, s.payments...)
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.customers = snap.customers
	s.payments = snap.payments
}

type fakeTxManager struct{ store *memStore }

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.clone()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeCustomers struct{ store *memStore }

func (f *fakeCustomers) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	c, ok := f.store.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomers) FindByName(ctx context.Context, name string) (*customer.Customer, error) {
	for _, c := range f.store.customers {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("customer", name)
}

type fakePaymentRepo struct{ store *memStore }

func (r *fakePaymentRepo) Create(ctx context.Context, p *Payment) error {
	cp := *p
	r.store.payments = append(r.store.payments, &cp)
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	for _, p := range r.store.payments {
		if p.ID == paymentID {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("payment", paymentID.String())
}

func (r *fakePaymentRepo) ListByCustomer(ctx context.Context, customerID id.ID, limit int) ([]*Payment, error) {
	var out []*Payment
	for _, p := range r.store.payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*Payment, error) {
	return r.store.payments, nil
}

type fakeDebtRepo struct {
	store *memStore

	// forceSettleFailure emulates a concurrent payment draining the
	// debt between the service's read and the conditional update.
	forceSettleFailure bool
}

func (r *fakeDebtRepo) Accrue(ctx context.Context, customerID id.ID, amount types.Money) (bool, error) {
	c, ok := r.store.customers[customerID]
	if !ok {
		return false, nil
	}
	c.CurrentDebt = c.CurrentDebt.Add(amount)
	return true, nil
}

func (r *fakeDebtRepo) Settle(ctx context.Context, customerID id.ID, amount types.Money) (bool, error) {
	if r.forceSettleFailure {
		return false, nil
	}
	c, ok := r.store.customers[customerID]
	if !ok || c.CurrentDebt.LessThan(amount) {
		return false, nil
	}
	c.CurrentDebt = c.CurrentDebt.Sub(amount)
	return true, nil
}

func (r *fakeDebtRepo) CurrentDebt(ctx context.Context, customerID id.ID) (types.Money, error) {
	c, ok := r.store.customers[customerID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("customer", customerID.String())
	}
	return c.CurrentDebt, nil
}

type fixture struct {
	store    *memStore
	debtRepo *fakeDebtRepo
	service  *Service
}

func newFixture() *fixture {
	store := newMemStore()
	debtRepo := &fakeDebtRepo{store: store}
	svc := NewService(
		&fakePaymentRepo{store},
		&fakeCustomers{store},
		debt.NewService(debtRepo),
		&fakeTxManager{store},
	)
	return &fixture{store: store, debtRepo: debtRepo, service: svc}
}

func (f *fixture) addCustomer(name, currentDebt string) *customer.Customer {
	c := customer.New(name)
	c.CurrentDebt = types.MustMoney(currentDebt)
	f.store.customers[c.ID] = c
	return c
}

func testCtx() context.Context {
	return appctx.WithActor(context.Background(), &appctx.Actor{
		ID:     "user-1",
		Source: appctx.SourceSession,
	})
}

func TestCreate_ValidationOrder(t *testing.T) {
	f := newFixture()

	// Bad amount fails before the customer lookup, so an unknown
	// customer id still yields a validation error here.
	_, err := f.service.Create(testCtx(), &CreateRequest{
		CustomerID: id.New(),
		Amount:     types.Zero(),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = f.service.Create(testCtx(), &CreateRequest{
		CustomerID: id.New(),
		Amount:     types.MustMoney("10.00"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_OverpaymentRejected(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("Maria", "200.00")

	_, err := f.service.Create(testCtx(), &CreateRequest{
		CustomerID: c.ID,
		Amount:     types.MustMoney("200.01"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsOverpayment(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "200.01", appErr.Details["attempted"])
	assert.Equal(t, "200.00", appErr.Details["current_debt"])
	assert.Contains(t, appErr.Message, "200.01")
	assert.Contains(t, appErr.Message, "200.00")

	assert.True(t, f.store.customers[c.ID].CurrentDebt.Equal(types.MustMoney("200.00")))
	assert.Empty(t, f.store.payments)
}

func TestCreate_ExactPayoff(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("Maria", "200.00")

	got, err := f.service.Create(testCtx(), &CreateRequest{
		CustomerID: c.ID,
		Amount:     types.MustMoney("200.00"),
		Method:     MethodTransfer,
	})
	require.NoError(t, err)

	assert.True(t, got.Amount.Equal(types.MustMoney("200.00")))
	assert.Equal(t, MethodTransfer, got.Method)
	assert.Equal(t, "user-1", got.CreatedBy)
	assert.True(t, f.store.customers[c.ID].CurrentDebt.IsZero())
	assert.Len(t, f.store.payments, 1)
}

func TestCreate_PartialPayment(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("Jose", "150.00")

	_, err := f.service.Create(testCtx(), &CreateRequest{
		CustomerID: c.ID,
		Amount:     types.MustMoney("50.00"),
	})
	require.NoError(t, err)

	assert.True(t, f.store.customers[c.ID].CurrentDebt.Equal(types.MustMoney("100.00")))
}

func TestCreate_ConcurrentDrainRollsBack(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("Ana", "80.00")

	// The read passes but the conditional update fails, as it would if
	// another payment landed first. The inserted payment row must not
	// survive.
	f.debtRepo.forceSettleFailure = true

	_, err := f.service.Create(testCtx(), &CreateRequest{
		CustomerID: c.ID,
		Amount:     types.MustMoney("80.00"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsOverpayment(err))

	assert.Empty(t, f.store.payments)
	assert.True(t, f.store.customers[c.ID].CurrentDebt.Equal(types.MustMoney("80.00")))
}

func TestCreateByCustomerName(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("Pedro Gomez", "30.00")

	got, err := f.service.CreateByCustomerName(testCtx(), &CreateRequest{
		Amount: types.MustMoney("30.00"),
	}, "pedro")
	require.NoError(t, err)

	assert.Equal(t, c.ID, got.CustomerID)
	assert.Equal(t, EntryAPI, got.EntryMethod)
	assert.True(t, f.store.customers[c.ID].CurrentDebt.IsZero())
}
