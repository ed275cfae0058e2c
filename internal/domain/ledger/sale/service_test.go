package sale

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/appctx"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/audit"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/registers/debt"
	"almacen/internal/domain/registers/stock"
	"almacen/pkg/numerator"
)

// memStore holds all mutable state the coordinator touches, so a fake
// transaction manager can snapshot and restore it to emulate rollback.
type memStore struct {
	products  map[id.ID]*product.Product
	customers map[id.ID]*customer.Customer
	sales     map[id.ID]*Sale
	items     []*Item
	movements []*stock.Movement
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[id.ID]*product.Product),
		customers: make(map[id.ID]*customer.Customer),
		sales:     make(map[id.ID]*Sale),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.customers {
		cp := *v
		c.customers[k] = &cp
	}
	for k, v := range s.sales {
		cp := *v
		c.sales[k] = &cp
	}
	c.items = append(c.items, s.items...)
	c.movements = append(c.movements, s.movements...)
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.customers = snap.customers
	s.sales = snap.sales
	s.items = snap.items
	s.movements = snap.movements
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

type fakeProducts struct{ store *memStore }

func (f *fakeProducts) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.store.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
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
		cp := *c
		return &cp, nil
	}
	return nil, apperror.NewNotFound("customer", name)
}

type fakeSaleRepo struct{ store *memStore }

func (r *fakeSaleRepo) Create(ctx context.Context, s *Sale) error {
	cp := *s
	r.store.sales[s.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) InsertItems(ctx context.Context, items []*Item) error {
	r.store.items = append(r.store.items, items...)
	return nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	s, ok := r.store.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return s, nil
}

func (r *fakeSaleRepo) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	var out []*Sale
	for _, s := range r.store.sales {
		out = append(out, s)
	}
	return out, nil
}

type fakeStockRepo struct{ store *memStore }

func (r *fakeStockRepo) ApplyOutflow(ctx context.Context, productID id.ID, qty types.Quantity) (bool, error) {
	p, ok := r.store.products[productID]
	if !ok {
		return false, apperror.NewNotFound("product", productID.String())
	}
	if p.CurrentStock.LessThan(qty) {
		return false, nil
	}
	p.CurrentStock = p.CurrentStock.Sub(qty)
	return true, nil
}

func (r *fakeStockRepo) SetLevel(ctx context.Context, productID id.ID, level types.Quantity) (types.Quantity, error) {
	p, ok := r.store.products[productID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("product", productID.String())
	}
	prev := p.CurrentStock
	p.CurrentStock = level
	return prev, nil
}

func (r *fakeStockRepo) AppendMovement(ctx context.Context, m *stock.Movement) error {
	cp := *m
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

func (r *fakeStockRepo) Available(ctx context.Context, productID id.ID) (string, types.Quantity, error) {
	p, ok := r.store.products[productID]
	if !ok {
		return "", types.Zero(), apperror.NewNotFound("product", productID.String())
	}
	return p.Name, p.CurrentStock, nil
}

func (r *fakeStockRepo) ListMovements(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]*stock.Movement, error) {
	var out []*stock.Movement
	for _, m := range r.store.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeDebtRepo struct{ store *memStore }

func (r *fakeDebtRepo) Accrue(ctx context.Context, customerID id.ID, amount types.Money) (bool, error) {
	c, ok := r.store.customers[customerID]
	if !ok {
		return false, nil
	}
	c.CurrentDebt = c.CurrentDebt.Add(amount)
	return true, nil
}

func (r *fakeDebtRepo) Settle(ctx context.Context, customerID id.ID, amount types.Money) (bool, error) {
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

type fakeNumbers struct{ n int64 }

func (f *fakeNumbers) NextNumber(ctx context.Context, cfg numerator.Config, at time.Time) (string, error) {
	f.n++
	return numerator.FormatNumber(cfg, at.Year(), f.n), nil
}

type failingAuditor struct{}

func (failingAuditor) Record(ctx context.Context, entry audit.Entry) error {
	return errors.New("audit store unavailable")
}

type fixture struct {
	store   *memStore
	service *Service
}

func newFixture() *fixture {
	store := newMemStore()
	svc := NewService(
		&fakeSaleRepo{store},
		&fakeProducts{store},
		&fakeCustomers{store},
		stock.NewService(&fakeStockRepo{store}),
		debt.NewService(&fakeDebtRepo{store}),
		&fakeNumbers{},
		&fakeTxManager{store},
	)
	return &fixture{store: store, service: svc}
}

func (f *fixture) addProduct(name, price, stockLevel string) *product.Product {
	p := product.New(name, types.MustMoney(price))
	p.CurrentStock = types.MustMoney(stockLevel)
	f.store.products[p.ID] = p
	return p
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
		Name:   "owner@example.com",
		Source: appctx.SourceSession,
	})
}

func TestCreate_TotalsStockAndMovement(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Rice 1kg", "100.00", "10")

	got, err := f.service.Create(testCtx(), &CreateRequest{
		SaleDate:      time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC),
		PaymentMethod: MethodCash,
		Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("3")}},
	})
	require.NoError(t, err)

	assert.True(t, got.TotalAmount.Equal(types.MustMoney("300.00")), "total = %s", got.TotalAmount)
	assert.True(t, got.IsPaid)
	assert.Equal(t, "V-2026-000001", got.Number)
	assert.Equal(t, "user-1", got.CreatedBy)

	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(types.MustMoney("100.00")))
	assert.True(t, got.Items[0].TotalPrice.Equal(types.MustMoney("300.00")))

	assert.True(t, f.store.products[p.ID].CurrentStock.Equal(types.MustMoney("7")))

	require.Len(t, f.store.movements, 1)
	m := f.store.movements[0]
	assert.Equal(t, stock.MovementSale, m.Type)
	assert.True(t, m.Quantity.Equal(types.MustMoney("-3")))
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, got.ID, *m.ReferenceID)

	// Second sale overshoots the remaining 7 units and must leave the
	// prior state untouched.
	_, err = f.service.Create(testCtx(), &CreateRequest{
		PaymentMethod: MethodCash,
		Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("8")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "8", appErr.Details["requested"])
	assert.Equal(t, "7", appErr.Details["available"])

	assert.True(t, f.store.products[p.ID].CurrentStock.Equal(types.MustMoney("7")))
	assert.Len(t, f.store.sales, 1)
	assert.Len(t, f.store.movements, 1)
}

func TestCreate_FractionalQuantity(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Cheese", "8.40", "5.000")

	got, err := f.service.Create(testCtx(), &CreateRequest{
		PaymentMethod: MethodCash,
		Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("0.75")}},
	})
	require.NoError(t, err)

	assert.True(t, got.TotalAmount.Equal(types.MustMoney("6.30")), "total = %s", got.TotalAmount)
	assert.True(t, f.store.products[p.ID].CurrentStock.Equal(types.MustMoney("4.25")))
}

func TestCreate_CreditAccruesDebt(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Milk", "50.00", "10")
	c := f.addCustomer("Maria", "150.00")

	got, err := f.service.Create(testCtx(), &CreateRequest{
		CustomerID:    &c.ID,
		PaymentMethod: MethodCredit,
		Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
	})
	require.NoError(t, err)

	assert.False(t, got.IsPaid)
	assert.True(t, f.store.customers[c.ID].CurrentDebt.Equal(types.MustMoney("200.00")),
		"debt = %s", f.store.customers[c.ID].CurrentDebt)
}

func TestCreate_CustomerOnCashSale_DebtUnchanged(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Bread", "10.00", "10")
	c := f.addCustomer("Jose", "40.00")

	got, err := f.service.Create(testCtx(), &CreateRequest{
		CustomerID:    &c.ID,
		PaymentMethod: MethodCash,
		Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("2")}},
	})
	require.NoError(t, err)

	require.NotNil(t, got.CustomerID)
	assert.Equal(t, c.ID, *got.CustomerID)
	assert.True(t, f.store.customers[c.ID].CurrentDebt.Equal(types.MustMoney("40.00")))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Soap", "3.00", "10")

	tests := []struct {
		name string
		req  *CreateRequest
	}{
		{
			name: "empty items",
			req:  &CreateRequest{PaymentMethod: MethodCash},
		},
		{
			name: "credit without customer",
			req: &CreateRequest{
				PaymentMethod: MethodCredit,
				Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
			},
		},
		{
			name: "zero quantity",
			req: &CreateRequest{
				PaymentMethod: MethodCash,
				Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.Zero()}},
			},
		},
		{
			name: "unknown method",
			req: &CreateRequest{
				PaymentMethod: "barter",
				Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(testCtx(), tt.req)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Empty(t, f.store.sales)
		})
	}
}

func TestCreate_UnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(testCtx(), &CreateRequest{
		PaymentMethod: MethodCash,
		Items:         []ItemRequest{{ProductID: id.New(), Quantity: types.MustMoney("1")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_RollbackLeavesNoPartialState(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Oil", "25.00", "10")
	c := f.addCustomer("Ana", "0")

	// The audit write is the last step inside the transaction; failing
	// it must undo the sale, the items, the stock and the debt.
	f.service.WithAudit(failingAuditor{})

	_, err := f.service.Create(testCtx(), &CreateRequest{
		CustomerID:    &c.ID,
		PaymentMethod: MethodCredit,
		Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("4")}},
	})
	require.Error(t, err)

	assert.Empty(t, f.store.sales)
	assert.Empty(t, f.store.items)
	assert.Empty(t, f.store.movements)
	assert.True(t, f.store.products[p.ID].CurrentStock.Equal(types.MustMoney("10")))
	assert.True(t, f.store.customers[c.ID].CurrentDebt.IsZero())
}

func TestCreateByCustomerName_MarksAPIEntry(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Sugar", "12.00", "10")
	c := f.addCustomer("Pedro Gomez", "0")

	got, err := f.service.CreateByCustomerName(testCtx(), &CreateRequest{
		PaymentMethod: MethodCredit,
		Items:         []ItemRequest{{ProductID: p.ID, Quantity: types.MustMoney("1")}},
	}, "pedro")
	require.NoError(t, err)

	assert.Equal(t, EntryAPI, got.EntryMethod)
	require.NotNil(t, got.CustomerID)
	assert.Equal(t, c.ID, *got.CustomerID)
	assert.True(t, f.store.customers[c.ID].CurrentDebt.Equal(types.MustMoney("12.00")))
}
