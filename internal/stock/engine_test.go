package stock

import (
	"context"
	"testing"
	"time"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	products map[int]*models.Product
	nextID   int
	locks    []string
}

func newMemStore(seed ...models.Product) *memStore {
	s := &memStore{products: make(map[int]*models.Product), nextID: 1}
	for _, p := range seed {
		p := p
		if p.ID == 0 {
			p.ID = s.nextID
		}
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
		s.products[p.ID] = &p
	}
	return s
}

func (s *memStore) LockProductByName(_ context.Context, name string) (*models.Product, error) {
	s.locks = append(s.locks, name)
	for _, p := range s.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound("Product")
}

func (s *memStore) LockProduct(_ context.Context, id int) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("Product", id)
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) InsertProduct(_ context.Context, p *models.Product) error {
	p.ID = s.nextID
	s.nextID++
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *memStore) UpdateProductStock(_ context.Context, p *models.Product) error {
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (s *memStore) stockOf(name string) decimal.Decimal {
	for _, p := range s.products {
		if p.Name == name {
			return p.CurrentStock
		}
	}
	return decimal.Zero
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var day = Placement{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), StorageID: 3}

func TestApplyIncomingCreatesProduct(t *testing.T) {
	store := newMemStore()
	e := NewEngine(store, PolicyPreserve)

	p, err := e.ApplyIncoming(context.Background(), IncomingLine{Name: "Rice", Quantity: dec("12.5"), UnitOfMeasure: "kg", UnitPrice: dec("3.10")}, day)
	require.NoError(t, err)

	assert.True(t, dec("12.5").Equal(p.CurrentStock))
	assert.Equal(t, 3, p.StorageID)
	assert.Equal(t, day.Date, p.Date)
	assert.True(t, dec("12.5").Equal(store.stockOf("Rice")))

	changes := e.Changes()
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Created)
}

func TestApplyIncomingAddsAndRestamps(t *testing.T) {
	store := newMemStore(models.Product{ID: 7, Name: "Rice", CurrentStock: dec("5"), StorageID: 1})
	e := NewEngine(store, PolicyPreserve)

	p, err := e.ApplyIncoming(context.Background(), IncomingLine{Name: "Rice", Quantity: dec("2.25")}, day)
	require.NoError(t, err)

	assert.True(t, dec("7.25").Equal(p.CurrentStock))
	assert.Equal(t, 3, store.products[7].StorageID)
	assert.Equal(t, day.Date, store.products[7].Date)
}

func TestApplyOutgoing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(models.Product{ID: 1, Name: "Salt", CurrentStock: dec("10")})
	e := NewEngine(store, PolicyPreserve)

	_, err := e.ApplyOutgoing(ctx, "Salt", dec("4"))
	require.NoError(t, err)
	assert.True(t, dec("6").Equal(store.stockOf("Salt")))

	_, err = e.ApplyOutgoing(ctx, "Salt", dec("6.001"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientStock))
	assert.EqualError(t, err, "INSUFFICIENT_STOCK: Not enough stock for product Salt. Available: 6, Requested: 6.001")

	_, err = e.ApplyOutgoing(ctx, "Pepper", dec("1"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnknownProduct))
	assert.Contains(t, err.Error(), "Product with name 'Pepper' not found")
}

func TestReverseThenReapplySeesReversal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(models.Product{ID: 1, Name: "Salt", CurrentStock: dec("2")})
	e := NewEngine(store, PolicyPreserve)

	_, err := e.ReverseOutgoing(ctx, 1, dec("5"))
	require.NoError(t, err)
	assert.True(t, dec("7").Equal(store.stockOf("Salt")))

	_, err = e.ApplyOutgoing(ctx, "Salt", dec("7"))
	require.NoError(t, err)
	assert.True(t, store.stockOf("Salt").IsZero())

	changes := e.Changes()
	require.Len(t, changes, 1)
	assert.True(t, dec("-2").Equal(changes[0].Delta))
}

func TestReconcileIncomingPreserve(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(
		models.Product{ID: 1, Name: "A", CurrentStock: dec("10")},
		models.Product{ID: 2, Name: "B", CurrentStock: dec("4")},
	)
	e := NewEngine(store, PolicyPreserve)

	old := []IncomingLine{{Name: "A", Quantity: dec("10")}, {Name: "B", Quantity: dec("4")}}
	next := []IncomingLine{{Name: "A", Quantity: dec("1")}, {Name: "C", Quantity: dec("3")}}
	require.NoError(t, e.ReconcileIncoming(ctx, old, next, day))

	assert.True(t, dec("10").Equal(store.stockOf("A")), "kept name is not adjusted")
	assert.True(t, dec("4").Equal(store.stockOf("B")), "removed name is not reversed")
	assert.True(t, dec("3").Equal(store.stockOf("C")))

	require.NoError(t, e.WithdrawIncoming(ctx, next))
	assert.True(t, dec("3").Equal(store.stockOf("C")))
}

func TestReconcileIncomingDeltas(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(
		models.Product{ID: 1, Name: "A", CurrentStock: dec("10")},
		models.Product{ID: 2, Name: "B", CurrentStock: dec("4")},
	)
	e := NewEngine(store, PolicyReconcile)

	old := []IncomingLine{{Name: "A", Quantity: dec("10")}, {Name: "B", Quantity: dec("4")}}
	next := []IncomingLine{{Name: "A", Quantity: dec("6")}, {Name: "A", Quantity: dec("1")}, {Name: "C", Quantity: dec("3")}}
	require.NoError(t, e.ReconcileIncoming(ctx, old, next, day))

	assert.True(t, dec("7").Equal(store.stockOf("A")))
	assert.True(t, store.stockOf("B").IsZero())
	assert.True(t, dec("3").Equal(store.stockOf("C")))
}

func TestReconcileIncomingRejectsNegative(t *testing.T) {
	ctx := context.Background()
	// 8 of the 10 received were already shipped
	store := newMemStore(models.Product{ID: 1, Name: "A", CurrentStock: dec("2")})
	e := NewEngine(store, PolicyReconcile)

	err := e.ReconcileIncoming(ctx, []IncomingLine{{Name: "A", Quantity: dec("10")}}, []IncomingLine{{Name: "A", Quantity: dec("5")}}, day)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientStock))

	err = e.WithdrawIncoming(ctx, []IncomingLine{{Name: "A", Quantity: dec("10")}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientStock))
}

func TestPrelockSortsAndSkipsUnknown(t *testing.T) {
	store := newMemStore(models.Product{ID: 1, Name: "b"}, models.Product{ID: 2, Name: "a"})
	e := NewEngine(store, PolicyPreserve)

	require.NoError(t, e.Prelock(context.Background(), []string{"b", "zzz", "a", "b"}))
	assert.Equal(t, []string{"a", "b", "zzz"}, store.locks)

	// cached rows are not locked twice
	_, err := e.ApplyOutgoing(context.Background(), "a", decimal.Zero)
	require.NoError(t, err)
	assert.Len(t, store.locks, 3)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyPreserve, p)

	p, err = ParsePolicy(" Reconcile ")
	require.NoError(t, err)
	assert.Equal(t, PolicyReconcile, p)

	_, err = ParsePolicy("strict")
	assert.Error(t, err)
}
