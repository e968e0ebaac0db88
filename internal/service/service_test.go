package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"dms-service/internal/dms"
	"dms-service/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

type fixture struct {
	svc   *Services
	store *dms.Store
	clock *fakeClock
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)}
	logger := zaptest.NewLogger(t)

	store, err := dms.New(ctx, dms.Options{Clock: clock.Now, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	now := clock.Now()
	require.NoError(t, store.Repos.Products.Create(ctx, models.Product{
		ID: "p1", Name: "Test Flour", Category: "Grocery", Price: 100, Stock: 10, MinStock: 2, Unit: "kg",
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Repos.Customers.Create(ctx, models.Customer{
		ID: "c1", Name: "Ali", Phone: "0300-1234567", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Repos.Distributors.Create(ctx, models.Distributor{
		ID: "d1", Name: "Metro Wholesale", City: "Lahore", CreditLimit: 1000, CreatedAt: now, UpdatedAt: now,
	}))

	return &fixture{svc: New(store, Config{}, logger), store: store, clock: clock}
}

func (f *fixture) login(t *testing.T) {
	_, err := f.svc.Auth.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
}

func (f *fixture) product(t *testing.T, id string) models.Product {
	p, ok := f.store.Repos.Products.FindByID(context.Background(), id)
	require.True(t, ok)
	return p
}
