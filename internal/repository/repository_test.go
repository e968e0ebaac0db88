package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"dms-service/internal/cache"
	"dms-service/internal/collection"
	"dms-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingScheduler struct {
	mu    sync.Mutex
	calls int
}

func (c *countingScheduler) SchedulePush() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingScheduler) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestSet(t *testing.T) (*Set, *Dataset, *countingScheduler, *fakeClock) {
	logger := zaptest.NewLogger(t)
	c := cache.New(cache.NewMemoryFacility(), cache.NewMemoryFacility(), logger)
	coll := collection.NewStore(c, logger)
	clock := &fakeClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	data := NewDataset(coll, clock.Now, logger)
	sched := &countingScheduler{}
	return NewSet(data, sched, clock.Now), data, sched, clock
}

func seedCustomer(t *testing.T, s *Set, id string, at time.Time) models.Customer {
	c := models.Customer{ID: id, Name: "Customer " + id, Phone: "0300", CreatedAt: at, UpdatedAt: at}
	require.NoError(t, s.Customers.Create(context.Background(), c))
	return c
}

func TestCreateAppendsAndSchedules(t *testing.T) {
	ctx := context.Background()
	s, _, sched, clock := newTestSet(t)

	seedCustomer(t, s, "c1", clock.Now())
	seedCustomer(t, s, "c2", clock.Now())

	list := s.Customers.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c2", list[1].ID)
	assert.Equal(t, 2, sched.Calls())
}

func TestCreateRejectsDuplicateAndEmptyID(t *testing.T) {
	ctx := context.Background()
	s, _, sched, clock := newTestSet(t)
	seedCustomer(t, s, "c1", clock.Now())

	err := s.Customers.Create(ctx, models.Customer{ID: "c1", Name: "dup"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	err = s.Customers.Create(ctx, models.Customer{Name: "no id"})
	assert.ErrorIs(t, err, ErrInvalidID)

	assert.Equal(t, 1, s.Customers.Count(ctx))
	assert.Equal(t, 1, sched.Calls())
}

func TestUpdateAndDeleteUnknownIDAreNoOps(t *testing.T) {
	ctx := context.Background()
	s, _, sched, clock := newTestSet(t)
	seedCustomer(t, s, "c1", clock.Now())
	before := s.Customers.List(ctx)

	assert.NoError(t, s.Customers.Update(ctx, "missing", models.CustomerPatch{Name: models.Ptr("X")}))
	assert.NoError(t, s.Customers.Delete(ctx, "missing"))

	assert.Equal(t, before, s.Customers.List(ctx))
	assert.Equal(t, 1, sched.Calls(), "no-ops must not schedule a push")
}

func TestUpdateStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s, _, sched, clock := newTestSet(t)
	created := seedCustomer(t, s, "c1", clock.Now())

	clock.Advance(time.Minute)
	require.NoError(t, s.Customers.Update(ctx, "c1", models.CustomerPatch{Name: models.Ptr("X")}))

	got, ok := s.CustomerByID(ctx, "c1")
	require.True(t, ok)
	assert.Equal(t, "X", got.Name)
	assert.Equal(t, created.Phone, got.Phone, "unpatched fields are kept")
	assert.True(t, !got.UpdatedAt.Before(created.UpdatedAt))
	assert.Equal(t, clock.Now(), got.UpdatedAt)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, 2, sched.Calls())
}

func TestDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()
	s, _, sched, clock := newTestSet(t)
	seedCustomer(t, s, "c1", clock.Now())
	seedCustomer(t, s, "c2", clock.Now())

	require.NoError(t, s.Customers.Delete(ctx, "c1"))

	list := s.Customers.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, 3, sched.Calls())
}

func TestReadsDoNotSchedule(t *testing.T) {
	ctx := context.Background()
	s, _, sched, _ := newTestSet(t)

	s.Products.List(ctx)
	s.Products.FindByID(ctx, "p1")
	s.UserByUsername(ctx, "admin")
	s.PurchasesForCustomer(ctx, "c1")

	assert.Equal(t, 0, sched.Calls())
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	s, _, _, clock := newTestSet(t)

	require.NoError(t, s.Users.Create(ctx, models.User{ID: "1", Username: "admin", Role: models.RoleAdmin}))
	require.NoError(t, s.POSTransactions.Create(ctx, models.POSTransaction{ID: "t1", CustomerID: "c1", CreatedAt: clock.Now()}))
	require.NoError(t, s.POSTransactions.Create(ctx, models.POSTransaction{ID: "t2", CustomerID: "c2", CreatedAt: clock.Now()}))
	require.NoError(t, s.POSTransactions.Create(ctx, models.POSTransaction{ID: "t3", CreatedAt: clock.Now()}))

	u, ok := s.UserByUsername(ctx, "admin")
	assert.True(t, ok)
	assert.Equal(t, "1", u.ID)
	_, ok = s.UserByUsername(ctx, "nobody")
	assert.False(t, ok)

	purchases := s.PurchasesForCustomer(ctx, "c1")
	require.Len(t, purchases, 1)
	assert.Equal(t, "t1", purchases[0].ID)
}

func TestDatasetImportLeavesAbsentCollections(t *testing.T) {
	ctx := context.Background()
	s, data, sched, clock := newTestSet(t)
	require.NoError(t, s.Products.Create(ctx, models.Product{ID: "p1", Name: "Local", CreatedAt: clock.Now()}))
	require.NoError(t, s.Users.Create(ctx, models.User{ID: "1", Username: "local"}))
	calls := sched.Calls()

	n := data.Import(ctx, models.SnapshotDocument{
		Users:     []models.User{{ID: "9", Username: "remote"}},
		Customers: []models.Customer{},
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, calls, sched.Calls(), "imports are not pushed back")

	snap := data.Export(ctx)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "remote", snap.Users[0].Username)
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "Local", snap.Products[0].Name)
	assert.Empty(t, snap.Customers)
	assert.NotNil(t, snap.Receipts)
	assert.Equal(t, clock.Now(), snap.UpdatedAt)
}
