package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dms-service/internal/collection"
	"dms-service/internal/models"
)

var (
	// ErrDuplicateKey is returned when a record with the same id already exists.
	ErrDuplicateKey = errors.New("duplicate record id")

	// ErrInvalidID is returned when a record is created without an id.
	ErrInvalidID = errors.New("record id is required")
)

// Scheduler is notified after every mutation so the data set can be replicated.
type Scheduler interface {
	SchedulePush()
}

type noopScheduler struct{}

func (noopScheduler) SchedulePush() {}

// Repository is the CRUD surface of one collection. Mutations of unknown ids are no-ops.
// Repositories never touch other collections; cascades belong to the service layer.
type Repository[T models.Record, P models.Patch[T]] struct {
	key   string
	data  *Dataset
	sched Scheduler
	clock func() time.Time
}

func newRepository[T models.Record, P models.Patch[T]](key string, data *Dataset, sched Scheduler, clock func() time.Time) *Repository[T, P] {
	return &Repository[T, P]{key: key, data: data, sched: sched, clock: clock}
}

// Key returns the storage key of the collection
func (r *Repository[T, P]) Key() string {
	return r.key
}

// List returns every record in insertion order
func (r *Repository[T, P]) List(ctx context.Context) []T {
	r.data.mu.Lock()
	defer r.data.mu.Unlock()
	return collection.GetArray[T](ctx, r.data.coll, r.key)
}

// FindByID returns the record with id
func (r *Repository[T, P]) FindByID(ctx context.Context, id string) (T, bool) {
	for _, rec := range r.List(ctx) {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Find returns the records matching pred
func (r *Repository[T, P]) Find(ctx context.Context, pred func(T) bool) []T {
	var out []T
	for _, rec := range r.List(ctx) {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Count returns the number of records
func (r *Repository[T, P]) Count(ctx context.Context) int {
	return len(r.List(ctx))
}

// Create appends rec
func (r *Repository[T, P]) Create(ctx context.Context, rec T) error {
	id := rec.RecordID()
	if id == "" {
		return fmt.Errorf("create in %s: %w", r.key, ErrInvalidID)
	}

	r.data.mu.Lock()
	defer r.data.mu.Unlock()

	items := collection.GetArray[T](ctx, r.data.coll, r.key)
	for _, existing := range items {
		if existing.RecordID() == id {
			return fmt.Errorf("create %s in %s: %w", id, r.key, ErrDuplicateKey)
		}
	}

	if err := collection.SetArray(ctx, r.data.coll, r.key, append(items, rec)); err != nil {
		return err
	}
	r.sched.SchedulePush()
	return nil
}

// Update merges patch into the record with id and stamps its update time
func (r *Repository[T, P]) Update(ctx context.Context, id string, patch P) error {
	r.data.mu.Lock()
	defer r.data.mu.Unlock()

	items := collection.GetArray[T](ctx, r.data.coll, r.key)
	for i := range items {
		if items[i].RecordID() != id {
			continue
		}
		patch.Apply(&items[i], r.clock())
		if err := collection.SetArray(ctx, r.data.coll, r.key, items); err != nil {
			return err
		}
		r.sched.SchedulePush()
		return nil
	}
	return nil
}

// Delete removes the record with id
func (r *Repository[T, P]) Delete(ctx context.Context, id string) error {
	r.data.mu.Lock()
	defer r.data.mu.Unlock()

	items := collection.GetArray[T](ctx, r.data.coll, r.key)
	kept := make([]T, 0, len(items))
	for _, rec := range items {
		if rec.RecordID() != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(items) {
		return nil
	}

	if err := collection.SetArray(ctx, r.data.coll, r.key, kept); err != nil {
		return err
	}
	r.sched.SchedulePush()
	return nil
}
