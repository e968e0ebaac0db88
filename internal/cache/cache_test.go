package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errQuota = errors.New("quota exceeded")

// flakyFacility wraps a MemoryFacility and fails selected operations.
type flakyFacility struct {
	*MemoryFacility
	failGet, failSet, failDelete bool
}

func (f *flakyFacility) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errQuota
	}
	return f.MemoryFacility.Get(ctx, key)
}

func (f *flakyFacility) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errQuota
	}
	return f.MemoryFacility.Set(ctx, key, value)
}

func (f *flakyFacility) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return errQuota
	}
	return f.MemoryFacility.Delete(ctx, key)
}

func TestCacheWritesThroughToFacility(t *testing.T) {
	ctx := context.Background()
	durable := NewMemoryFacility()
	c := New(durable, nil, zaptest.NewLogger(t))

	c.Write(ctx, Durable, "dms_products", "[]")

	v, ok, err := durable.Get(ctx, "dms_products")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	got, ok := c.Read(ctx, Durable, "dms_products")
	assert.True(t, ok)
	assert.Equal(t, "[]", got)
}

func TestCacheReadFallsBackToMirrorOnFailure(t *testing.T) {
	ctx := context.Background()
	f := &flakyFacility{MemoryFacility: NewMemoryFacility()}
	c := New(f, nil, zaptest.NewLogger(t))

	c.Write(ctx, Durable, "k", "v1")
	f.failGet = true

	v, ok := c.Read(ctx, Durable, "k")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	_, ok = c.Read(ctx, Durable, "missing")
	assert.False(t, ok)
}

func TestCacheReadYourWritesWhenFacilityRejects(t *testing.T) {
	ctx := context.Background()
	f := &flakyFacility{MemoryFacility: NewMemoryFacility()}
	c := New(f, nil, zaptest.NewLogger(t))

	c.Write(ctx, Durable, "k", "old")
	f.failSet = true
	c.Write(ctx, Durable, "k", "new")

	v, ok := c.Read(ctx, Durable, "k")
	assert.True(t, ok)
	assert.Equal(t, "new", v, "a rejected write must still be visible in-process")

	f.failSet = false
	c.Write(ctx, Durable, "k", "newer")
	stored, _, _ := f.MemoryFacility.Get(ctx, "k")
	assert.Equal(t, "newer", stored)
}

func TestCacheRemove(t *testing.T) {
	ctx := context.Background()
	f := &flakyFacility{MemoryFacility: NewMemoryFacility()}
	c := New(f, nil, zaptest.NewLogger(t))

	c.Write(ctx, Durable, "k", "v")
	c.Remove(ctx, Durable, "k")
	_, ok := c.Read(ctx, Durable, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, f.Len())

	c.Write(ctx, Durable, "k2", "v")
	f.failDelete = true
	c.Remove(ctx, Durable, "k2")
	_, ok = c.Read(ctx, Durable, "k2")
	assert.False(t, ok, "failed facility delete must not resurrect the value")
}

func TestCacheWithoutFacilityIsMemoryOnly(t *testing.T) {
	ctx := context.Background()
	c := New(nil, nil, zaptest.NewLogger(t))

	assert.False(t, c.HasFacility(Durable))
	assert.False(t, c.HasFacility(Session))

	c.Write(ctx, Session, "dms_current_user", "{}")
	v, ok := c.Read(ctx, Session, "dms_current_user")
	assert.True(t, ok)
	assert.Equal(t, "{}", v)

	c.Remove(ctx, Session, "dms_current_user")
	_, ok = c.Read(ctx, Session, "dms_current_user")
	assert.False(t, ok)
}

func TestCacheScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	durable, session := NewMemoryFacility(), NewMemoryFacility()
	c := New(durable, session, zaptest.NewLogger(t))

	c.Write(ctx, Durable, "k", "d")
	c.Write(ctx, Session, "k", "s")

	d, _ := c.Read(ctx, Durable, "k")
	s, _ := c.Read(ctx, Session, "k")
	assert.Equal(t, "d", d)
	assert.Equal(t, "s", s)
	assert.Equal(t, 1, durable.Len())
	assert.Equal(t, 1, session.Len())
}

func TestCacheForgetsKeysTheFacilityExpired(t *testing.T) {
	ctx := context.Background()
	f := &flakyFacility{MemoryFacility: NewMemoryFacility()}
	c := New(nil, f, zaptest.NewLogger(t))

	c.Write(ctx, Session, "dms_current_user", `{"id":"1"}`)
	require.NoError(t, f.MemoryFacility.Delete(ctx, "dms_current_user"))

	_, ok := c.Read(ctx, Session, "dms_current_user")
	assert.False(t, ok)

	f.failGet = true
	_, ok = c.Read(ctx, Session, "dms_current_user")
	assert.False(t, ok, "expired value must not come back from memory")
}
