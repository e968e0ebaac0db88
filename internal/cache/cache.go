// Package cache gives the rest of the store a uniform read/write/remove surface over two
// storage scopes, each backed by an optional storage facility and an in-memory mirror.
//
// Reads prefer the facility and fall back to the mirror when the facility errors. Writes land
// in the mirror first, then best-effort in the facility. No operation returns an error.
package cache

import (
	"context"
	"sync"

	"dms-service/internal/util"

	"go.uber.org/zap"
)

// Scope selects the lifetime of a stored value.
type Scope int

const (
	// Durable values survive restarts.
	Durable Scope = iota
	// Session values vanish when the session ends.
	Session
)

func (s Scope) String() string {
	switch s {
	case Durable:
		return "durable"
	case Session:
		return "session"
	default:
		return "unknown"
	}
}

// Facility is a real storage backend for one scope.
type Facility interface {
	// Get returns the stored value; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Cache holds one facility and one in-memory mirror per scope.
type Cache struct {
	scopes [2]*scoped
	logger *zap.Logger
}

type scoped struct {
	name     string
	facility Facility

	mu     sync.Mutex
	mirror map[string]string
	// keys whose last facility write failed; the mirror is authoritative for them
	stale map[string]struct{}
}

// New creates a cache. A nil facility makes that scope in-memory only.
func New(durable, session Facility, logger *zap.Logger) *Cache {
	return &Cache{
		scopes: [2]*scoped{
			newScoped(Durable, durable),
			newScoped(Session, session),
		},
		logger: util.LoggerOr(logger),
	}
}

func newScoped(s Scope, f Facility) *scoped {
	return &scoped{
		name:     s.String(),
		facility: f,
		mirror:   make(map[string]string),
		stale:    make(map[string]struct{}),
	}
}

func (c *Cache) scope(s Scope) *scoped {
	if s == Session {
		return c.scopes[1]
	}
	return c.scopes[0]
}

// HasFacility reports whether a real facility backs the scope.
func (c *Cache) HasFacility(s Scope) bool {
	return c.scope(s).facility != nil
}

// Read returns the value stored under key.
func (c *Cache) Read(ctx context.Context, s Scope, key string) (string, bool) {
	sc := c.scope(s)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, stale := sc.stale[key]; sc.facility == nil || stale {
		v, ok := sc.mirror[key]
		return v, ok
	}

	v, ok, err := sc.facility.Get(ctx, key)
	if err != nil {
		util.CacheFallbackTotal.WithLabelValues(sc.name, "read").Inc()
		c.logger.Debug("Storage read failed, using in-memory value",
			zap.String("scope", sc.name),
			zap.String("key", key),
			zap.Error(err))
		v, ok := sc.mirror[key]
		return v, ok
	}

	if ok {
		sc.mirror[key] = v
	} else {
		delete(sc.mirror, key)
	}
	return v, ok
}

// Write stores value under key.
func (c *Cache) Write(ctx context.Context, s Scope, key, value string) {
	sc := c.scope(s)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.mirror[key] = value
	if sc.facility == nil {
		return
	}

	if err := sc.facility.Set(ctx, key, value); err != nil {
		sc.stale[key] = struct{}{}
		util.CacheFallbackTotal.WithLabelValues(sc.name, "write").Inc()
		c.logger.Debug("Storage write failed, value kept in memory",
			zap.String("scope", sc.name),
			zap.String("key", key),
			zap.Error(err))
		return
	}
	delete(sc.stale, key)
}

// Remove deletes key.
func (c *Cache) Remove(ctx context.Context, s Scope, key string) {
	sc := c.scope(s)
	sc.mu.Lock()
	defer sc.mu.Unlock()

	delete(sc.mirror, key)
	if sc.facility == nil {
		return
	}

	if err := sc.facility.Delete(ctx, key); err != nil {
		// the facility may still hold the old value; serve the (absent) mirror entry instead
		sc.stale[key] = struct{}{}
		util.CacheFallbackTotal.WithLabelValues(sc.name, "remove").Inc()
		c.logger.Debug("Storage remove failed",
			zap.String("scope", sc.name),
			zap.String("key", key),
			zap.Error(err))
		return
	}
	delete(sc.stale, key)
}
