// Package collection serializes named collections (JSON arrays) and singletons (JSON objects)
// through the cache. A stored value that cannot be decoded is treated as absent and removed so
// the next read starts clean.
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"dms-service/internal/cache"
	"dms-service/internal/util"

	"go.uber.org/zap"
)

// Store reads and writes typed values through a cache.
type Store struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewStore creates a collection store over c
func NewStore(c *cache.Cache, logger *zap.Logger) *Store {
	return &Store{cache: c, logger: util.LoggerOr(logger)}
}

// Cache returns the underlying cache
func (s *Store) Cache() *cache.Cache {
	return s.cache
}

// GetArray decodes the collection stored under key from the durable scope.
// Missing, null and corrupt values all read as an empty collection.
func GetArray[T any](ctx context.Context, s *Store, key string) []T {
	raw, ok := s.cache.Read(ctx, cache.Durable, key)
	if !ok || raw == "" {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.discard(ctx, cache.Durable, key, err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// SetArray encodes items into the durable scope under key. A nil slice is stored as [].
func SetArray[T any](ctx context.Context, s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}
	s.cache.Write(ctx, cache.Durable, key, string(b))
	return nil
}

// GetObject decodes the singleton stored under key. It returns nil when the value is absent,
// not a JSON object, or corrupt; corrupt values are removed.
func GetObject[T any](ctx context.Context, s *Store, scope cache.Scope, key string) *T {
	raw, ok := s.cache.Read(ctx, scope, key)
	if !ok || raw == "" {
		return nil
	}

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		s.discard(ctx, scope, key, fmt.Errorf("not a JSON object"))
		return nil
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		s.discard(ctx, scope, key, err)
		return nil
	}
	return &v
}

// SetObject encodes value into scope under key
func SetObject[T any](ctx context.Context, s *Store, scope cache.Scope, key string, value T) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode object %s: %w", key, err)
	}
	s.cache.Write(ctx, scope, key, string(b))
	return nil
}

// RemoveObject deletes the singleton stored under key
func (s *Store) RemoveObject(ctx context.Context, scope cache.Scope, key string) {
	s.cache.Remove(ctx, scope, key)
}

func (s *Store) discard(ctx context.Context, scope cache.Scope, key string, cause error) {
	util.CorruptPayloadTotal.WithLabelValues(key).Inc()
	s.logger.Warn("Discarding corrupt stored value",
		zap.String("scope", scope.String()),
		zap.String("key", key),
		zap.Error(cause))
	s.cache.Remove(ctx, scope, key)
}
