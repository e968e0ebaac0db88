package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Namespace returns a key-value facility whose keys are prefixed with prefix.
// A positive ttl expires each key ttl after its last write.
func (c *Client) Namespace(prefix string, ttl time.Duration) *Namespace {
	return &Namespace{rdb: c.rdb, prefix: prefix, ttl: ttl}
}

// DurablePrefix is the namespace of long-lived collections.
const DurablePrefix = "dms:"

// SessionPrefix returns the namespace of one session.
func SessionPrefix(sessionID string) string {
	return fmt.Sprintf("dms:session:%s:", sessionID)
}

// Namespace stores string values under a key prefix. It satisfies cache.Facility.
type Namespace struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func (n *Namespace) key(k string) string {
	return n.prefix + k
}

// Get returns the value of key; ok is false when it does not exist
func (n *Namespace) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := n.rdb.Get(ctx, n.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key, refreshing the TTL
func (n *Namespace) Set(ctx context.Context, key, value string) error {
	return n.rdb.Set(ctx, n.key(key), value, n.ttl).Err()
}

// Delete removes key
func (n *Namespace) Delete(ctx context.Context, key string) error {
	return n.rdb.Del(ctx, n.key(key)).Err()
}
