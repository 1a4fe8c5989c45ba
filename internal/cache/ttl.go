package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TTLCache is a freshness-bounded cache for a single value. It is used for
// rapidly changing status snapshots where serving a value older than a
// second or two would be visibly wrong.
type TTLCache[T any] struct {
	store Store
	key   string
	ttl   time.Duration
	now   func() time.Time
}

// NewTTLCache returns a cache for key with the given freshness bound.
func NewTTLCache[T any](store Store, key string, ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{store: store, key: key, ttl: ttl, now: time.Now}
}

// WithClock overrides the time source for tests.
func (c *TTLCache[T]) WithClock(now func() time.Time) *TTLCache[T] {
	c.now = now
	return c
}

// Peek returns the cached value when it is still within the TTL.
func (c *TTLCache[T]) Peek() (T, bool) {
	return c.PeekStale(0)
}

// PeekStale is Peek with the freshness window widened by maxStale. It lets a
// caller fall back to slightly old status when the service is unreachable.
func (c *TTLCache[T]) PeekStale(maxStale time.Duration) (T, bool) {
	var zero T
	payload, fetchedAt, ok := loadEntry(c.store, c.key)
	if !ok {
		return zero, false
	}
	if c.now().Sub(fetchedAt) > c.ttl+maxStale {
		return zero, false
	}
	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		return zero, false
	}
	return value, true
}

// Get returns the cached value when fresh, otherwise calls fetch and stores
// the result. Fetch errors propagate without touching the cached entry.
func (c *TTLCache[T]) Get(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	if value, ok := c.Peek(); ok {
		return value, nil
	}
	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	_ = saveEntry(c.store, c.key, c.now(), value)
	return value, nil
}

// Put stores value as the current snapshot.
func (c *TTLCache[T]) Put(value T) error {
	return saveEntry(c.store, c.key, c.now(), value)
}

// Invalidate drops the cached value.
func (c *TTLCache[T]) Invalidate() error {
	return c.store.Delete(c.key)
}
