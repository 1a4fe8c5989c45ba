package cache

import (
	"time"

	"taskdeck/internal/task"
)

// detailSnapshot pairs a cached task detail with the id it was fetched for,
// so a stale slot is never served for a different task.
type detailSnapshot struct {
	ID   string    `json:"id"`
	Task task.Task `json:"task"`
}

// DetailCache holds the most recently fetched single-task detail. Only one
// slot is kept: the launcher needs detail for at most one pinned task per
// invocation.
type DetailCache struct {
	inner *TTLCache[detailSnapshot]
}

// NewDetailCache returns a detail cache with the given freshness bound.
func NewDetailCache(store Store, ttl time.Duration) *DetailCache {
	return &DetailCache{inner: NewTTLCache[detailSnapshot](store, "task_detail", ttl)}
}

// WithClock overrides the time source for tests.
func (c *DetailCache) WithClock(now func() time.Time) *DetailCache {
	c.inner.WithClock(now)
	return c
}

// Get returns the cached detail for id when fresh.
func (c *DetailCache) Get(id string) (task.Task, bool) {
	snap, ok := c.inner.Peek()
	if !ok || snap.ID != id {
		return task.Task{}, false
	}
	return snap.Task, true
}

// Put stores the detail snapshot for id.
func (c *DetailCache) Put(id string, t task.Task) error {
	return c.inner.Put(detailSnapshot{ID: id, Task: t})
}

// Invalidate drops the cached detail.
func (c *DetailCache) Invalidate() error {
	return c.inner.Invalidate()
}
