package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/logging"
	"taskdeck/internal/task"
)

// FetchTasks retrieves the task collection from the remote service.
type FetchTasks func(ctx context.Context) ([]task.Task, error)

// TasksOptions configures the stale-while-revalidate windows.
type TasksOptions struct {
	// TTL is the age below which an entry is served without any I/O.
	TTL time.Duration
	// MaxStale is the age bound for serving stale data while a background
	// refresh runs. Past it the refresh happens in the foreground.
	MaxStale time.Duration
	// RefreshBackoff is the minimum spacing between background refresh
	// requests for the same key.
	RefreshBackoff time.Duration
	// RerunDelay is the re-invocation hint handed to the launcher when
	// stale data was served.
	RerunDelay time.Duration

	Logger *slog.Logger
}

// TasksCache serves the task collection with stale-while-revalidate
// semantics. It never fetches while an entry is within the TTL, serves stale
// entries instantly while requesting at most one background refresh per
// backoff window, and refreshes in the foreground once the entry ages past
// the max-stale bound.
type TasksCache struct {
	store          Store
	ttl            time.Duration
	maxStale       time.Duration
	refreshBackoff time.Duration
	rerunDelay     time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// Result is the outcome of a cache read.
type Result struct {
	Tasks     []task.Task
	FetchedAt time.Time
	// Stale reports that the entry is older than the TTL and a fresher
	// snapshot is (or should be) on the way.
	Stale bool
	// Rerun is the delay after which the launcher should re-invoke the
	// feed to pick up the refreshed entry. Zero means no rerun.
	Rerun time.Duration
	// RefreshID is set when this read won the right to start a background
	// refresh; the caller spawns a detached refresher carrying the id.
	RefreshID string
}

// refreshState is the per-key bookkeeping that keeps concurrent invocations
// from stampeding the service.
type refreshState struct {
	RefreshRequested bool      `json:"refresh_requested"`
	RequestID        string    `json:"request_id,omitempty"`
	RequestedAt      time.Time `json:"requested_at"`
	LastAttempt      time.Time `json:"last_attempt"`
	LastSuccess      time.Time `json:"last_success"`
}

// NewTasksCache builds a task-list cache on top of store.
func NewTasksCache(store Store, opts TasksOptions) *TasksCache {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TasksCache{
		store:          store,
		ttl:            opts.TTL,
		maxStale:       opts.MaxStale,
		refreshBackoff: opts.RefreshBackoff,
		rerunDelay:     opts.RerunDelay,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock overrides the time source for tests.
func (c *TasksCache) WithClock(now func() time.Time) *TasksCache {
	c.now = now
	return c
}

// TasksKey derives the cache key for a task-list variant. Listings with
// different limits or visibility flags are independent entries.
func TasksKey(limit int, includeCompleted, includeArchived bool) string {
	key := "tasks_" + strconv.Itoa(limit)
	if includeCompleted {
		key += "_completed"
	}
	if includeArchived {
		key += "_archived"
	}
	return key
}

// Get returns the cached task list for key, fetching according to the
// stale-while-revalidate contract. The error is non-nil only when no data
// could be produced at all: a cold cache combined with a failed fetch.
func (c *TasksCache) Get(ctx context.Context, key string, fetch FetchTasks) (Result, error) {
	now := c.now()
	tasks, fetchedAt, ok := c.loadTasks(key)
	age := now.Sub(fetchedAt)

	if ok && age <= c.ttl {
		return Result{Tasks: tasks, FetchedAt: fetchedAt}, nil
	}

	if ok && age <= c.maxStale {
		id := c.requestRefresh(ctx, key, now)
		res := Result{Tasks: tasks, FetchedAt: fetchedAt, Stale: true, RefreshID: id}
		if id != "" {
			res.Rerun = c.rerunDelay
		}
		return res, nil
	}

	// Entry is missing or past max-stale: refresh in the foreground.
	c.markAttempt(ctx, key, now)
	fresh, err := fetch(ctx)
	if err != nil {
		if ok {
			// Serving very old data beats an empty launcher row.
			c.logger.Warn("task refresh failed, serving stale entry",
				logging.String("key", key),
				logging.Duration("age", age),
				logging.Error(err))
			return Result{Tasks: tasks, FetchedAt: fetchedAt, Stale: true, Rerun: c.rerunDelay}, nil
		}
		return Result{}, fmt.Errorf("refresh task cache %s: %w", key, err)
	}
	c.storeResult(ctx, key, fresh, c.now())
	return Result{Tasks: fresh, FetchedAt: now}, nil
}

// Refresh performs a background refresh requested by an earlier Get. The id
// must match the pending request; a mismatch means another refresher
// superseded this one and there is nothing left to do. An empty id forces
// the refresh unconditionally.
func (c *TasksCache) Refresh(ctx context.Context, key, id string, fetch FetchTasks) error {
	if id != "" {
		state := c.loadState(key)
		if state.RequestID != id {
			c.logger.Debug("skipping superseded refresh",
				logging.String("key", key),
				logging.String("request_id", id))
			return nil
		}
	}
	c.markAttempt(ctx, key, c.now())
	tasks, err := fetch(ctx)
	if err != nil {
		c.clearRequest(ctx, key)
		return fmt.Errorf("refresh task cache %s: %w", key, err)
	}
	c.storeResult(ctx, key, tasks, c.now())
	return nil
}

// Peek returns whatever snapshot is stored for key, regardless of age. Used
// as an offline fallback when the service cannot be reached.
func (c *TasksCache) Peek(key string) ([]task.Task, bool) {
	tasks, _, ok := c.loadTasks(key)
	return tasks, ok
}

// Invalidate drops the cached list and its refresh bookkeeping. Write
// operations call this so the next read fetches fresh data.
func (c *TasksCache) Invalidate(key string) error {
	if err := c.store.Delete(key); err != nil {
		return err
	}
	return c.store.Delete(stateKey(key))
}

func (c *TasksCache) loadTasks(key string) ([]task.Task, time.Time, bool) {
	payload, fetchedAt, ok := loadEntry(c.store, key)
	if !ok {
		return nil, time.Time{}, false
	}
	var tasks []task.Task
	if err := json.Unmarshal(payload, &tasks); err != nil {
		return nil, time.Time{}, false
	}
	return tasks, fetchedAt, true
}

func (c *TasksCache) storeResult(ctx context.Context, key string, tasks []task.Task, now time.Time) {
	if err := saveEntry(c.store, key, now, tasks); err != nil {
		c.logger.Warn("failed to persist task cache entry", logging.String("key", key), logging.Error(err))
		return
	}
	unlock, err := c.store.Lock(ctx)
	if err != nil {
		return
	}
	defer unlock()
	state := c.loadState(key)
	state.RefreshRequested = false
	state.RequestID = ""
	state.LastSuccess = now
	c.saveState(key, state)
}

// requestRefresh atomically claims the background refresh slot for key.
// Returns the request id when this caller won, empty when a refresh is
// already pending within the backoff window.
func (c *TasksCache) requestRefresh(ctx context.Context, key string, now time.Time) string {
	unlock, err := c.store.Lock(ctx)
	if err != nil {
		c.logger.Warn("failed to lock refresh state", logging.String("key", key), logging.Error(err))
		return ""
	}
	defer unlock()
	state := c.loadState(key)
	if state.RefreshRequested && now.Sub(state.RequestedAt) < c.refreshBackoff {
		return ""
	}
	state.RefreshRequested = true
	state.RequestID = uuid.NewString()
	state.RequestedAt = now
	c.saveState(key, state)
	return state.RequestID
}

func (c *TasksCache) markAttempt(ctx context.Context, key string, now time.Time) {
	unlock, err := c.store.Lock(ctx)
	if err != nil {
		return
	}
	defer unlock()
	state := c.loadState(key)
	state.LastAttempt = now
	c.saveState(key, state)
}

func (c *TasksCache) clearRequest(ctx context.Context, key string) {
	unlock, err := c.store.Lock(ctx)
	if err != nil {
		return
	}
	defer unlock()
	state := c.loadState(key)
	state.RefreshRequested = false
	state.RequestID = ""
	c.saveState(key, state)
}

func stateKey(key string) string {
	return key + "_state"
}

func (c *TasksCache) loadState(key string) refreshState {
	var state refreshState
	data, ok, err := c.store.Load(stateKey(key))
	if err != nil || !ok {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return refreshState{}
	}
	return state
}

func (c *TasksCache) saveState(key string, state refreshState) {
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := c.store.Save(stateKey(key), data); err != nil {
		c.logger.Warn("failed to persist refresh state", logging.String("key", key), logging.Error(err))
	}
}

// InvalidateAll removes the listed keys plus their refresh state. Used by
// write actions that change data visible across several cached variants.
func (c *TasksCache) InvalidateAll(keys ...string) {
	for _, key := range keys {
		if err := c.Invalidate(key); err != nil {
			c.logger.Debug("cache invalidation", logging.String("key", key), logging.Error(err))
		}
	}
}
