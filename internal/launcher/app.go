package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskdeck/internal/cache"
	"taskdeck/internal/config"
	"taskdeck/internal/logging"
	"taskdeck/internal/task"
	"taskdeck/internal/tasknotes"
)

// App wires the client, caches, and engines together for one invocation.
type App struct {
	cfg      *config.Config
	client   *tasknotes.Client
	store    cache.Store
	tasks    *cache.TasksCache
	session  *cache.TTLCache[*tasknotes.ActiveSession]
	detail   *cache.DetailCache
	pomodoro *cache.TTLCache[*tasknotes.PomodoroStatus]
	logger   *slog.Logger
	now      func() time.Time

	// SpawnRefresh starts a detached background refresher for a task-list
	// cache key. Nil disables background refreshes; reads past max-stale
	// still refresh in the foreground.
	SpawnRefresh func(key, requestID string) error
}

// New builds an App from configuration. The caller owns Close.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	client, err := tasknotes.New(tasknotes.Config{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		client: client,
		store:  store,
		tasks: cache.NewTasksCache(store, cache.TasksOptions{
			TTL:            cfg.Cache.TTL(),
			MaxStale:       cfg.Cache.MaxStale(),
			RefreshBackoff: cfg.Cache.RefreshBackoff(),
			RerunDelay:     cfg.Cache.RerunDelay(),
			Logger:         logger,
		}),
		session:  cache.NewTTLCache[*tasknotes.ActiveSession](store, "time_active", cfg.Cache.SessionTTL()),
		detail:   cache.NewDetailCache(store, cfg.Cache.DetailTTL()),
		pomodoro: cache.NewTTLCache[*tasknotes.PomodoroStatus](store, "pomodoro_status", cfg.Cache.PomodoroTTL()),
		logger:   logging.NewComponentLogger(logger, "launcher"),
		now:      time.Now,
	}, nil
}

func openStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "sqlite":
		return cache.NewSQLiteStore(cfg.Cache.SQLitePath())
	case "file", "":
		return cache.NewFileStore(cfg.Cache.Dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// Close releases store resources.
func (a *App) Close() error {
	if closer, ok := a.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// WithClock overrides the time source for tests.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	a.tasks.WithClock(now)
	a.session.WithClock(now)
	a.detail.WithClock(now)
	a.pomodoro.WithClock(now)
	return a
}

// Client exposes the underlying API client for commands that talk to the
// service directly.
func (a *App) Client() *tasknotes.Client { return a.client }

// fetchTasks is the cache-miss path for a task-list key.
func (a *App) fetchTasks(includeCompleted, includeArchived bool) cache.FetchTasks {
	return func(ctx context.Context) ([]task.Task, error) {
		var completed, archived *bool
		if includeCompleted {
			completed = &includeCompleted
		}
		if includeArchived {
			archived = &includeArchived
		}
		return a.client.ListTasks(ctx, tasknotes.ListOptions{
			Limit:     a.cfg.API.FetchLimit,
			Completed: completed,
			Archived:  archived,
			Sort:      "date_modified:desc",
		})
	}
}

// CachedTasks reads the task list through the stale-while-revalidate cache
// and spawns the background refresher when this read claimed one.
func (a *App) CachedTasks(ctx context.Context, includeCompleted, includeArchived bool) (cache.Result, error) {
	key := cache.TasksKey(a.cfg.API.FetchLimit, includeCompleted, includeArchived)
	res, err := a.tasks.Get(ctx, key, a.fetchTasks(includeCompleted, includeArchived))
	if err != nil {
		return res, err
	}
	if res.RefreshID != "" && a.SpawnRefresh != nil {
		if err := a.SpawnRefresh(key, res.RefreshID); err != nil {
			a.logger.Warn("failed to spawn background refresh",
				logging.String("key", key), logging.Error(err))
		}
	}
	return res, nil
}

// RefreshTasks runs the background-refresh path for a cache key. It is
// invoked by the detached refresher process.
func (a *App) RefreshTasks(ctx context.Context, key, requestID string) error {
	includeCompleted, includeArchived := parseTasksKey(key)
	return a.tasks.Refresh(ctx, key, requestID, a.fetchTasks(includeCompleted, includeArchived))
}

func parseTasksKey(key string) (includeCompleted, includeArchived bool) {
	// Key shape: tasks_<limit>[_completed][_archived].
	return strings.Contains(key, "_completed"), strings.Contains(key, "_archived")
}

// invalidateTaskCaches drops every cached view touched by a write.
func (a *App) invalidateTaskCaches() {
	a.tasks.InvalidateAll(
		cache.TasksKey(a.cfg.API.FetchLimit, false, false),
		cache.TasksKey(a.cfg.API.FetchLimit, true, false),
		cache.TasksKey(a.cfg.API.FetchLimit, false, true),
	)
	if err := a.detail.Invalidate(); err != nil {
		a.logger.Debug("detail cache invalidation", logging.Error(err))
	}
	if err := a.session.Invalidate(); err != nil {
		a.logger.Debug("session cache invalidation", logging.Error(err))
	}
}

// activeSession returns the current tracking session (nil when idle),
// serving from the short-lived cache when possible. Lookup failures map to
// "no session" so the search feed never breaks on tracking hiccups.
func (a *App) activeSession(ctx context.Context) *tasknotes.ActiveSession {
	session, err := a.session.Get(ctx, func(ctx context.Context) (*tasknotes.ActiveSession, error) {
		sessions, err := a.client.ActiveSessions(ctx)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			return nil, nil
		}
		first := sessions[0]
		return &first, nil
	})
	if err != nil {
		a.logger.Debug("active session lookup failed", logging.Error(err))
		return nil
	}
	return session
}

// taskDetail fetches a single task by id through the detail cache.
func (a *App) taskDetail(ctx context.Context, id string) (task.Task, bool) {
	if id == "" {
		return task.Task{}, false
	}
	if t, ok := a.detail.Get(id); ok {
		return t, true
	}
	t, err := a.client.GetTask(ctx, id)
	if err != nil {
		a.logger.Debug("task detail lookup failed", logging.String("id", id), logging.Error(err))
		return task.Task{}, false
	}
	if err := a.detail.Put(id, t); err != nil {
		a.logger.Debug("detail cache write failed", logging.Error(err))
	}
	return t, true
}
