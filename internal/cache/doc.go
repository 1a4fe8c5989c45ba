// Package cache persists snapshots of remote state between launcher
// invocations.
//
// The process is re-spawned for every keystroke, so there is no in-memory
// state worth keeping: everything goes through a Store port (JSON files,
// SQLite, or an in-memory fake for tests) using whole-entry read/replace
// semantics. Lost updates are benign — a refresh result can at worst be
// overwritten by a slightly newer one.
//
// Two specializations are provided. TTLCache is a plain freshness-bounded
// cache for rapidly changing status (active tracking session, pomodoro
// timer). TasksCache layers stale-while-revalidate on top: within the TTL it
// serves without I/O, between TTL and the max-stale bound it serves stale
// data immediately while requesting at most one background refresh per
// backoff window, and past max-stale it refreshes in the foreground, falling
// back to the stale snapshot when the fetch fails.
package cache
