// Package task defines the task model shared by the cache, ranking, and
// launcher layers.
//
// Tasks are remote entities owned by the TaskNotes store; this package only
// describes snapshots of them. The task path is the sole stable identifier —
// every other field may change between fetches. Priority and status values
// arrive in several historical spellings, so the normalization helpers here
// are the single place that maps them onto the canonical levels.
package task
