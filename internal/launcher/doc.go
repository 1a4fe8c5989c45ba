// Package launcher orchestrates the per-invocation flows behind the
// launcher frontend: the search feed (cache read, filter, rank, pin), the
// create feed (NLP preview), the per-task action menu, and the action
// dispatcher for write operations. Feeds are emitted as script-filter JSON;
// actions return a Notice for the shell to surface.
package launcher
