// Package rank filters and orders tasks for launcher display.
//
// A query splits into an optional quick-filter prefix ("!today", "!p1", ...)
// and free-text search tokens. Quick filters narrow by calendar day,
// completion state, or priority; search tokens are ANDed over a haystack of
// the task's text fields. Matches are ordered by a relevance tuple (exact
// title match, prefix match, substring match, tokens covered), then recency,
// then due date, then title. All comparisons use fold-normalized text and
// every sort is stable, so equal inputs always produce identical output.
package rank
