package rank

import "strings"

// Filter names a quick-filter category.
type Filter string

const (
	FilterNone     Filter = ""
	FilterToday    Filter = "today"
	FilterTomorrow Filter = "tomorrow"
	FilterOverdue  Filter = "overdue"
	FilterComplete Filter = "complete"
	FilterArchived Filter = "archived"
	FilterP1       Filter = "p1"
	FilterP2       Filter = "p2"
	FilterP3       Filter = "p3"
)

// FilterInfo describes a quick filter for autocomplete suggestions.
type FilterInfo struct {
	Prefix      string
	Filter      Filter
	Name        string
	Description string
}

// Filters lists every quick filter in display order.
var Filters = []FilterInfo{
	{"!today", FilterToday, "Today", "Tasks due or scheduled for today"},
	{"!tomorrow", FilterTomorrow, "Tomorrow", "Tasks due or scheduled for tomorrow"},
	{"!overdue", FilterOverdue, "Overdue", "Tasks past their due or scheduled date"},
	{"!complete", FilterComplete, "Complete", "Completed tasks"},
	{"!archived", FilterArchived, "Archived", "Archived tasks"},
	{"!p1", FilterP1, "P1", "High priority tasks"},
	{"!p2", FilterP2, "P2", "Medium priority tasks"},
	{"!p3", FilterP3, "P3", "Low priority tasks"},
}

// Query is the parsed form of a raw launcher query.
type Query struct {
	Raw    string
	Filter Filter
	// Search is the free-text remainder after stripping the quick filter.
	Search string
}

// ParseQuery splits an optional quick-filter prefix off the query. The
// filter must be the leading token; anything after it is the search text.
func ParseQuery(raw string) Query {
	q := strings.TrimSpace(raw)
	lower := strings.ToLower(q)
	for _, info := range Filters {
		if lower == info.Prefix {
			return Query{Raw: raw, Filter: info.Filter}
		}
		if strings.HasPrefix(lower, info.Prefix+" ") {
			return Query{Raw: raw, Filter: info.Filter, Search: strings.TrimSpace(q[len(info.Prefix):])}
		}
	}
	return Query{Raw: raw, Search: q}
}

// IsPartialFilter reports whether the query is an incomplete quick filter
// ("!", "!to") that should surface autocomplete suggestions instead of
// search results.
func IsPartialFilter(raw string) bool {
	q := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(q, "!") {
		return false
	}
	for _, info := range Filters {
		if q == info.Prefix || strings.HasPrefix(q, info.Prefix+" ") {
			return false
		}
	}
	return true
}

// MatchingFilters returns the quick filters whose prefix starts with the
// partial input. A bare "!" matches everything.
func MatchingFilters(partial string) []FilterInfo {
	p := strings.ToLower(strings.TrimSpace(partial))
	if p == "!" {
		out := make([]FilterInfo, len(Filters))
		copy(out, Filters)
		return out
	}
	var matches []FilterInfo
	for _, info := range Filters {
		if strings.HasPrefix(info.Prefix, p) {
			matches = append(matches, info)
		}
	}
	return matches
}

// EmptyStateLabel describes the filter for "no results" messages.
func (f Filter) EmptyStateLabel() string {
	switch f {
	case FilterComplete:
		return "completed"
	case FilterP1:
		return "high priority"
	case FilterP2:
		return "medium priority"
	case FilterP3:
		return "low priority"
	default:
		return string(f)
	}
}
