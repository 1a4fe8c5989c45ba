package rank

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"taskdeck/internal/task"
)

var folder = cases.Fold()

// Normalize lowercases via Unicode case folding and collapses whitespace so
// comparisons behave the same regardless of how the title was typed.
func Normalize(s string) string {
	return strings.Join(strings.Fields(folder.String(s)), " ")
}

// Tokenize splits a query into normalized tokens.
func Tokenize(q string) []string {
	return strings.Fields(Normalize(q))
}

// haystack builds the searchable text for a task.
func haystack(t task.Task) string {
	parts := make([]string, 0, 8+len(t.Tags)+len(t.Projects))
	for _, v := range []string{t.Title, t.Path, t.Priority, t.Status, t.Due, t.Scheduled} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	for _, tag := range t.Tags {
		if tag != "" {
			parts = append(parts, tag)
		}
	}
	for _, proj := range t.Projects {
		if proj != "" {
			parts = append(parts, proj)
		}
	}
	return Normalize(strings.Join(parts, " "))
}

// Visible drops completed and archived tasks unless the caller asked for
// them. Including archived still hides completed tasks and vice versa.
func Visible(tasks []task.Task, includeCompleted, includeArchived bool) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		switch {
		case includeArchived:
			if !t.IsCompleted() {
				out = append(out, t)
			}
		case includeCompleted:
			if !t.IsArchived() {
				out = append(out, t)
			}
		default:
			if !t.IsCompleted() && !t.IsArchived() {
				out = append(out, t)
			}
		}
	}
	return out
}

// ApplyFilter narrows tasks to those matching the quick filter. Date filters
// compare the calendar day of the due or scheduled field, so datetime values
// still match.
func ApplyFilter(tasks []task.Task, f Filter, today time.Time) []task.Task {
	if f == FilterNone {
		return tasks
	}
	todayStr := today.Format("2006-01-02")
	tomorrowStr := today.AddDate(0, 0, 1).Format("2006-01-02")

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		due := t.DueDay()
		scheduled := t.ScheduledDay()
		var keep bool
		switch f {
		case FilterToday:
			keep = due == todayStr || scheduled == todayStr
		case FilterTomorrow:
			keep = due == tomorrowStr || scheduled == tomorrowStr
		case FilterOverdue:
			keep = (due != "" && due < todayStr) || (scheduled != "" && scheduled < todayStr)
		case FilterComplete:
			keep = t.IsCompleted()
		case FilterArchived:
			keep = t.IsArchived()
		case FilterP1:
			keep = task.NormalizePriority(t.Priority) == task.PriorityHigh
		case FilterP2:
			keep = task.NormalizePriority(t.Priority) == task.PriorityMedium
		case FilterP3:
			keep = task.NormalizePriority(t.Priority) == task.PriorityLow
		}
		if keep {
			out = append(out, t)
		}
	}
	return out
}

// dueSortSentinel sorts tasks without a due date after every dated task.
const dueSortSentinel = "9999-99-99"

type scored struct {
	task      task.Task
	titleNorm string
	exact     int
	starts    int
	contains  int
	covered   int
	modified  string
	dueSort   string
}

// FilterAndRank applies the search query over the visibility-filtered tasks
// and orders matches by relevance. An empty query preserves the incoming
// order (the service already sorts by recency).
func FilterAndRank(tasks []task.Task, query string, includeCompleted, includeArchived bool) []task.Task {
	visible := Visible(tasks, includeCompleted, includeArchived)
	if strings.TrimSpace(query) == "" {
		return visible
	}

	tokens := Tokenize(query)
	qNorm := Normalize(query)

	ranked := make([]scored, 0, len(visible))
	for _, t := range visible {
		hay := haystack(t)
		matched := true
		covered := 0
		for _, tok := range tokens {
			if strings.Contains(hay, tok) {
				covered++
			} else {
				matched = false
			}
		}
		if !matched {
			continue
		}
		titleNorm := Normalize(t.Title)
		s := scored{
			task:      t,
			titleNorm: titleNorm,
			covered:   covered,
			modified:  t.Modified(),
			dueSort:   strings.TrimSpace(t.Due),
		}
		if s.dueSort == "" {
			s.dueSort = dueSortSentinel
		}
		if qNorm != "" {
			if titleNorm == qNorm {
				s.exact = 1
			}
			if strings.HasPrefix(titleNorm, qNorm) {
				s.starts = 1
			}
			if strings.Contains(titleNorm, qNorm) {
				s.contains = 1
			}
		}
		ranked = append(ranked, s)
	}

	// Chained stable sorts: later keys dominate, earlier keys break ties.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].titleNorm < ranked[j].titleNorm
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].dueSort < ranked[j].dueSort
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].modified > ranked[j].modified
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.exact != b.exact {
			return a.exact > b.exact
		}
		if a.starts != b.starts {
			return a.starts > b.starts
		}
		if a.contains != b.contains {
			return a.contains > b.contains
		}
		return a.covered > b.covered
	})

	out := make([]task.Task, len(ranked))
	for i, s := range ranked {
		out[i] = s.task
	}
	return out
}

// HasExactTitle reports whether any task's normalized title equals the
// normalized query. Used to suppress the create row when the task already
// exists.
func HasExactTitle(tasks []task.Task, query string) bool {
	qNorm := Normalize(query)
	if qNorm == "" {
		return false
	}
	for _, t := range tasks {
		if t.Title != "" && Normalize(t.Title) == qNorm {
			return true
		}
	}
	return false
}
