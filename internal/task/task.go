package task

import (
	"strings"
)

// Task is a snapshot of a remote TaskNotes task. Field names mirror the
// TaskNotes API payload so cached tasks round-trip unchanged.
type Task struct {
	Path         string   `json:"path"`
	Title        string   `json:"title"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority"`
	Due          string   `json:"due"`
	Scheduled    string   `json:"scheduled"`
	Tags         []string `json:"tags"`
	Projects     []string `json:"projects"`
	Contexts     []string `json:"contexts"`
	DateCreated  string   `json:"date_created"`
	DateModified string   `json:"date_modified"`
	Details      string   `json:"details"`
	Completed    bool     `json:"completed"`
	Archived     bool     `json:"archived"`
}

// Priority is the canonical priority level.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
	PriorityNone   Priority = ""
)

var prioritySpellings = map[string]Priority{
	"high":    PriorityHigh,
	"highest": PriorityHigh,
	"1":       PriorityHigh,
	"p1":      PriorityHigh,
	"medium":  PriorityMedium,
	"normal":  PriorityMedium,
	"2":       PriorityMedium,
	"p2":      PriorityMedium,
	"low":     PriorityLow,
	"lowest":  PriorityLow,
	"3":       PriorityLow,
	"p3":      PriorityLow,
}

// NormalizePriority maps the priority spellings seen across TaskNotes
// versions onto a canonical level. Unknown values map to PriorityNone.
func NormalizePriority(value string) Priority {
	if p, ok := prioritySpellings[strings.ToLower(strings.TrimSpace(value))]; ok {
		return p
	}
	return PriorityNone
}

var completedStatuses = map[string]struct{}{
	"done":      {},
	"completed": {},
	"complete":  {},
}

// StatusCompleted reports whether a raw status string denotes completion.
// Used when the API payload carries no explicit completed flag.
func StatusCompleted(status string) bool {
	_, ok := completedStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// StatusArchived reports whether a raw status string denotes an archived task.
func StatusArchived(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == "archived"
}

// IsCompleted reports whether the task is finished, trusting the explicit
// flag and falling back to the status string for older API payloads.
func (t Task) IsCompleted() bool {
	return t.Completed || StatusCompleted(t.Status)
}

// IsArchived reports whether the task is archived.
func (t Task) IsArchived() bool {
	return t.Archived || StatusArchived(t.Status)
}

// Modified returns the best-available modification timestamp, falling back to
// the creation timestamp for tasks that were never edited.
func (t Task) Modified() string {
	if t.DateModified != "" {
		return t.DateModified
	}
	return t.DateCreated
}

// DueDay returns the calendar-day portion of the due date ("" when unset).
func (t Task) DueDay() string { return DayOf(t.Due) }

// ScheduledDay returns the calendar-day portion of the scheduled date.
func (t Task) ScheduledDay() string { return DayOf(t.Scheduled) }

// DayOf truncates an ISO date or datetime string to its YYYY-MM-DD prefix.
// Values shorter than a full date pass through untouched.
func DayOf(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 10 {
		return value[:10]
	}
	return value
}
