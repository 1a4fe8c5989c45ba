package task

import (
	"testing"
	"time"
)

func TestNormalizePriority(t *testing.T) {
	cases := map[string]Priority{
		"high":    PriorityHigh,
		"Highest": PriorityHigh,
		"1":       PriorityHigh,
		"P1":      PriorityHigh,
		"normal":  PriorityMedium,
		"medium":  PriorityMedium,
		"2":       PriorityMedium,
		"low":     PriorityLow,
		"lowest":  PriorityLow,
		"p3":      PriorityLow,
		"":        PriorityNone,
		"urgent":  PriorityNone,
	}
	for input, want := range cases {
		if got := NormalizePriority(input); got != want {
			t.Errorf("NormalizePriority(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCompletionFlags(t *testing.T) {
	if !(Task{Completed: true}).IsCompleted() {
		t.Error("explicit completed flag ignored")
	}
	if !(Task{Status: "Done"}).IsCompleted() {
		t.Error("done status not treated as completed")
	}
	if (Task{Status: "open"}).IsCompleted() {
		t.Error("open task reported completed")
	}
	if !(Task{Archived: true}).IsArchived() {
		t.Error("explicit archived flag ignored")
	}
	if !(Task{Status: "archived"}).IsArchived() {
		t.Error("archived status ignored")
	}
}

func TestModifiedFallsBackToCreated(t *testing.T) {
	tk := Task{DateCreated: "2026-01-01T10:00:00Z"}
	if got := tk.Modified(); got != "2026-01-01T10:00:00Z" {
		t.Fatalf("Modified() = %q", got)
	}
	tk.DateModified = "2026-02-02T10:00:00Z"
	if got := tk.Modified(); got != "2026-02-02T10:00:00Z" {
		t.Fatalf("Modified() = %q", got)
	}
}

func TestDayOf(t *testing.T) {
	cases := map[string]string{
		"2026-08-26":           "2026-08-26",
		"2026-08-26T15:04:05Z": "2026-08-26",
		" 2026-08-26 ":         "2026-08-26",
		"":                     "",
		"soon":                 "soon",
	}
	for input, want := range cases {
		if got := DayOf(input); got != want {
			t.Errorf("DayOf(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatRelativeDay(t *testing.T) {
	today := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) // a Wednesday

	cases := map[string]string{
		"2026-08-26": "Today",
		"2026-08-27": "Tomorrow",
		"2026-08-25": "Yesterday",
		"2026-08-22": "4d ago",
		"2026-08-28": "Fri",
		"2026-08-31": "Mon",
		"2026-09-02": "Next week",
		"2026-09-15": "Sep 15",
		"not-a-date": "not-a-date",
		"":           "",
	}
	for input, want := range cases {
		if got := FormatRelativeDay(input, today); got != want {
			t.Errorf("FormatRelativeDay(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatRelativeDayTruncatesDatetime(t *testing.T) {
	today := time.Date(2026, 8, 26, 23, 30, 0, 0, time.UTC)
	if got := FormatRelativeDay("2026-08-27T09:00:00Z", today); got != "Tomorrow" {
		t.Fatalf("datetime due = %q, want Tomorrow", got)
	}
}
