package tasknotes

import (
	"taskdeck/internal/task"
)

// taskPayload is the wire shape of a task. Completed and archived are
// pointers because older TaskNotes versions omit them and expect clients to
// infer both from the status string.
type taskPayload struct {
	ID           string   `json:"id"`
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
	Completed    *bool    `json:"completed"`
	Archived     *bool    `json:"archived"`
}

func (p taskPayload) normalize() task.Task {
	t := task.Task{
		Path:         p.Path,
		Title:        p.Title,
		Status:       p.Status,
		Priority:     p.Priority,
		Due:          p.Due,
		Scheduled:    p.Scheduled,
		Tags:         cleanStrings(p.Tags),
		Projects:     cleanStrings(p.Projects),
		Contexts:     cleanStrings(p.Contexts),
		DateCreated:  p.DateCreated,
		DateModified: p.DateModified,
		Details:      p.Details,
	}
	if t.Path == "" {
		// TaskNotes uses the note path as the task identifier.
		t.Path = p.ID
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	} else {
		t.Completed = task.StatusCompleted(p.Status)
	}
	if p.Archived != nil {
		t.Archived = *p.Archived
	} else {
		t.Archived = task.StatusArchived(p.Status)
	}
	return t
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ActiveSession describes one running time-tracking session.
type ActiveSession struct {
	TaskID         string
	Title          string
	ElapsedMinutes int
	ElapsedKnown   bool
	Tags           []string
	Projects       []string
	Priority       string
	Status         string
}

// PomodoroStatus is the normalized pomodoro timer state. HasSession is true
// whenever a session exists, even while paused; IsPaused is inferred from a
// session that exists but is not running.
type PomodoroStatus struct {
	HasSession     bool
	IsRunning      bool
	IsPaused       bool
	TimeRemaining  int // seconds
	SessionType    string
	TaskID         string
	TaskTitle      string
	TotalPomodoros int
	CurrentStreak  int
}
