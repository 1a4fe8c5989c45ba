package launcher

import (
	"context"
	"strconv"
	"strings"

	"taskdeck/internal/tasknotes"
)

// PomodoroFeed builds the pomodoro status feed: one status row plus the
// controls that make sense for the current state. When the service is
// unreachable a slightly stale snapshot is shown rather than an error.
func (a *App) PomodoroFeed(ctx context.Context) (Feed, error) {
	status, err := a.pomodoro.Get(ctx, func(ctx context.Context) (*tasknotes.PomodoroStatus, error) {
		s, err := a.client.PomodoroStatus(ctx)
		if err != nil {
			return nil, err
		}
		return &s, nil
	})
	if err != nil {
		if stale, ok := a.pomodoro.PeekStale(a.cfg.Cache.PomodoroMaxStale()); ok {
			status = stale
		} else {
			return Feed{Items: []Item{{
				Title:    "Pomodoro unavailable",
				Subtitle: "TaskNotes isn't reachable right now.",
				Valid:    false,
			}}}, nil
		}
	}

	var items []Item
	switch {
	case status == nil || !status.HasSession:
		items = append(items, Item{
			Title:    "No pomodoro running",
			Subtitle: "Start a focus session",
			Arg:      argJSON(ActionRequest{Action: "pomodoro_start"}),
			Valid:    true,
		})
	case status.IsRunning:
		items = append(items, Item{
			Title:    sessionLabel(status) + " — " + formatRemaining(status.TimeRemaining),
			Subtitle: statusSubtitle(status),
			Valid:    false,
		})
		items = append(items, Item{
			Title: "Pause pomodoro",
			Arg:   argJSON(ActionRequest{Action: "pomodoro_pause"}),
			Valid: true,
		})
		items = append(items, Item{
			Title: "Stop pomodoro",
			Arg:   argJSON(ActionRequest{Action: "pomodoro_stop"}),
			Valid: true,
		})
	default: // paused
		items = append(items, Item{
			Title:    sessionLabel(status) + " paused — " + formatRemaining(status.TimeRemaining) + " left",
			Subtitle: statusSubtitle(status),
			Valid:    false,
		})
		items = append(items, Item{
			Title: "Resume pomodoro",
			Arg:   argJSON(ActionRequest{Action: "pomodoro_resume"}),
			Valid: true,
		})
		items = append(items, Item{
			Title: "Stop pomodoro",
			Arg:   argJSON(ActionRequest{Action: "pomodoro_stop"}),
			Valid: true,
		})
	}

	feed := Feed{Items: items}
	if status != nil && status.HasSession && status.IsRunning {
		// Keep the countdown moving while the view is open.
		feed.Rerun = a.cfg.Cache.PomodoroTTL()
	}
	return feed, nil
}

func sessionLabel(s *tasknotes.PomodoroStatus) string {
	switch s.SessionType {
	case "shortBreak", "short-break":
		return "Short break"
	case "longBreak", "long-break":
		return "Long break"
	default:
		return "Pomodoro"
	}
}

func statusSubtitle(s *tasknotes.PomodoroStatus) string {
	var bits []string
	if strings.TrimSpace(s.TaskTitle) != "" {
		bits = append(bits, "Task: "+s.TaskTitle)
	}
	if s.TotalPomodoros > 0 {
		bits = append(bits, strconv.Itoa(s.TotalPomodoros)+" today")
	}
	if s.CurrentStreak > 0 {
		bits = append(bits, "streak "+strconv.Itoa(s.CurrentStreak))
	}
	return strings.Join(bits, " • ")
}

func formatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return strconv.Itoa(seconds/60) + ":" + pad2(seconds%60)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
