package launcher

import (
	"context"
	"strings"

	"taskdeck/internal/cache"
	"taskdeck/internal/task"
)

// ActionsFeed builds the per-task action menu for a selected task path.
// Task state decides the row labels (complete vs reopen, schedule vs clear),
// so the menu re-fetches the task instead of trusting the search row.
func (a *App) ActionsFeed(ctx context.Context, path string) (Feed, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Feed{Items: []Item{{
			Title:    "No task selected",
			Subtitle: "Pick a task from the search results first",
			Valid:    false,
		}}}, nil
	}

	t, ok := a.taskDetail(ctx, path)
	if !ok {
		// Service unreachable: fall back to the last cached listing so the
		// menu still opens offline.
		t, ok = a.findInCachedList(path)
	}
	if !ok {
		return Feed{Items: []Item{{
			Title:    "Task not found",
			Subtitle: path,
			Valid:    false,
		}}}, nil
	}

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "(Untitled task)"
	}

	active := a.activeSession(ctx)
	tracked := active != nil && active.TaskID == path

	items := make([]Item, 0, 8)

	items = append(items, Item{
		Title:    "Open \"" + title + "\"",
		Subtitle: "Open the task note",
		Arg:      argJSON(ActionRequest{Action: "open", Path: path}),
		Valid:    true,
	})

	if tracked {
		items = append(items, Item{
			Title:    "Stop tracking",
			Subtitle: "Stop the running time session",
			Arg:      argJSON(ActionRequest{Action: "toggle_tracking", Path: path}),
			Valid:    true,
		})
	} else {
		items = append(items, Item{
			Title:    "Start tracking",
			Subtitle: "Track time against this task",
			Arg:      argJSON(ActionRequest{Action: "toggle_tracking", Path: path}),
			Valid:    true,
		})
	}

	if strings.TrimSpace(t.Scheduled) != "" {
		items = append(items, Item{
			Title:    "Clear schedule",
			Subtitle: "Currently scheduled: " + task.FormatRelativeDay(t.Scheduled, a.now()),
			Arg:      argJSON(ActionRequest{Action: "toggle_schedule", Path: path}),
			Valid:    true,
		})
	} else {
		items = append(items, Item{
			Title:    "Schedule for today",
			Subtitle: "Set the scheduled date to today",
			Arg:      argJSON(ActionRequest{Action: "toggle_schedule", Path: path}),
			Valid:    true,
		})
	}

	if t.IsCompleted() {
		items = append(items, Item{
			Title:    "Reopen task",
			Subtitle: "Mark as open again",
			Arg:      argJSON(ActionRequest{Action: "toggle_complete", Path: path}),
			Valid:    true,
		})
	} else {
		items = append(items, Item{
			Title:    "Complete task",
			Subtitle: "Mark as done",
			Arg:      argJSON(ActionRequest{Action: "toggle_complete", Path: path}),
			Valid:    true,
		})
	}

	if t.IsArchived() {
		items = append(items, Item{
			Title:    "Unarchive task",
			Subtitle: "Restore from the archive",
			Arg:      argJSON(ActionRequest{Action: "toggle_archive", Path: path}),
			Valid:    true,
		})
	} else {
		items = append(items, Item{
			Title:    "Archive task",
			Subtitle: "Move to the archive",
			Arg:      argJSON(ActionRequest{Action: "toggle_archive", Path: path}),
			Valid:    true,
		})
	}

	items = append(items, Item{
		Title:    "Delete task",
		Subtitle: "Move \"" + title + "\" to trash",
		Arg:      argJSON(ActionRequest{Action: "delete", Path: path, Title: title}),
		Valid:    true,
	})

	items = append(items, Item{
		Title:        "Back to search",
		Subtitle:     "Return to the task list",
		Autocomplete: "",
		Valid:        false,
	})

	return Feed{Items: items}, nil
}

// findInCachedList scans the cached default listing for a task path. The
// listing was written the last time the user saw search results.
func (a *App) findInCachedList(path string) (task.Task, bool) {
	key := cache.TasksKey(a.cfg.API.FetchLimit, false, false)
	tasks, ok := a.tasks.Peek(key)
	if !ok {
		return task.Task{}, false
	}
	for _, t := range tasks {
		if strings.TrimSpace(t.Path) == path {
			return t, true
		}
	}
	return task.Task{}, false
}
