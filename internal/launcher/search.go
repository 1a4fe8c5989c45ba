package launcher

import (
	"context"
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/logging"
	"taskdeck/internal/rank"
	"taskdeck/internal/task"
	"taskdeck/internal/tasknotes"
)

// Search builds the script-filter feed for a query: quick-filter
// autocomplete, cached task lookup, filtering and ranking, tracked-task
// pinning, and the create row when nothing matches exactly.
func (a *App) Search(ctx context.Context, rawQuery string) (Feed, error) {
	query := strings.TrimSpace(rawQuery)

	// A ">" prefix switches to the create-focused feed.
	if strings.HasPrefix(query, ">") {
		return a.CreateFeed(strings.TrimSpace(query[1:])), nil
	}

	if rank.IsPartialFilter(query) {
		if suggestions := filterSuggestions(query); len(suggestions) > 0 {
			return Feed{Items: suggestions}, nil
		}
		// No matching filter; treat as a literal search term below.
	}

	parsed := rank.ParseQuery(query)
	includeCompleted := parsed.Filter == rank.FilterComplete
	includeArchived := parsed.Filter == rank.FilterArchived

	res, err := a.CachedTasks(ctx, includeCompleted, includeArchived)
	if err != nil {
		// No snapshot at all: show the waiting row and keep polling.
		a.logger.Warn("task list unavailable", logging.Error(err))
		return Feed{
			Items: []Item{{
				Title:    "Waiting for TaskNotes…",
				Subtitle: "The service isn't reachable yet. This view refreshes automatically.",
				Valid:    false,
			}},
			Rerun: time.Second,
		}, nil
	}

	today := a.now()
	filtered := rank.ApplyFilter(res.Tasks, parsed.Filter, today)
	hasExactTitle := rank.HasExactTitle(filtered, parsed.Search)
	visible := rank.FilterAndRank(filtered, parsed.Search, includeCompleted, includeArchived)

	active := a.activeSession(ctx)
	activeID := ""
	if active != nil {
		activeID = active.TaskID
	}

	// Pin the tracked task to the top of the plain browse view only; any
	// input, including a filter-only query, shows the results as-is.
	if query == "" && activeID != "" {
		visible = a.pinTracked(ctx, visible, active)
	}

	var createItem *Item
	if parsed.Search != "" && !hasExactTitle {
		item := a.buildCreateItem(parsed.Search)
		createItem = &item
	}

	maxRows := a.cfg.API.ReturnLimit
	if createItem != nil && maxRows > 0 {
		maxRows--
	}
	if len(visible) > maxRows {
		visible = visible[:maxRows]
	}

	taskItems := a.taskItems(visible, active)

	feed := Feed{Rerun: res.Rerun}
	switch {
	case len(taskItems) == 0 && createItem != nil:
		feed.Items = []Item{*createItem}
	case len(taskItems) == 0 && query == "":
		feed.Items = []Item{{
			Title:    "No tasks yet",
			Subtitle: "Type to search or create a new task",
			Valid:    false,
		}}
	case len(taskItems) == 0 && parsed.Filter != rank.FilterNone && parsed.Search == "":
		feed.Items = []Item{{
			Title:    "No " + parsed.Filter.EmptyStateLabel() + " tasks",
			Subtitle: "Try a different filter or create a new task",
			Valid:    false,
		}}
	case len(taskItems) == 0:
		display := parsed.Search
		if display == "" {
			display = query
		}
		feed.Items = []Item{{
			Title:    "No tasks matching \"" + display + "\"",
			Subtitle: "Try a different search or create a new task",
			Valid:    false,
		}}
	default:
		feed.Items = taskItems
		if createItem != nil {
			feed.Items = append(feed.Items, *createItem)
		}
	}
	return feed, nil
}

// filterSuggestions renders autocomplete rows for a partial "!" input.
func filterSuggestions(partial string) []Item {
	matches := rank.MatchingFilters(partial)
	items := make([]Item, 0, len(matches))
	for _, info := range matches {
		items = append(items, Item{
			Title:        info.Name,
			Subtitle:     info.Description,
			Autocomplete: info.Prefix + " ",
			Valid:        false,
			Match:        info.Prefix + " " + string(info.Filter) + " " + info.Name + " " + info.Description,
		})
	}
	return items
}

// pinTracked moves the tracked task to the front, fetching its detail when
// it fell outside the cached page and synthesizing a minimal row when even
// that fails.
func (a *App) pinTracked(ctx context.Context, tasks []task.Task, active *tasknotes.ActiveSession) []task.Task {
	id := active.TaskID
	for i, t := range tasks {
		if strings.TrimSpace(t.Path) == id {
			if i == 0 {
				return tasks
			}
			pinned := tasks[i]
			rest := append(tasks[:i:i], tasks[i+1:]...)
			return append([]task.Task{pinned}, rest...)
		}
	}
	if detail, ok := a.taskDetail(ctx, id); ok && strings.TrimSpace(detail.Path) != "" {
		return append([]task.Task{detail}, tasks...)
	}
	title := active.Title
	if title == "" {
		title = "(Untitled task)"
	}
	fallback := task.Task{
		Path:     id,
		Title:    title,
		Tags:     active.Tags,
		Projects: active.Projects,
		Priority: active.Priority,
		Status:   active.Status,
	}
	return append([]task.Task{fallback}, tasks...)
}

// taskItems converts ranked tasks into feed rows with modifier shortcuts.
func (a *App) taskItems(tasks []task.Task, active *tasknotes.ActiveSession) []Item {
	activeID := ""
	if active != nil {
		activeID = active.TaskID
	}
	today := a.now()

	items := make([]Item, 0, len(tasks))
	for _, t := range tasks {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			title = "(Untitled task)"
		}
		path := strings.TrimSpace(t.Path)
		subtitle := a.subtitle(t, today)

		tracked := activeID != "" && path == activeID
		if tracked {
			elapsed := "active"
			if active.ElapsedKnown {
				elapsed = strconv.Itoa(active.ElapsedMinutes) + "m"
			}
			prefix := "Tracking: " + elapsed
			if subtitle != "" {
				subtitle = prefix + " • " + subtitle
			} else {
				subtitle = prefix
			}
			title = "⏱ " + title
		}

		trackSubtitle := "Start tracking"
		if tracked {
			trackSubtitle = "Stop tracking"
		}

		items = append(items, Item{
			Title:    title,
			Subtitle: subtitle,
			// Default action opens the per-task action menu.
			Arg:   path,
			Valid: true,
			Mods: map[string]Mod{
				"cmd": {
					Subtitle: "Open task",
					Arg:      argJSON(ActionRequest{Action: "open", Path: path}),
					Valid:    true,
				},
				"shift": {
					Subtitle: "Toggle complete",
					Arg:      argJSON(ActionRequest{Action: "toggle_complete", Path: path}),
					Valid:    true,
				},
				"alt": {
					Subtitle: "Schedule for today",
					Arg:      argJSON(ActionRequest{Action: "toggle_schedule", Path: path}),
					Valid:    true,
				},
				"ctrl": {
					Subtitle: trackSubtitle,
					Arg:      argJSON(ActionRequest{Action: "toggle_tracking", Path: path}),
					Valid:    true,
				},
				"cmd+alt": {
					Subtitle: "Delete task",
					Arg:      argJSON(ActionRequest{Action: "delete", Path: path, Title: strings.TrimSpace(t.Title)}),
					Valid:    true,
				},
			},
		})
	}
	return items
}

// subtitle renders the configured fields for a task row.
func (a *App) subtitle(t task.Task, today time.Time) string {
	var bits []string
	for _, field := range a.cfg.Display.SubtitleFields {
		switch field {
		case "tags":
			if len(t.Tags) > 0 {
				bits = append(bits, "Tags: "+truncatedList(t.Tags, 4))
			}
		case "projects":
			if len(t.Projects) > 0 {
				clean := make([]string, 0, len(t.Projects))
				for i, p := range t.Projects {
					if i == 3 {
						break
					}
					clean = append(clean, strings.Trim(p, "[]"))
				}
				label := strings.Join(clean, ", ")
				if len(t.Projects) > 3 {
					label += "…"
				}
				bits = append(bits, "Projects: "+label)
			}
		case "due":
			if v := task.FormatRelativeDay(t.Due, today); v != "" {
				bits = append(bits, "Due: "+v)
			}
		case "scheduled":
			if v := task.FormatRelativeDay(t.Scheduled, today); v != "" {
				bits = append(bits, "Scheduled: "+v)
			}
		case "priority":
			if v := strings.TrimSpace(t.Priority); v != "" {
				bits = append(bits, "Priority: "+v)
			}
		case "status":
			if v := strings.TrimSpace(t.Status); v != "" {
				bits = append(bits, "Status: "+v)
			}
		}
	}
	return strings.Join(bits, " • ")
}

func truncatedList(values []string, limit int) string {
	shown := values
	if len(shown) > limit {
		shown = shown[:limit]
	}
	label := strings.Join(shown, ", ")
	if len(values) > limit {
		label += "…"
	}
	return label
}
