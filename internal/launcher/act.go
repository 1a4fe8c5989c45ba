package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"taskdeck/internal/logging"
	"taskdeck/internal/tasknotes"
)

// ActionRequest is the JSON payload attached to feed rows. The shell passes
// it back verbatim when the user picks an action.
type ActionRequest struct {
	Action   string      `json:"action"`
	Text     string      `json:"text,omitempty"`
	Raw      string      `json:"raw,omitempty"`
	Path     string      `json:"path,omitempty"`
	Title    string      `json:"title,omitempty"`
	Verbatim bool        `json:"verbatim,omitempty"`
	Open     bool        `json:"open,omitempty"`
	Meta     *CreateMeta `json:"meta,omitempty"`
}

// CreateMeta carries the structured fields extracted by the NLP parser.
type CreateMeta struct {
	Scheduled string   `json:"scheduled,omitempty"`
	Due       string   `json:"due,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Projects  []string `json:"projects,omitempty"`
	Details   string   `json:"details,omitempty"`
}

// Notice is the user-visible outcome of an action. OpenURL, when set, is a
// URI the shell should hand to the system opener.
type Notice struct {
	Title   string
	Message string
	OpenURL string
}

// Act decodes and executes an action payload. Mutations invalidate the
// cached task views so the next read reflects the change.
func (a *App) Act(ctx context.Context, payload string) (Notice, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Notice{}, fmt.Errorf("empty action payload")
	}
	var req ActionRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return Notice{}, fmt.Errorf("decode action payload: %w", err)
	}

	a.logger.Debug("dispatching action", logging.String("action", req.Action))

	switch req.Action {
	case "create":
		return a.actCreate(ctx, req)
	case "open":
		return a.actOpen(req)
	case "toggle_complete":
		return a.actToggleComplete(ctx, req)
	case "toggle_schedule":
		return a.actToggleSchedule(ctx, req)
	case "toggle_archive":
		return a.actToggleArchive(ctx, req)
	case "toggle_tracking":
		return a.actToggleTracking(ctx, req)
	case "stop_tracking":
		return a.actStopTracking(ctx, req)
	case "delete":
		return a.actDelete(ctx, req)
	case "pomodoro_start":
		return a.actPomodoro(ctx, "start", req.Path)
	case "pomodoro_stop":
		return a.actPomodoro(ctx, "stop", "")
	case "pomodoro_pause":
		return a.actPomodoro(ctx, "pause", "")
	case "pomodoro_resume":
		return a.actPomodoro(ctx, "resume", "")
	default:
		return Notice{}, fmt.Errorf("unknown action %q", req.Action)
	}
}

func (a *App) actCreate(ctx context.Context, req ActionRequest) (Notice, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Notice{}, fmt.Errorf("create: no title provided")
	}

	create := tasknotes.CreateRequest{Title: text}
	if !req.Verbatim && req.Meta != nil {
		create.Due = req.Meta.Due
		create.Scheduled = req.Meta.Scheduled
		create.Priority = req.Meta.Priority
		create.Tags = req.Meta.Tags
		create.Projects = req.Meta.Projects
		create.Details = strings.TrimSpace(req.Meta.Details)
	}

	created, err := a.client.CreateTask(ctx, create)
	if err != nil {
		return Notice{}, fmt.Errorf("create task: %w", err)
	}
	a.invalidateTaskCaches()

	notice := Notice{Title: "Task created", Message: created.Title}
	if notice.Message == "" {
		notice.Message = text
	}
	if req.Open {
		notice.OpenURL = obsidianURL(created.Path)
	}
	return notice, nil
}

func (a *App) actOpen(req ActionRequest) (Notice, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return Notice{}, fmt.Errorf("open: no task path")
	}
	openURL := obsidianURL(path)
	if openURL == "" {
		return Notice{
			Title:   "TaskNotes",
			Message: "Set OBSIDIAN_VAULT (name) or OBSIDIAN_VAULT_ID to enable opening tasks.",
		}, nil
	}
	return Notice{Title: "Opening task", Message: path, OpenURL: openURL}, nil
}

func (a *App) actToggleComplete(ctx context.Context, req ActionRequest) (Notice, error) {
	id := strings.TrimSpace(req.Path)
	if id == "" {
		return Notice{}, fmt.Errorf("toggle complete: no task path")
	}
	updated, err := a.client.ToggleStatus(ctx, id)
	if err != nil {
		return Notice{}, fmt.Errorf("toggle status: %w", err)
	}
	a.invalidateTaskCaches()
	if updated.IsCompleted() {
		return Notice{Title: "Task completed", Message: "Marked as done"}, nil
	}
	return Notice{Title: "Task reopened", Message: "Marked as open"}, nil
}

func (a *App) actToggleSchedule(ctx context.Context, req ActionRequest) (Notice, error) {
	id := strings.TrimSpace(req.Path)
	if id == "" {
		return Notice{}, fmt.Errorf("toggle schedule: no task path")
	}
	current, err := a.client.GetTask(ctx, id)
	if err != nil {
		return Notice{}, fmt.Errorf("fetch task: %w", err)
	}
	if strings.TrimSpace(current.Scheduled) != "" {
		if _, err := a.client.UpdateTask(ctx, id, map[string]any{"scheduled": nil}); err != nil {
			return Notice{}, fmt.Errorf("clear schedule: %w", err)
		}
		a.invalidateTaskCaches()
		return Notice{Title: "Schedule cleared", Message: "Removed scheduled date"}, nil
	}
	today := a.now().Format("2006-01-02")
	if _, err := a.client.UpdateTask(ctx, id, map[string]any{"scheduled": today}); err != nil {
		return Notice{}, fmt.Errorf("schedule task: %w", err)
	}
	a.invalidateTaskCaches()
	return Notice{Title: "Task scheduled", Message: "Scheduled for today (" + today + ")"}, nil
}

func (a *App) actToggleArchive(ctx context.Context, req ActionRequest) (Notice, error) {
	id := strings.TrimSpace(req.Path)
	if id == "" {
		return Notice{}, fmt.Errorf("toggle archive: no task path")
	}
	updated, err := a.client.ToggleArchive(ctx, id)
	if err != nil {
		return Notice{}, fmt.Errorf("toggle archive: %w", err)
	}
	a.invalidateTaskCaches()
	if updated.IsArchived() {
		return Notice{Title: "Task archived", Message: "Moved to archive"}, nil
	}
	return Notice{Title: "Task unarchived", Message: "Restored from archive"}, nil
}

// actToggleTracking enforces a single active session: starting a task stops
// whatever was tracked before. Current state is re-fetched rather than
// trusted from the feed, since another invocation may have changed it.
func (a *App) actToggleTracking(ctx context.Context, req ActionRequest) (Notice, error) {
	id := strings.TrimSpace(req.Path)
	if id == "" {
		return Notice{}, fmt.Errorf("toggle tracking: no task path")
	}
	sessions, err := a.client.ActiveSessions(ctx)
	if err != nil {
		return Notice{}, fmt.Errorf("fetch active sessions: %w", err)
	}

	if len(sessions) > 0 && sessions[0].TaskID == id {
		if err := a.client.StopTracking(ctx, id); err != nil {
			return Notice{}, fmt.Errorf("stop tracking: %w", err)
		}
		a.invalidateSessionCaches()
		return Notice{Title: "Tracking stopped", Message: "Stopped tracking this task."}, nil
	}

	if len(sessions) > 0 {
		if err := a.client.StopTracking(ctx, sessions[0].TaskID); err != nil {
			return Notice{}, fmt.Errorf("stop previous tracking: %w", err)
		}
	}
	if err := a.client.StartTracking(ctx, id); err != nil {
		return Notice{}, fmt.Errorf("start tracking: %w", err)
	}
	a.invalidateSessionCaches()
	return Notice{Title: "Tracking started", Message: "Now tracking this task."}, nil
}

func (a *App) actStopTracking(ctx context.Context, req ActionRequest) (Notice, error) {
	id := strings.TrimSpace(req.Path)
	if id == "" {
		return Notice{}, fmt.Errorf("stop tracking: no task path")
	}
	sessions, err := a.client.ActiveSessions(ctx)
	if err != nil {
		return Notice{}, fmt.Errorf("fetch active sessions: %w", err)
	}
	if len(sessions) == 0 || sessions[0].TaskID != id {
		return Notice{Title: "TaskNotes", Message: "No active tracking session for this task."}, nil
	}
	if err := a.client.StopTracking(ctx, id); err != nil {
		return Notice{}, fmt.Errorf("stop tracking: %w", err)
	}
	a.invalidateSessionCaches()
	return Notice{Title: "Tracking stopped", Message: "Stopped active time tracking."}, nil
}

func (a *App) actDelete(ctx context.Context, req ActionRequest) (Notice, error) {
	id := strings.TrimSpace(req.Path)
	if id == "" {
		return Notice{}, fmt.Errorf("delete: no task path")
	}
	if err := a.client.DeleteTask(ctx, id); err != nil {
		return Notice{}, fmt.Errorf("delete task: %w", err)
	}
	a.invalidateTaskCaches()
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "this task"
	}
	return Notice{Title: "Task deleted", Message: "\"" + title + "\" moved to trash."}, nil
}

func (a *App) actPomodoro(ctx context.Context, op, taskID string) (Notice, error) {
	var err error
	var notice Notice
	switch op {
	case "start":
		err = a.client.StartPomodoro(ctx, taskID)
		notice = Notice{Title: "Pomodoro started", Message: "Focus session running."}
	case "stop":
		err = a.client.StopPomodoro(ctx)
		notice = Notice{Title: "Pomodoro stopped", Message: "Session ended."}
	case "pause":
		err = a.client.PausePomodoro(ctx)
		notice = Notice{Title: "Pomodoro paused", Message: "Take a breather."}
	case "resume":
		err = a.client.ResumePomodoro(ctx)
		notice = Notice{Title: "Pomodoro resumed", Message: "Back to it."}
	}
	if err != nil {
		return Notice{}, fmt.Errorf("pomodoro %s: %w", op, err)
	}
	if cerr := a.pomodoro.Invalidate(); cerr != nil {
		a.logger.Debug("pomodoro cache invalidation", logging.Error(cerr))
	}
	return notice, nil
}

// invalidateSessionCaches drops tracking-related snapshots after a tracking
// mutation; the task list itself is unaffected.
func (a *App) invalidateSessionCaches() {
	if err := a.session.Invalidate(); err != nil {
		a.logger.Debug("session cache invalidation", logging.Error(err))
	}
	if err := a.detail.Invalidate(); err != nil {
		a.logger.Debug("detail cache invalidation", logging.Error(err))
	}
}

// obsidianURL builds the obsidian:// URI for a vault-relative path, or ""
// when no vault is configured in the environment.
func obsidianURL(path string) string {
	vault := strings.TrimSpace(os.Getenv("OBSIDIAN_VAULT_ID"))
	if vault == "" {
		vault = strings.TrimSpace(os.Getenv("OBSIDIAN_VAULT"))
	}
	if vault == "" || strings.TrimSpace(path) == "" {
		return ""
	}
	return "obsidian://open?vault=" + url.QueryEscape(vault) + "&file=" + url.QueryEscape(path)
}
