package launcher

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func mustPayload(t *testing.T, req ActionRequest) string {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	return string(data)
}

func TestActRejectsBadPayloads(t *testing.T) {
	app, _ := newTestApp(t, &fakeServer{})

	if _, err := app.Act(context.Background(), ""); err == nil {
		t.Fatal("empty payload accepted")
	}
	if _, err := app.Act(context.Background(), "{not json"); err == nil {
		t.Fatal("malformed payload accepted")
	}
	if _, err := app.Act(context.Background(), `{"action":"explode"}`); err == nil {
		t.Fatal("unknown action accepted")
	}
}

func TestActCreateAppliesMetadata(t *testing.T) {
	srv := &fakeServer{}
	app, _ := newTestApp(t, srv)

	notice, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "create",
		Text:   "Buy milk",
		Meta: &CreateMeta{
			Scheduled: "2026-08-27",
			Priority:  "High",
			Tags:      []string{"groceries"},
		},
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Task created" || notice.Message != "Buy milk" {
		t.Fatalf("notice = %+v", notice)
	}
	if srv.lastCreate["scheduled"] != "2026-08-27" || srv.lastCreate["priority"] != "High" {
		t.Fatalf("create body = %v", srv.lastCreate)
	}
}

func TestActCreateVerbatimSkipsMetadata(t *testing.T) {
	srv := &fakeServer{}
	app, _ := newTestApp(t, srv)

	_, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action:   "create",
		Text:     "Pay rent due friday p1",
		Verbatim: true,
		Meta:     &CreateMeta{Due: "2026-08-28", Priority: "High"},
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if srv.lastCreate["title"] != "Pay rent due friday p1" {
		t.Fatalf("title = %v", srv.lastCreate["title"])
	}
	if _, ok := srv.lastCreate["due"]; ok {
		t.Fatalf("verbatim create sent metadata: %v", srv.lastCreate)
	}
}

func TestActCreateInvalidatesTaskCache(t *testing.T) {
	srv := &fakeServer{tasks: sampleTasks()}
	app, _ := newTestApp(t, srv)

	if _, err := app.Search(context.Background(), ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	listCalls := srv.callCount("GET /api/tasks")

	if _, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "create", Text: "New thing",
	})); err != nil {
		t.Fatalf("Act: %v", err)
	}

	// The next read must refetch rather than serve the stale snapshot.
	feed, err := app.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search after create: %v", err)
	}
	if srv.callCount("GET /api/tasks") != listCalls+1 {
		t.Fatal("search after create served the old cache entry")
	}
	found := false
	for _, item := range feed.Items {
		if item.Title == "New thing" {
			found = true
		}
	}
	if !found {
		t.Fatalf("created task missing from feed: %+v", feed.Items)
	}
}

func TestActToggleComplete(t *testing.T) {
	srv := &fakeServer{tasks: sampleTasks()}
	app, _ := newTestApp(t, srv)

	notice, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "toggle_complete", Path: "notes/alpha.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Task completed" {
		t.Fatalf("notice = %+v", notice)
	}

	notice, err = app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "toggle_complete", Path: "notes/alpha.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Task reopened" {
		t.Fatalf("notice = %+v", notice)
	}
}

func TestActToggleSchedule(t *testing.T) {
	srv := &fakeServer{tasks: sampleTasks()}
	app, _ := newTestApp(t, srv)

	// Beta is scheduled: toggling clears with an explicit null.
	notice, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "toggle_schedule", Path: "notes/beta.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Schedule cleared" {
		t.Fatalf("notice = %+v", notice)
	}
	if v, ok := srv.lastUpdate["scheduled"]; !ok || v != nil {
		t.Fatalf("update body = %v", srv.lastUpdate)
	}

	// Alpha has no schedule: toggling sets today.
	notice, err = app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "toggle_schedule", Path: "notes/alpha.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Task scheduled" || !strings.Contains(notice.Message, "2026-08-26") {
		t.Fatalf("notice = %+v", notice)
	}
	if srv.lastUpdate["scheduled"] != "2026-08-26" {
		t.Fatalf("update body = %v", srv.lastUpdate)
	}
}

func TestActToggleArchive(t *testing.T) {
	srv := &fakeServer{tasks: sampleTasks()}
	app, _ := newTestApp(t, srv)

	notice, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "toggle_archive", Path: "notes/alpha.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Task archived" {
		t.Fatalf("notice = %+v", notice)
	}
}

func TestActToggleTrackingStartsAndStopsOthers(t *testing.T) {
	srv := &fakeServer{
		tasks: sampleTasks(),
		sessions: []map[string]any{{
			"task": map[string]any{"id": "notes/beta.md", "title": "Beta review"},
		}},
	}
	app, _ := newTestApp(t, srv)

	// Starting alpha while beta is tracked stops beta first.
	notice, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "toggle_tracking", Path: "notes/alpha.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Tracking started" {
		t.Fatalf("notice = %+v", notice)
	}
	if srv.callCount("POST /api/tasks/notes%2Fbeta.md/time/stop") != 1 {
		t.Fatal("previous session not stopped")
	}
	if srv.callCount("POST /api/tasks/notes%2Falpha.md/time/start") != 1 {
		t.Fatal("new session not started")
	}

	// Toggling the tracked task itself stops it.
	notice, err = app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "toggle_tracking", Path: "notes/beta.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Tracking stopped" {
		t.Fatalf("notice = %+v", notice)
	}
	if srv.callCount("POST /api/tasks/notes%2Fbeta.md/time/start") != 0 {
		t.Fatal("stop toggled into a start")
	}
}

func TestActStopTrackingRequiresActiveSession(t *testing.T) {
	srv := &fakeServer{tasks: sampleTasks()}
	app, _ := newTestApp(t, srv)

	notice, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "stop_tracking", Path: "notes/alpha.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if !strings.Contains(notice.Message, "No active tracking session") {
		t.Fatalf("notice = %+v", notice)
	}
	if srv.callCount("POST /api/tasks/notes%2Falpha.md/time/stop") != 0 {
		t.Fatal("stop sent without an active session")
	}
}

func TestActDelete(t *testing.T) {
	srv := &fakeServer{tasks: sampleTasks()}
	app, _ := newTestApp(t, srv)

	notice, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "delete", Path: "notes/alpha.md", Title: "Alpha report",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if notice.Title != "Task deleted" || !strings.Contains(notice.Message, "Alpha report") {
		t.Fatalf("notice = %+v", notice)
	}
	if srv.callCount("DELETE /api/tasks/notes%2Falpha.md") != 1 {
		t.Fatal("delete request missing")
	}
}

func TestActOpen(t *testing.T) {
	app, _ := newTestApp(t, &fakeServer{})

	t.Setenv("OBSIDIAN_VAULT_ID", "")
	t.Setenv("OBSIDIAN_VAULT", "My Vault")
	notice, err := app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "open", Path: "notes/a task.md",
	}))
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	want := "obsidian://open?vault=My+Vault&file=notes%2Fa+task.md"
	if notice.OpenURL != want {
		t.Fatalf("open url = %q, want %q", notice.OpenURL, want)
	}

	t.Setenv("OBSIDIAN_VAULT", "")
	notice, err = app.Act(context.Background(), mustPayload(t, ActionRequest{
		Action: "open", Path: "notes/a.md",
	}))
	if err != nil {
		t.Fatalf("Act without vault: %v", err)
	}
	if notice.OpenURL != "" || !strings.Contains(notice.Message, "OBSIDIAN_VAULT") {
		t.Fatalf("notice = %+v", notice)
	}
}

func TestActPomodoroOps(t *testing.T) {
	srv := &fakeServer{}
	app, _ := newTestApp(t, srv)

	cases := map[string]string{
		"pomodoro_start":  "POST /api/pomodoro/start",
		"pomodoro_stop":   "POST /api/pomodoro/stop",
		"pomodoro_pause":  "POST /api/pomodoro/pause",
		"pomodoro_resume": "POST /api/pomodoro/resume",
	}
	for action, call := range cases {
		if _, err := app.Act(context.Background(), mustPayload(t, ActionRequest{Action: action})); err != nil {
			t.Fatalf("Act %s: %v", action, err)
		}
		if srv.callCount(call) != 1 {
			t.Fatalf("%s request missing", action)
		}
	}
}
