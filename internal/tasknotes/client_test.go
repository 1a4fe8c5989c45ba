package tasknotes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{BaseURL: srv.URL + "/api", Token: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func writeEnvelope(w http.ResponseWriter, data any) {
	payload, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    json.RawMessage(payload),
	})
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	return apiErr.Kind
}

func TestRequestHeadersAndPathEscaping(t *testing.T) {
	var gotPath, gotAuth, gotAccept string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		writeEnvelope(w, map[string]string{"title": "A", "path": "notes/a.md"})
	}))

	if _, err := client.GetTask(context.Background(), "notes/inbox/task one.md"); err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if gotPath != "/api/tasks/notes%2Finbox%2Ftask%20one.md" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Fatalf("accept = %q", gotAccept)
	}
}

func TestListTasksDecodesWrappedAndBareLists(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{"tasks": []map[string]string{
			{"title": "Alpha", "path": "notes/a.md"},
			{"title": "Beta", "path": "notes/b.md"},
		}})
	}))
	tasks, err := client.ListTasks(context.Background(), ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Title != "Alpha" {
		t.Fatalf("tasks = %+v", tasks)
	}

	bare := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, []map[string]string{{"title": "Gamma", "path": "notes/c.md"}})
	}))
	tasks, err = bare.ListTasks(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("ListTasks bare: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Gamma" {
		t.Fatalf("bare tasks = %+v", tasks)
	}
}

func TestListTasksFallsBackOnRejectedQuery(t *testing.T) {
	calls := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("sort") != "" {
			http.Error(w, `{"error":"unknown parameter"}`, http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("limit") != "25" {
			t.Errorf("fallback limit = %q", r.URL.Query().Get("limit"))
		}
		writeEnvelope(w, map[string]any{"tasks": []map[string]string{{"title": "A", "path": "notes/a.md"}}})
	}))

	completed := false
	tasks, err := client.ListTasks(context.Background(), ListOptions{
		Limit:     25,
		Sort:      "date_modified:desc",
		Completed: &completed,
	})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if calls != 2 {
		t.Fatalf("server calls = %d, want parameterized then fallback", calls)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %+v", tasks)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		}))
		_, err := client.GetTask(context.Background(), "notes/missing.md")
		if kindOf(t, err) != ErrHTTP {
			t.Fatalf("kind = %v", kindOf(t, err))
		}
		var apiErr *APIError
		errors.As(err, &apiErr)
		if apiErr.Status != http.StatusNotFound || apiErr.Body != "task not found" {
			t.Fatalf("error detail = %+v", apiErr)
		}
	})

	t.Run("success false envelope", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error":"vault locked"}`))
		}))
		_, err := client.GetTask(context.Background(), "notes/a.md")
		if kindOf(t, err) != ErrHTTP {
			t.Fatalf("kind = %v", kindOf(t, err))
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()
		client, err := New(Config{BaseURL: base})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		_, err = client.GetTask(context.Background(), "notes/a.md")
		if kindOf(t, err) != ErrConnection {
			t.Fatalf("kind = %v", kindOf(t, err))
		}
	})

	t.Run("timeout", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := client.GetTask(ctx, "notes/a.md")
		if kindOf(t, err) != ErrTimeout {
			t.Fatalf("kind = %v", kindOf(t, err))
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"data":{`))
		}))
		_, err := client.GetTask(context.Background(), "notes/a.md")
		if kindOf(t, err) != ErrParse {
			t.Fatalf("kind = %v", kindOf(t, err))
		}
	})
}

func TestCreateTask(t *testing.T) {
	var body map[string]any
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeEnvelope(w, map[string]any{"task": map[string]string{
			"title": "Buy boots", "path": "notes/buy-boots.md",
		}})
	}))

	created, err := client.CreateTask(context.Background(), CreateRequest{
		Title:    "  Buy boots  ",
		Due:      "2026-08-28",
		Priority: "High",
		Tags:     []string{"shopping", ""},
		Projects: []string{"Wardrobe", "[[Linked]]"},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.Path != "notes/buy-boots.md" {
		t.Fatalf("created = %+v", created)
	}

	if body["title"] != "Buy boots" || body["due"] != "2026-08-28" {
		t.Fatalf("body = %v", body)
	}
	if _, ok := body["scheduled"]; ok {
		t.Fatal("empty scheduled field sent")
	}
	wantProjects := []any{"[[Wardrobe]]", "[[Linked]]"}
	if !reflect.DeepEqual(body["projects"], wantProjects) {
		t.Fatalf("projects = %v, want %v", body["projects"], wantProjects)
	}
	if !reflect.DeepEqual(body["tags"], []any{"shopping"}) {
		t.Fatalf("tags = %v", body["tags"])
	}
}

func TestCreateTaskRejectsBlankTitle(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached the server")
	}))
	if _, err := client.CreateTask(context.Background(), CreateRequest{Title: "   "}); err == nil {
		t.Fatal("blank title accepted")
	}
}

func TestToggleAndDeleteEndpoints(t *testing.T) {
	var seen []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.EscapedPath())
		writeEnvelope(w, map[string]any{"title": "A", "path": "notes/a.md", "completed": true})
	}))

	toggled, err := client.ToggleStatus(context.Background(), "notes/a.md")
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if !toggled.Completed {
		t.Fatalf("toggled = %+v", toggled)
	}
	if _, err := client.ToggleArchive(context.Background(), "notes/a.md"); err != nil {
		t.Fatalf("ToggleArchive: %v", err)
	}
	if err := client.DeleteTask(context.Background(), "notes/a.md"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	want := []string{
		"POST /api/tasks/notes%2Fa.md/toggle-status",
		"POST /api/tasks/notes%2Fa.md/archive",
		"DELETE /api/tasks/notes%2Fa.md",
	}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("requests = %v, want %v", seen, want)
	}
}

func TestUpdateTaskSendsExplicitNull(t *testing.T) {
	var raw []byte
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		writeEnvelope(w, map[string]string{"title": "A", "path": "notes/a.md"})
	}))

	if _, err := client.UpdateTask(context.Background(), "notes/a.md", map[string]any{"scheduled": nil}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	if string(body["scheduled"]) != "null" {
		t.Fatalf("scheduled = %s, want explicit null", body["scheduled"])
	}
}

func TestPayloadNormalization(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{
			"id":     "notes/legacy.md",
			"title":  "Legacy",
			"status": "done",
		}) // no path, no completed flag
	}))
	got, err := client.GetTask(context.Background(), "notes/legacy.md")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Path != "notes/legacy.md" {
		t.Fatalf("path fallback = %q", got.Path)
	}
	if !got.Completed {
		t.Fatal("completed not inferred from status")
	}
}
