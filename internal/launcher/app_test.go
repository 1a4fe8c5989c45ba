package launcher

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"taskdeck/internal/config"
)

var testNow = time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeServer is an in-memory TaskNotes endpoint covering the routes the
// launcher exercises.
type fakeServer struct {
	mu       sync.Mutex
	tasks    []map[string]any
	sessions []map[string]any
	pomodoro map[string]any
	failAll  bool

	calls      []string
	lastCreate map[string]any
	lastUpdate map[string]any
}

func writeData(w http.ResponseWriter, data any) {
	payload, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    json.RawMessage(payload),
	})
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.EscapedPath()
	s.mu.Lock()
	s.calls = append(s.calls, r.Method+" "+path)
	failAll := s.failAll
	s.mu.Unlock()

	if failAll {
		http.Error(w, `{"error":"service down"}`, http.StatusInternalServerError)
		return
	}

	switch {
	case path == "/api/tasks" && r.Method == http.MethodGet:
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, map[string]any{"tasks": s.tasks})
	case path == "/api/tasks" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		title, _ := body["title"].(string)
		created := map[string]any{}
		for k, v := range body {
			created[k] = v
		}
		created["path"] = "notes/" + strings.ReplaceAll(strings.ToLower(title), " ", "-") + ".md"
		s.mu.Lock()
		s.tasks = append(s.tasks, created)
		s.lastCreate = body
		s.mu.Unlock()
		writeData(w, created)
	case path == "/api/time/active":
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, map[string]any{"activeSessions": s.sessions})
	case path == "/api/pomodoro/status":
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, s.pomodoro)
	case strings.HasPrefix(path, "/api/pomodoro/"):
		writeData(w, map[string]any{})
	case strings.HasPrefix(path, "/api/tasks/"):
		s.handleTask(w, r, strings.TrimPrefix(path, "/api/tasks/"))
	default:
		http.Error(w, `{"error":"no such route"}`, http.StatusNotFound)
	}
}

func (s *fakeServer) handleTask(w http.ResponseWriter, r *http.Request, rest string) {
	op := ""
	for _, suffix := range []string{"/toggle-status", "/archive", "/time/start", "/time/stop"} {
		if strings.HasSuffix(rest, suffix) {
			op = suffix
			rest = strings.TrimSuffix(rest, suffix)
			break
		}
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		http.Error(w, `{"error":"bad path"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.tasks {
		if t["path"] == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}
	tsk := s.tasks[idx]

	switch op {
	case "/toggle-status":
		completed, _ := tsk["completed"].(bool)
		tsk["completed"] = !completed
		writeData(w, tsk)
	case "/archive":
		archived, _ := tsk["archived"].(bool)
		tsk["archived"] = !archived
		writeData(w, tsk)
	case "/time/start", "/time/stop":
		writeData(w, map[string]any{})
	default:
		switch r.Method {
		case http.MethodGet:
			writeData(w, tsk)
		case http.MethodPut:
			var fields map[string]any
			_ = json.NewDecoder(r.Body).Decode(&fields)
			s.lastUpdate = fields
			for k, v := range fields {
				if v == nil {
					delete(tsk, k)
					continue
				}
				tsk[k] = v
			}
			writeData(w, tsk)
		case http.MethodDelete:
			s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
			writeData(w, map[string]any{})
		default:
			http.Error(w, `{"error":"bad method"}`, http.StatusMethodNotAllowed)
		}
	}
}

func (s *fakeServer) setFail(fail bool) {
	s.mu.Lock()
	s.failAll = fail
	s.mu.Unlock()
}

func (s *fakeServer) callCount(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func newTestApp(t *testing.T, srv *fakeServer) (*App, *testClock) {
	t.Helper()

	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)

	cfg := config.Default()
	cfg.API.BaseURL = hs.URL + "/api"
	cfg.API.FetchLimit = 50
	cfg.API.ReturnLimit = 5
	cfg.Cache.Dir = t.TempDir()

	app, err := New(&cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	clock := &testClock{now: testNow}
	app.WithClock(clock.Now)
	return app, clock
}

func decodeArg(t *testing.T, arg string) ActionRequest {
	t.Helper()
	var req ActionRequest
	if err := json.Unmarshal([]byte(arg), &req); err != nil {
		t.Fatalf("decode arg %q: %v", arg, err)
	}
	return req
}
