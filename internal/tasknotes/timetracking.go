package tasknotes

import (
	"context"
	"encoding/json"
	"net/http"
)

type activeSessionsData struct {
	ActiveSessions []struct {
		Task struct {
			ID       string   `json:"id"`
			Title    string   `json:"title"`
			Tags     []string `json:"tags"`
			Projects []string `json:"projects"`
			Priority string   `json:"priority"`
			Status   string   `json:"status"`
		} `json:"task"`
		Session struct {
			ElapsedMinutes *int `json:"elapsedMinutes"`
		} `json:"session"`
		ElapsedMinutes *int `json:"elapsedMinutes"`
	} `json:"activeSessions"`
}

// ActiveSessions returns the currently running time-tracking sessions. The
// server enforces a single active session, but the response shape allows
// several; callers should treat the first entry as authoritative.
func (c *Client) ActiveSessions(ctx context.Context) ([]ActiveSession, error) {
	data, err := c.do(ctx, "list active sessions", http.MethodGet, c.endpoint("time", "active"), nil, nil)
	if err != nil {
		return nil, err
	}

	var payload activeSessionsData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &APIError{Kind: ErrParse, Op: "list active sessions", Err: err}
	}

	sessions := make([]ActiveSession, 0, len(payload.ActiveSessions))
	for _, entry := range payload.ActiveSessions {
		s := ActiveSession{
			TaskID:   entry.Task.ID,
			Title:    entry.Task.Title,
			Tags:     cleanStrings(entry.Task.Tags),
			Projects: cleanStrings(entry.Task.Projects),
			Priority: entry.Task.Priority,
			Status:   entry.Task.Status,
		}
		elapsed := entry.ElapsedMinutes
		if elapsed == nil {
			elapsed = entry.Session.ElapsedMinutes
		}
		if elapsed != nil {
			s.ElapsedMinutes = *elapsed
			s.ElapsedKnown = true
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// StartTracking begins time tracking on the given task. The server may
// implicitly stop another session; callers must re-fetch tracking state
// rather than assuming the outcome.
func (c *Client) StartTracking(ctx context.Context, id string) error {
	_, err := c.do(ctx, "start tracking", http.MethodPost, c.endpoint("tasks", id, "time", "start"), nil, nil)
	return err
}

// StopTracking stops time tracking on the given task.
func (c *Client) StopTracking(ctx context.Context, id string) error {
	_, err := c.do(ctx, "stop tracking", http.MethodPost, c.endpoint("tasks", id, "time", "stop"), nil, nil)
	return err
}
