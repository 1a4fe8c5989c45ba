package tasknotes

import (
	"context"
	"encoding/json"
	"net/http"
)

type pomodoroData struct {
	IsRunning      bool `json:"isRunning"`
	TimeRemaining  int  `json:"timeRemaining"`
	TotalPomodoros int  `json:"totalPomodoros"`
	CurrentStreak  int  `json:"currentStreak"`
	CurrentSession *struct {
		Type      string `json:"type"`
		TaskID    string `json:"taskId"`
		TaskTitle string `json:"taskTitle"`
	} `json:"currentSession"`
}

// PomodoroStatus fetches the current pomodoro timer state.
func (c *Client) PomodoroStatus(ctx context.Context) (PomodoroStatus, error) {
	data, err := c.do(ctx, "pomodoro status", http.MethodGet, c.endpoint("pomodoro", "status"), nil, nil)
	if err != nil {
		return PomodoroStatus{}, err
	}

	var payload pomodoroData
	if err := json.Unmarshal(data, &payload); err != nil {
		return PomodoroStatus{}, &APIError{Kind: ErrParse, Op: "pomodoro status", Err: err}
	}

	status := PomodoroStatus{
		IsRunning:      payload.IsRunning,
		TimeRemaining:  payload.TimeRemaining,
		TotalPomodoros: payload.TotalPomodoros,
		CurrentStreak:  payload.CurrentStreak,
		SessionType:    "work",
	}
	if payload.CurrentSession != nil {
		status.HasSession = true
		status.IsPaused = !payload.IsRunning
		if payload.CurrentSession.Type != "" {
			status.SessionType = payload.CurrentSession.Type
		}
		status.TaskID = payload.CurrentSession.TaskID
		status.TaskTitle = payload.CurrentSession.TaskTitle
	}
	return status, nil
}

// StartPomodoro starts a pomodoro session, optionally bound to a task.
func (c *Client) StartPomodoro(ctx context.Context, taskID string) error {
	var body any
	if taskID != "" {
		body = map[string]any{"taskId": taskID}
	}
	_, err := c.do(ctx, "start pomodoro", http.MethodPost, c.endpoint("pomodoro", "start"), nil, body)
	return err
}

// StopPomodoro stops the current pomodoro session.
func (c *Client) StopPomodoro(ctx context.Context) error {
	_, err := c.do(ctx, "stop pomodoro", http.MethodPost, c.endpoint("pomodoro", "stop"), nil, nil)
	return err
}

// PausePomodoro pauses the current pomodoro session.
func (c *Client) PausePomodoro(ctx context.Context) error {
	_, err := c.do(ctx, "pause pomodoro", http.MethodPost, c.endpoint("pomodoro", "pause"), nil, nil)
	return err
}

// ResumePomodoro resumes a paused pomodoro session.
func (c *Client) ResumePomodoro(ctx context.Context) error {
	_, err := c.do(ctx, "resume pomodoro", http.MethodPost, c.endpoint("pomodoro", "resume"), nil, nil)
	return err
}
