package tasknotes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"taskdeck/internal/task"
)

// ListOptions narrows the task listing server-side where the API supports it.
type ListOptions struct {
	Limit     int
	Offset    int
	Status    string
	Priority  string
	Project   string
	Tag       string
	Overdue   *bool
	Completed *bool
	Archived  *bool
	DueBefore string
	DueAfter  string
	Sort      string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	setIfPresent(q, "status", o.Status)
	setIfPresent(q, "priority", o.Priority)
	setIfPresent(q, "project", o.Project)
	setIfPresent(q, "tag", o.Tag)
	setIfPresent(q, "due_before", o.DueBefore)
	setIfPresent(q, "due_after", o.DueAfter)
	setIfPresent(q, "sort", o.Sort)
	if o.Overdue != nil {
		q.Set("overdue", strconv.FormatBool(*o.Overdue))
	}
	if o.Completed != nil {
		q.Set("completed", strconv.FormatBool(*o.Completed))
	}
	if o.Archived != nil {
		q.Set("archived", strconv.FormatBool(*o.Archived))
	}
	return q
}

func setIfPresent(q url.Values, key, value string) {
	if strings.TrimSpace(value) != "" {
		q.Set(key, value)
	}
}

type taskListData struct {
	Tasks []json.RawMessage `json:"tasks"`
}

// ListTasks fetches tasks, preferring server-side filtering. When the server
// rejects the parameterized query (older versions), it falls back to a plain
// limit-only listing; connection and timeout failures are not retried.
func (c *Client) ListTasks(ctx context.Context, opts ListOptions) ([]task.Task, error) {
	data, err := c.do(ctx, "list tasks", http.MethodGet, c.endpoint("tasks"), opts.query(), nil)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Kind != ErrHTTP {
			return nil, err
		}
		fallback := url.Values{}
		if opts.Limit > 0 {
			fallback.Set("limit", strconv.Itoa(opts.Limit))
		}
		data, err = c.do(ctx, "list tasks", http.MethodGet, c.endpoint("tasks"), fallback, nil)
		if err != nil {
			return nil, err
		}
	}
	return decodeTaskList(data)
}

func decodeTaskList(data json.RawMessage) ([]task.Task, error) {
	var list taskListData
	if err := json.Unmarshal(data, &list); err != nil {
		// Some versions return the array directly.
		if err := json.Unmarshal(data, &list.Tasks); err != nil {
			return nil, &APIError{Kind: ErrParse, Op: "list tasks", Err: err}
		}
	}
	tasks := make([]task.Task, 0, len(list.Tasks))
	for _, raw := range list.Tasks {
		var p taskPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			continue // skip malformed entries rather than failing the listing
		}
		tasks = append(tasks, p.normalize())
	}
	return tasks, nil
}

// GetTask fetches a single task by its path identifier.
func (c *Client) GetTask(ctx context.Context, id string) (task.Task, error) {
	data, err := c.do(ctx, "get task", http.MethodGet, c.endpoint("tasks", id), nil, nil)
	if err != nil {
		return task.Task{}, err
	}
	return decodeTask("get task", data)
}

// CreateRequest carries the fields accepted by task creation. Only non-empty
// fields are sent.
type CreateRequest struct {
	Title        string
	Due          string
	Scheduled    string
	Priority     string
	Status       string
	Details      string
	Tags         []string
	Projects     []string
	TimeEstimate int
}

// CreateTask creates a new task. Projects are wrapped as Obsidian links
// ([[Name]]) because TaskNotes stores project references as note links.
func (c *Client) CreateTask(ctx context.Context, req CreateRequest) (task.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return task.Task{}, &APIError{Kind: ErrHTTP, Op: "create task", Body: "cannot create a task with a blank title"}
	}

	body := map[string]any{"title": title}
	if req.Due != "" {
		body["due"] = req.Due
	}
	if req.Scheduled != "" {
		body["scheduled"] = req.Scheduled
	}
	if req.Priority != "" {
		body["priority"] = req.Priority
	}
	if req.Status != "" {
		body["status"] = req.Status
	}
	if req.Details != "" {
		body["details"] = req.Details
	}
	if req.TimeEstimate > 0 {
		body["time_estimate"] = req.TimeEstimate
	}
	if tags := cleanStrings(req.Tags); len(tags) > 0 {
		body["tags"] = tags
	}
	if projects := ProjectLinks(req.Projects); len(projects) > 0 {
		body["projects"] = projects
	}

	data, err := c.do(ctx, "create task", http.MethodPost, c.endpoint("tasks"), nil, body)
	if err != nil {
		return task.Task{}, err
	}

	// Some versions nest the created task under data.task.
	var nested struct {
		Task json.RawMessage `json:"task"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && nested.Task != nil {
		data = nested.Task
	}
	return decodeTask("create task", data)
}

// ProjectLinks wraps plain project names as Obsidian links, leaving values
// that already carry brackets untouched.
func ProjectLinks(projects []string) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "[[") && strings.HasSuffix(p, "]]") {
			out = append(out, p)
			continue
		}
		out = append(out, "[["+p+"]]")
	}
	return out
}

// UpdateTask applies a partial update. Clearing a field is expressed by an
// explicit null value in fields.
func (c *Client) UpdateTask(ctx context.Context, id string, fields map[string]any) (task.Task, error) {
	data, err := c.do(ctx, "update task", http.MethodPut, c.endpoint("tasks", id), nil, fields)
	if err != nil {
		return task.Task{}, err
	}
	return decodeTask("update task", data)
}

// DeleteTask moves a task to the trash.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete task", http.MethodDelete, c.endpoint("tasks", id), nil, nil)
	return err
}

// ToggleStatus flips a task between open and completed, returning the task's
// new state.
func (c *Client) ToggleStatus(ctx context.Context, id string) (task.Task, error) {
	data, err := c.do(ctx, "toggle status", http.MethodPost, c.endpoint("tasks", id, "toggle-status"), nil, nil)
	if err != nil {
		return task.Task{}, err
	}
	return decodeTask("toggle status", data)
}

// ToggleArchive flips a task's archived flag, returning the new state.
func (c *Client) ToggleArchive(ctx context.Context, id string) (task.Task, error) {
	data, err := c.do(ctx, "toggle archive", http.MethodPost, c.endpoint("tasks", id, "archive"), nil, nil)
	if err != nil {
		return task.Task{}, err
	}
	return decodeTask("toggle archive", data)
}

func decodeTask(op string, data json.RawMessage) (task.Task, error) {
	var p taskPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return task.Task{}, &APIError{Kind: ErrParse, Op: op, Err: err}
	}
	return p.normalize(), nil
}
