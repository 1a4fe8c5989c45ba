package tasknotes

import (
	"context"
	"encoding/json"
	"net/http"
)

// Health checks the API health endpoint, returning nil when the server
// reports ok.
func (c *Client) Health(ctx context.Context) error {
	data, err := c.do(ctx, "health check", http.MethodGet, c.endpoint("health"), nil, nil)
	if err != nil {
		return err
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return &APIError{Kind: ErrParse, Op: "health check", Err: err}
	}
	if payload.Status != "ok" {
		return &APIError{Kind: ErrHTTP, Op: "health check", Body: "status " + payload.Status}
	}
	return nil
}

// Healthy reports whether the API is reachable and ready, swallowing the
// error detail for callers that only need a boolean.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.Health(ctx) == nil
}
