package tasknotes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskdeck/internal/logging"
)

const (
	defaultBaseURL     = "http://localhost:8080/api"
	defaultHTTPTimeout = 10 * time.Second
)

// Config describes the TaskNotes client configuration.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client wraps the TaskNotes REST API.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, &APIError{Kind: ErrParse, Op: "configure client", Err: err}
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		http:    client,
		logger:  logging.NewComponentLogger(cfg.Logger, "tasknotes"),
	}, nil
}

// endpoint joins path segments onto the base URL, percent-escaping each
// segment. Task identifiers are vault-relative file paths containing slashes,
// so they must travel as a single escaped segment.
func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL.String())
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

// envelope is the TaskNotes response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// do executes one API call and returns the envelope's data payload.
func (c *Client) do(ctx context.Context, op, method, endpoint string, query url.Values, body any) (json.RawMessage, error) {
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Kind: ErrParse, Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &APIError{Kind: ErrParse, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := classifyTransport(op, err)
		c.logger.Debug("request failed",
			logging.String("op", op),
			logging.String("kind", string(apiErr.Kind)),
			logging.Error(err))
		return nil, apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &APIError{Kind: ErrParse, Op: op, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{Kind: ErrHTTP, Op: op, Status: resp.StatusCode, Body: errorDetail(raw)}
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, &APIError{Kind: ErrParse, Op: op, Err: err}
		}
	}
	if env.Success != nil && !*env.Success {
		return nil, &APIError{Kind: ErrHTTP, Op: op, Status: resp.StatusCode, Body: errorDetail(raw)}
	}
	if env.Data != nil {
		return env.Data, nil
	}
	// Older servers return the payload without the envelope.
	return raw, nil
}

// errorDetail extracts a human-readable message from an error response body.
func errorDetail(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	detail := strings.TrimSpace(string(raw))
	if len(detail) > 500 {
		detail = detail[:500]
	}
	return detail
}
