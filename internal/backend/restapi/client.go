// Package restapi implements the service.Service interface over the task HTTP API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/service"
)

var (
	// ErrEmptyResponse is returned when a 2xx response has no body where a
	// record was expected.
	ErrEmptyResponse = errors.New("empty response body")

	// ErrMissingID is returned when the server answers a create without an ID.
	ErrMissingID = errors.New("server returned task without id")
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps 404 responses to service.ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return service.ErrNotFound
	}
	return nil
}

// Client implements service.Service against the task HTTP API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a client for cfg.APIURL.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	c, err := NewWithHTTPClient(cfg.APIURL, http.DefaultClient)
	if err != nil {
		return nil, err
	}
	c.timeout = cfg.Timeout
	if logger != nil {
		c.logger = logger.With(slog.String("component", "restapi"))
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url: %s", baseURL)
	}
	return &Client{
		baseURL: u,
		http:    httpClient,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// ListTasks returns all tasks.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, http.MethodGet, nil, &tasks, "tasks"); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListIncompleteTasks returns all tasks filtered to incomplete ones.
// The API has no dedicated endpoint for them.
func (c *Client) ListIncompleteTasks(ctx context.Context) ([]service.Task, error) {
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	open := tasks[:0]
	for _, t := range tasks {
		if !t.Completed {
			open = append(open, t)
		}
	}
	return open, nil
}

// ListCompletedTasks returns completed tasks.
func (c *Client) ListCompletedTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, http.MethodGet, nil, &tasks, "tasks", "completed"); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task. The server assigns the ID.
func (c *Client) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	var created service.Task
	if err := c.do(ctx, http.MethodPost, t, &created, "tasks"); err != nil {
		return service.Task{}, err
	}
	if created.ID.IsZero() {
		return service.Task{}, fmt.Errorf("create task: %w", ErrMissingID)
	}
	return created, nil
}

// UpdateTask replaces an existing task.
func (c *Client) UpdateTask(ctx context.Context, t service.Task) (service.Task, error) {
	var updated service.Task
	if err := c.do(ctx, http.MethodPost, t, &updated, "tasks", t.ID.String()); err != nil {
		return service.Task{}, err
	}
	return updated, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id service.ID) error {
	var confirmation struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodDelete, nil, &confirmation, "tasks", id.String())
	if errors.Is(err, ErrEmptyResponse) {
		return nil
	}
	return err
}

// SetCompleted marks a task completed or incomplete.
func (c *Client) SetCompleted(ctx context.Context, id service.ID, completed bool) (service.Task, error) {
	action := "incomplete"
	if completed {
		action = "complete"
	}
	body := struct {
		Completed bool `json:"completed"`
	}{completed}

	var updated service.Task
	if err := c.do(ctx, http.MethodPost, body, &updated, "tasks", id.String(), action); err != nil {
		return service.Task{}, err
	}
	return updated, nil
}

func (c *Client) do(ctx context.Context, method string, in, out any, path ...string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL.JoinPath(path...)

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"url", u.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyResponse
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
