// Package googletasks implements the service.Service interface using the
// Google Tasks API. All operations act on the user's default task list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/logging"
	"github.com/hfnukal/morotasks/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the per-call timeout when config sets none.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// ErrAuth is returned when Google rejects the stored token.
var ErrAuth = errors.New("token expired or revoked (run: morotasks login)")

// Client implements service.Service using Google Tasks API.
type Client struct {
	svc     *tasks.Service
	timeout time.Duration
	logger  *slog.Logger
}

// OAuthConfig reads oauth_client.json from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// LoadToken reads token.json from the config directory.
func LoadToken(cfg *config.Config) (*oauth2.Token, error) {
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	return &token, nil
}

// New creates a Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(cfg)
	if err != nil {
		return nil, err
	}

	// Token source refreshes automatically.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	c, err := NewWithHTTPClient(ctx, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if cfg.Timeout > 0 {
		c.timeout = cfg.Timeout
	}
	if logger != nil {
		c.logger = logger.With(slog.String("component", "googletasks"))
	}
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options, such as option.WithEndpoint, are passed to the API service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		svc:     svc,
		timeout: APITimeout,
		logger:  logging.Discard(),
	}, nil
}

// ListTasks returns every task of the default list, completed ones included.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	return c.list(ctx, true, func(service.Task) bool { return true })
}

// ListIncompleteTasks returns open tasks.
func (c *Client) ListIncompleteTasks(ctx context.Context) ([]service.Task, error) {
	return c.list(ctx, false, func(service.Task) bool { return true })
}

// ListCompletedTasks returns completed tasks.
func (c *Client) ListCompletedTasks(ctx context.Context) ([]service.Task, error) {
	return c.list(ctx, true, func(t service.Task) bool { return t.Completed })
}

func (c *Client) list(ctx context.Context, showCompleted bool, keep func(service.Task) bool) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Completed tasks are hidden once cleared in Google's own clients.
	call := c.svc.Tasks.List(DefaultListID).
		MaxResults(PageSize).
		ShowCompleted(showCompleted).
		ShowHidden(showCompleted).
		ShowDeleted(false)

	var result []service.Task
	err := call.Pages(ctx, func(resp *tasks.Tasks) error {
		for _, item := range resp.Items {
			if t := fromAPI(item); keep(t) {
				result = append(result, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	c.logger.Debug("listed tasks", "count", len(result), "show_completed", showCompleted)
	return result, nil
}

// CreateTask creates a task in the default list. The pending ID is dropped.
func (c *Client) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(DefaultListID, &tasks.Task{
		Title:  t.Text,
		Status: status(t.Completed),
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(created), nil
}

// UpdateTask patches title and status.
func (c *Client) UpdateTask(ctx context.Context, t service.Task) (service.Task, error) {
	return c.patch(ctx, t.ID, toPatch(&t.Text, t.Completed))
}

// SetCompleted patches only the status.
func (c *Client) SetCompleted(ctx context.Context, id service.ID, completed bool) (service.Task, error) {
	return c.patch(ctx, id, toPatch(nil, completed))
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id service.ID) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(DefaultListID, id.String()).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func (c *Client) patch(ctx context.Context, id service.ID, p *tasks.Task) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	updated, err := c.svc.Tasks.Patch(DefaultListID, id.String(), p).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(updated), nil
}

func toPatch(title *string, completed bool) *tasks.Task {
	p := &tasks.Task{Status: status(completed)}
	if title != nil {
		p.Title = *title
		// An empty title still has to reach the API.
		p.ForceSendFields = []string{"Title"}
	}
	if !completed {
		// Reopening requires clearing the completion timestamp.
		p.NullFields = []string{"Completed"}
	}
	return p
}

func fromAPI(t *tasks.Task) service.Task {
	return service.Task{
		ID:        service.ConfirmedID(t.Id),
		Text:      t.Title,
		Completed: t.Status == statusCompleted,
	}
}

func status(completed bool) string {
	if completed {
		return statusCompleted
	}
	return statusNeedsAction
}

// wrapError maps API errors onto the service sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuth
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", service.ErrNotFound, apiErr.Message)
		}
	}

	return err
}
