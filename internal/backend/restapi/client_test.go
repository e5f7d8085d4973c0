package restapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hfnukal/morotasks/internal/backend/restapi"
	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/server"
	"github.com/hfnukal/morotasks/internal/service"
	"github.com/hfnukal/morotasks/internal/store"
)

func newClient(t *testing.T) *restapi.Client {
	t.Helper()
	ts := httptest.NewServer(server.New(server.NewMemoryRepo(), nil).Handler())
	t.Cleanup(ts.Close)

	c, err := restapi.NewWithHTTPClient(ts.URL, ts.Client())
	require.NoError(t, err)
	return c
}

func TestClient_CreateAndList(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, service.Task{ID: service.PendingID(), Text: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID.String())
	assert.False(t, created.ID.IsPending())

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{created}, tasks)
}

func TestClient_ListEmpty(t *testing.T) {
	tasks, err := newClient(t).ListTasks(context.Background())

	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClient_ListScopes(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, service.Task{Text: "open"})
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, service.Task{Text: "done", Completed: true})
	require.NoError(t, err)

	open, err := c.ListIncompleteTasks(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "open", open[0].Text)

	done, err := c.ListCompletedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "done", done[0].Text)
}

func TestClient_UpdateSetCompletedDelete(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, service.Task{Text: "a"})
	require.NoError(t, err)

	updated, err := c.UpdateTask(ctx, service.Task{ID: created.ID, Text: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Text)

	completed, err := c.SetCompleted(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, completed.Completed)

	reopened, err := c.SetCompleted(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)

	require.NoError(t, c.DeleteTask(ctx, created.ID))

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClient_NotFound(t *testing.T) {
	c := newClient(t)

	err := c.DeleteTask(context.Background(), service.ConfirmedID("42"))
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var apiErr *restapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "task not found", apiErr.Message)
}

func TestClient_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c, err := restapi.NewWithHTTPClient(ts.URL, ts.Client())
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrNotFound)
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c, err := restapi.New(&config.Config{APIURL: ts.URL, Timeout: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = c.ListTasks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewWithHTTPClient_InvalidURL(t *testing.T) {
	_, err := restapi.NewWithHTTPClient("localhost", http.DefaultClient)
	assert.Error(t, err)
}

func newStubClient(t *testing.T, h http.HandlerFunc) *restapi.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := restapi.NewWithHTTPClient(ts.URL, ts.Client())
	require.NoError(t, err)
	return c
}

func TestClient_CreateEmptyBodyFails(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	_, err := c.CreateTask(context.Background(), service.Task{ID: service.PendingID(), Text: "buy milk"})
	assert.ErrorIs(t, err, restapi.ErrEmptyResponse)
}

func TestClient_CreateWithoutIDFails(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"text":"buy milk","completed":false}`))
	})

	_, err := c.CreateTask(context.Background(), service.Task{ID: service.PendingID(), Text: "buy milk"})
	assert.ErrorIs(t, err, restapi.ErrMissingID)
}

func TestClient_EmptyBodyKeepsOptimisticTask(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	st := store.New(c)

	_, err := st.AddText(context.Background(), "buy milk")
	require.Error(t, err)

	tasks := st.State().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Text)
	assert.True(t, tasks[0].ID.IsPending())
}

func TestClient_DeleteAcceptsEmptyBody(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.DeleteTask(context.Background(), service.ConfirmedID("7")))
}

func TestClient_UpdateEmptyBodyFails(t *testing.T) {
	c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.UpdateTask(context.Background(), service.Task{ID: service.ConfirmedID("7"), Text: "x"})
	assert.ErrorIs(t, err, restapi.ErrEmptyResponse)
}
