package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/exitcode"
	"github.com/hfnukal/morotasks/internal/service"
	"github.com/hfnukal/morotasks/internal/store"
	"github.com/hfnukal/morotasks/internal/tui"
)

// filterScope maps --filter values onto the listing the store loads.
// The names are the ones the terminal view accepts.
func filterScope(filter string) (store.Scope, error) {
	f, ok := tui.ParseFilter(filter)
	if !ok {
		return store.ScopeAll, fmt.Errorf("invalid filter: %s (want all, completed or incomplete)", filter)
	}
	switch f {
	case tui.FilterCompleted:
		return store.ScopeCompleted, nil
	case tui.FilterIncomplete:
		return store.ScopeIncomplete, nil
	default:
		return store.ScopeAll, nil
	}
}

func newStore(cfg *config.Config, svc service.Service, scope store.Scope) *store.Store {
	return store.New(svc,
		store.WithLogger(cfg.Logger),
		store.WithRollback(cfg.Rollback),
		store.WithScope(scope),
	)
}

// openStore loads the view selected by filter. On failure it reports the
// error and returns a nil store with the exit code.
func openStore(ctx context.Context, cfg *config.Config, svc service.Service, filter string, errOut io.Writer) (*store.Store, int) {
	scope, err := filterScope(filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, exitcode.UserError
	}

	st := newStore(cfg, svc, scope)
	if err := st.Load(ctx); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return nil, exitcode.BackendError
	}
	return st, exitcode.Success
}

// resolveTask parses the task number from args and finds it in the view
// selected by filter.
func resolveTask(ctx context.Context, cfg *config.Config, svc service.Service, filter string, args []string, errOut io.Writer) (*store.Store, service.Task, int) {
	num, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return nil, service.Task{}, exitcode.UserError
	}

	st, code := openStore(ctx, cfg, svc, filter, errOut)
	if st == nil {
		return nil, service.Task{}, code
	}

	tasks := st.State().Tasks
	if num > len(tasks) {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return nil, service.Task{}, exitcode.UserError
	}
	return st, tasks[num-1], exitcode.Success
}

// reportMutation prints the outcome of a store operation and returns the exit code.
func reportMutation(cfg *config.Config, err error, out, errOut io.Writer) int {
	switch {
	case err == nil:
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	case errors.Is(err, service.ErrNotFound), errors.Is(err, store.ErrTaskNotFound):
		fmt.Fprintf(errOut, "error: task not found: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
