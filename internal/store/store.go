package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hfnukal/morotasks/internal/service"
)

// ErrTaskNotFound is returned when an operation names a task that is not in
// the collection.
var ErrTaskNotFound = errors.New("task not found")

// Scope selects which backend listing a load uses.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeIncomplete
	ScopeCompleted
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRollback makes failed mutations undo their optimistic change.
// Off by default: a failed mutation leaves the optimistic state in place.
func WithRollback(enabled bool) Option {
	return func(s *Store) {
		s.rollback = enabled
	}
}

// WithScope selects the listing used by Load and Refresh.
func WithScope(scope Scope) Option {
	return func(s *Store) {
		s.scope = scope
	}
}

// Store is the single source of truth for the task collection.
type Store struct {
	svc      service.Service
	logger   *slog.Logger
	rollback bool
	scope    Scope

	mu    sync.Mutex
	state State
	// swapped maps temporary IDs to the server IDs that replaced them.
	swapped map[service.ID]service.ID
}

// New creates a Store backed by svc with an empty, not-started state.
func New(svc service.Service, opts ...Option) *Store {
	s := &Store{
		svc:    svc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "store"))
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies a to the state and returns the result.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	s.recordSwap(a)
	s.logger.Debug("dispatch", "action", fmt.Sprintf("%T", a), "tasks", len(s.state.Tasks))
	return s.state.clone()
}

func (s *Store) recordSwap(a Action) {
	var from, to service.ID
	switch a := a.(type) {
	case AddConfirmed:
		from, to = a.TempID, a.Task.ID
	case IDSwapped:
		from, to = a.Old, a.New
	default:
		return
	}
	if from == to || !from.IsPending() {
		return
	}
	if s.swapped == nil {
		s.swapped = make(map[service.ID]service.ID)
	}
	s.swapped[from] = to
}

// Resolve returns the server ID that replaced the temporary id, or id itself
// when it was never swapped.
func (s *Store) Resolve(id service.ID) service.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		next, ok := s.swapped[id]
		if !ok {
			return id
		}
		id = next
	}
}

// Load fetches the collection if no load has been triggered yet.
// Later calls are no-ops; use Refresh to reload.
func (s *Store) Load(ctx context.Context) error {
	if fetch := s.StartLoad(false); fetch != nil {
		return fetch(ctx)
	}
	return nil
}

// Refresh reloads the collection regardless of the current status.
func (s *Store) Refresh(ctx context.Context) error {
	return s.StartLoad(true)(ctx)
}

// StartLoad marks the collection as loading and returns the fetch to run.
// Without force it returns nil once a load has been triggered.
func (s *Store) StartLoad(force bool) Mutation {
	s.mu.Lock()
	if !force && s.state.Status != StatusNotStarted {
		s.mu.Unlock()
		return nil
	}
	s.state = Reduce(s.state, LoadStarted{})
	s.mu.Unlock()

	return s.fetch
}

func (s *Store) fetch(ctx context.Context) error {
	var (
		tasks []service.Task
		err   error
	)
	switch s.scope {
	case ScopeIncomplete:
		tasks, err = s.svc.ListIncompleteTasks(ctx)
	case ScopeCompleted:
		tasks, err = s.svc.ListCompletedTasks(ctx)
	default:
		tasks, err = s.svc.ListTasks(ctx)
	}
	if err != nil {
		s.logger.Warn("load failed", "error", err)
		s.Dispatch(LoadFailed{Err: err.Error()})
		return err
	}
	s.Dispatch(LoadSucceeded{Tasks: tasks})
	return nil
}

// Perform applies local immediately, then awaits remote. On success the
// action remote returns (if any) is dispatched. On failure the error is
// returned and, if the store has rollback enabled, undo is dispatched.
func (s *Store) Perform(ctx context.Context, local Action, remote func(context.Context) (Action, error), undo Action) error {
	if local != nil {
		s.Dispatch(local)
	}

	reconcile, err := remote(ctx)
	if err != nil {
		s.logger.Warn("mutation failed", "error", err)
		if s.rollback && undo != nil {
			s.Dispatch(undo)
		}
		return err
	}

	if reconcile != nil {
		s.Dispatch(reconcile)
	}
	return nil
}

// OptimisticAdd appends t to the collection.
func (s *Store) OptimisticAdd(t service.Task) {
	s.Dispatch(TaskAdded{Task: t})
}

// Add creates t on the backend and overwrites the optimistic copy with the
// server record.
func (s *Store) Add(ctx context.Context, t service.Task) (service.Task, error) {
	var created service.Task
	err := s.Perform(ctx, nil, s.createRemote(t, &created), nil)
	return created, err
}

// SwapID rewrites oldID to newID in place. Unknown oldID is a no-op.
func (s *Store) SwapID(oldID, newID service.ID) {
	s.Dispatch(IDSwapped{Old: oldID, New: newID})
}

// OptimisticUpdate overwrites the task with t.ID.
func (s *Store) OptimisticUpdate(t service.Task) {
	s.Dispatch(TaskUpdated{Task: t})
}

// Update sends t to the backend. The response is not merged.
func (s *Store) Update(ctx context.Context, t service.Task) error {
	return s.Perform(ctx, nil, s.updateRemote(t), nil)
}

// OptimisticComplete sets the completion flag of id.
func (s *Store) OptimisticComplete(id service.ID, completed bool) {
	s.Dispatch(CompletionSet{ID: id, Completed: completed})
}

// Complete sends the completion flag to the backend. The response is not merged.
func (s *Store) Complete(ctx context.Context, id service.ID, completed bool) error {
	return s.Perform(ctx, nil, s.completeRemote(id, completed), nil)
}

// OptimisticDelete removes id from the collection.
func (s *Store) OptimisticDelete(id service.ID) {
	s.Dispatch(TaskDeleted{ID: id})
}

// Delete deletes id on the backend and removes it again locally.
func (s *Store) Delete(ctx context.Context, id service.ID) error {
	return s.Perform(ctx, nil, s.deleteRemote(id), nil)
}

// Mutation is the network half of an operation whose local change has
// already been dispatched.
type Mutation func(context.Context) error

// begin dispatches local and returns the matching network half.
func (s *Store) begin(local Action, remote func(context.Context) (Action, error), undo Action) Mutation {
	s.Dispatch(local)
	return func(ctx context.Context) error {
		return s.Perform(ctx, nil, remote, undo)
	}
}

// StartAdd appends a task with a pending ID. The returned Mutation creates it
// on the backend and swaps in the server ID.
func (s *Store) StartAdd(text string) (service.Task, Mutation) {
	t, _, m := s.startAdd(text)
	return t, m
}

func (s *Store) startAdd(text string) (service.Task, *service.Task, Mutation) {
	t := service.Task{ID: service.PendingID(), Text: text}

	created := new(service.Task)
	confirm := s.begin(TaskAdded{Task: t}, s.createRemote(t, created), TaskDeleted{ID: t.ID})
	return t, created, func(ctx context.Context) error {
		if err := confirm(ctx); err != nil {
			return err
		}
		s.SwapID(t.ID, created.ID)
		return nil
	}
}

// AddText adds a new task with a pending ID, confirms it with the backend and
// swaps in the server ID. On failure the pending task is returned.
func (s *Store) AddText(ctx context.Context, text string) (service.Task, error) {
	t, created, m := s.startAdd(text)
	if err := m(ctx); err != nil {
		return t, err
	}
	return *created, nil
}

// StartUpdate overwrites text and completion of t.ID.
func (s *Store) StartUpdate(t service.Task) (Mutation, error) {
	prev, _, ok := s.State().Find(t.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, t.ID)
	}
	return s.begin(TaskUpdated{Task: t}, s.updateRemote(t), TaskUpdated{Task: prev}), nil
}

// UpdateTask replaces text and completion of t.ID optimistically and confirms
// with the backend.
func (s *Store) UpdateTask(ctx context.Context, t service.Task) error {
	m, err := s.StartUpdate(t)
	if err != nil {
		return err
	}
	return m(ctx)
}

// StartSetCompleted flips completion of id.
func (s *Store) StartSetCompleted(id service.ID, completed bool) (Mutation, error) {
	prev, _, ok := s.State().Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.begin(CompletionSet{ID: id, Completed: completed}, s.completeRemote(id, completed),
		CompletionSet{ID: id, Completed: prev.Completed}), nil
}

// SetCompleted flips completion of id optimistically and confirms with the
// backend.
func (s *Store) SetCompleted(ctx context.Context, id service.ID, completed bool) error {
	m, err := s.StartSetCompleted(id, completed)
	if err != nil {
		return err
	}
	return m(ctx)
}

// StartDelete removes id.
func (s *Store) StartDelete(id service.ID) (Mutation, error) {
	prev, i, ok := s.State().Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.begin(TaskDeleted{ID: id}, s.deleteRemote(id), TaskRestored{Task: prev, Index: i}), nil
}

// DeleteTask removes id optimistically and confirms with the backend.
func (s *Store) DeleteTask(ctx context.Context, id service.ID) error {
	m, err := s.StartDelete(id)
	if err != nil {
		return err
	}
	return m(ctx)
}

// StartCompleteAll marks every task in tasks completed. The returned Mutation
// runs all requests to completion and returns the first error.
func (s *Store) StartCompleteAll(tasks []service.Task) Mutation {
	var ms []Mutation
	for _, t := range tasks {
		if m, err := s.StartSetCompleted(t.ID, true); err == nil {
			ms = append(ms, m)
		}
	}
	return join(ms)
}

// CompleteAll marks every task in tasks completed. All requests run to
// completion; the first error is returned.
func (s *Store) CompleteAll(ctx context.Context, tasks []service.Task) error {
	return s.StartCompleteAll(tasks)(ctx)
}

// StartDeleteCompleted removes every completed task in the collection.
func (s *Store) StartDeleteCompleted() Mutation {
	var ms []Mutation
	for _, t := range s.State().Completed() {
		if m, err := s.StartDelete(t.ID); err == nil {
			ms = append(ms, m)
		}
	}
	return join(ms)
}

// DeleteCompleted deletes every completed task in the collection. All requests
// run to completion; the first error is returned.
func (s *Store) DeleteCompleted(ctx context.Context) error {
	return s.StartDeleteCompleted()(ctx)
}

// join runs ms concurrently. One failure does not cancel the others.
func join(ms []Mutation) Mutation {
	return func(ctx context.Context) error {
		var g errgroup.Group
		for _, m := range ms {
			g.Go(func() error {
				return m(ctx)
			})
		}
		return g.Wait()
	}
}

func (s *Store) createRemote(t service.Task, created *service.Task) func(context.Context) (Action, error) {
	return func(ctx context.Context) (Action, error) {
		c, err := s.svc.CreateTask(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("create task: %w", err)
		}
		*created = c
		return AddConfirmed{TempID: t.ID, Task: c}, nil
	}
}

func (s *Store) updateRemote(t service.Task) func(context.Context) (Action, error) {
	return func(ctx context.Context) (Action, error) {
		if _, err := s.svc.UpdateTask(ctx, t); err != nil {
			return nil, fmt.Errorf("update task %s: %w", t.ID, err)
		}
		return nil, nil
	}
}

func (s *Store) completeRemote(id service.ID, completed bool) func(context.Context) (Action, error) {
	return func(ctx context.Context) (Action, error) {
		if _, err := s.svc.SetCompleted(ctx, id, completed); err != nil {
			return nil, fmt.Errorf("set completion of %s: %w", id, err)
		}
		return nil, nil
	}
}

func (s *Store) deleteRemote(id service.ID) func(context.Context) (Action, error) {
	return func(ctx context.Context) (Action, error) {
		if err := s.svc.DeleteTask(ctx, id); err != nil {
			return nil, fmt.Errorf("delete task %s: %w", id, err)
		}
		return TaskDeleted{ID: id}, nil
	}
}
