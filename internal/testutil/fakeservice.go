// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"github.com/hfnukal/morotasks/internal/service"
)

// ErrNotFound is returned when a task is not found.
var ErrNotFound = service.ErrNotFound

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int

	// Error injection for testing
	ListTasksErr     error
	CreateTaskErr    error
	UpdateTaskErr    error
	DeleteTaskErr    error
	SetCompletedErr  error
	SetCompletedErrs map[string]error // task ID -> error

	// BeforeCall, if set, runs at the start of every call with the
	// operation name ("list", "create", "update", "delete", "complete").
	BeforeCall func(op string)

	// Calls records operation names in call order.
	Calls []string
}

// NewFakeService creates a new, empty FakeService. Server IDs start at 1.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:           1,
		SetCompletedErrs: make(map[string]error),
	}
}

// AddTask seeds a task with a confirmed ID.
func (f *FakeService) AddTask(id, text string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{
		ID:        service.ConfirmedID(id),
		Text:      text,
		Completed: completed,
	})
	if n, err := strconv.Atoi(id); err == nil && n >= f.nextID {
		f.nextID = n + 1
	}
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks...)
}

func (f *FakeService) record(op string) {
	if f.BeforeCall != nil {
		f.BeforeCall(op)
	}
	f.mu.Lock()
	f.Calls = append(f.Calls, op)
	f.mu.Unlock()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("list")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// ListIncompleteTasks implements service.Service.
func (f *FakeService) ListIncompleteTasks(ctx context.Context) ([]service.Task, error) {
	return f.listWhere(false)
}

// ListCompletedTasks implements service.Service.
func (f *FakeService) ListCompletedTasks(ctx context.Context) ([]service.Task, error) {
	return f.listWhere(true)
}

func (f *FakeService) listWhere(completed bool) ([]service.Task, error) {
	f.record("list")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	var out []service.Task
	for _, t := range f.Tasks() {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	f.record("create")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	created := service.Task{
		ID:        service.ConfirmedID(strconv.Itoa(f.nextID)),
		Text:      t.Text,
		Completed: t.Completed,
	}
	f.nextID++
	f.tasks = append(f.tasks, created)
	return created, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, t service.Task) (service.Task, error) {
	f.record("update")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i].Text = t.Text
			f.tasks[i].Completed = t.Completed
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id service.ID) error {
	f.record("delete")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SetCompleted implements service.Service.
func (f *FakeService) SetCompleted(ctx context.Context, id service.ID, completed bool) (service.Task, error) {
	f.record("complete")
	if f.SetCompletedErr != nil {
		return service.Task{}, f.SetCompletedErr
	}
	f.mu.RLock()
	err := f.SetCompletedErrs[id.String()]
	f.mu.RUnlock()
	if err != nil {
		return service.Task{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = completed
			return f.tasks[i], nil
		}
	}
	return service.Task{}, ErrNotFound
}
