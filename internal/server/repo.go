package server

import (
	"context"
	"strconv"
	"sync"

	"github.com/hfnukal/morotasks/internal/service"
)

// MemoryRepo keeps tasks in insertion order and assigns sequential IDs.
type MemoryRepo struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1}
}

// List returns every task; with onlyCompleted set, only completed ones.
func (r *MemoryRepo) List(ctx context.Context, onlyCompleted bool) []service.Task {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]service.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if onlyCompleted && !t.Completed {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Create stores a new task under the next server ID. Any ID on t is ignored.
func (r *MemoryRepo) Create(ctx context.Context, text string, completed bool) service.Task {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	t := service.Task{
		ID:        service.ConfirmedID(strconv.Itoa(r.nextID)),
		Text:      text,
		Completed: completed,
	}
	r.nextID++
	r.tasks = append(r.tasks, t)
	return t
}

// Update replaces text and completion of id.
func (r *MemoryRepo) Update(ctx context.Context, id, text string, completed bool) (service.Task, error) {
	return r.modify(ctx, id, func(t *service.Task) {
		t.Text = text
		t.Completed = completed
	})
}

// SetCompleted changes only the completion flag of id.
func (r *MemoryRepo) SetCompleted(ctx context.Context, id string, completed bool) (service.Task, error) {
	return r.modify(ctx, id, func(t *service.Task) {
		t.Completed = completed
	})
}

// Delete removes id.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return service.ErrNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}

func (r *MemoryRepo) modify(ctx context.Context, id string, fn func(*service.Task)) (service.Task, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return service.Task{}, service.ErrNotFound
	}
	fn(&r.tasks[i])
	return r.tasks[i], nil
}

func (r *MemoryRepo) indexOf(id string) int {
	for i, t := range r.tasks {
		if t.ID.String() == id {
			return i
		}
	}
	return -1
}
