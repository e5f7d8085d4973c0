package store

import (
	"github.com/hfnukal/morotasks/internal/service"
)

// Action is a state transition applied by Reduce.
type Action interface {
	isAction()
}

// LoadStarted moves the state to StatusLoading.
type LoadStarted struct{}

// LoadSucceeded replaces the collection with the fetched tasks.
type LoadSucceeded struct {
	Tasks []service.Task
}

// LoadFailed records a load error. The collection is left untouched.
type LoadFailed struct {
	Err string
}

// TaskAdded appends a task to the end of the collection.
type TaskAdded struct {
	Task service.Task
}

// AddConfirmed overwrites the task carrying TempID with the server record.
type AddConfirmed struct {
	TempID service.ID
	Task   service.Task
}

// IDSwapped rewrites Old to New in place.
type IDSwapped struct {
	Old service.ID
	New service.ID
}

// TaskUpdated overwrites the task with the same ID.
type TaskUpdated struct {
	Task service.Task
}

// CompletionSet flips the completion flag of one task.
type CompletionSet struct {
	ID        service.ID
	Completed bool
}

// TaskDeleted removes the task with ID.
type TaskDeleted struct {
	ID service.ID
}

// TaskRestored reinserts a deleted task at Index. Only used for rollback.
type TaskRestored struct {
	Task  service.Task
	Index int
}

func (LoadStarted) isAction()   {}
func (LoadSucceeded) isAction() {}
func (LoadFailed) isAction()    {}
func (TaskAdded) isAction()     {}
func (AddConfirmed) isAction()  {}
func (IDSwapped) isAction()     {}
func (TaskUpdated) isAction()   {}
func (CompletionSet) isAction() {}
func (TaskDeleted) isAction()   {}
func (TaskRestored) isAction()  {}

// Reduce returns the state that results from applying a to s.
// s is never modified.
func Reduce(s State, a Action) State {
	next := s.clone()

	switch a := a.(type) {
	case LoadStarted:
		next.Status = StatusLoading
	case LoadSucceeded:
		next.Tasks = append([]service.Task(nil), a.Tasks...)
		next.Status = StatusLoaded
		next.Err = ""
	case LoadFailed:
		next.Status = StatusFailed
		next.Err = a.Err
	case TaskAdded:
		next.Tasks = append(next.Tasks, a.Task)
	case AddConfirmed:
		if _, i, ok := next.Find(a.TempID); ok {
			next.Tasks[i] = a.Task
		}
	case IDSwapped:
		if _, i, ok := next.Find(a.Old); ok {
			next.Tasks[i].ID = a.New
		}
	case TaskUpdated:
		if _, i, ok := next.Find(a.Task.ID); ok {
			next.Tasks[i] = a.Task
		}
	case CompletionSet:
		if _, i, ok := next.Find(a.ID); ok {
			next.Tasks[i].Completed = a.Completed
		}
	case TaskDeleted:
		if _, i, ok := next.Find(a.ID); ok {
			next.Tasks = append(next.Tasks[:i], next.Tasks[i+1:]...)
		}
	case TaskRestored:
		if _, _, ok := next.Find(a.Task.ID); ok {
			break
		}
		i := a.Index
		if i < 0 || i > len(next.Tasks) {
			i = len(next.Tasks)
		}
		next.Tasks = append(next.Tasks[:i], append([]service.Task{a.Task}, next.Tasks[i:]...)...)
	}

	return next
}
