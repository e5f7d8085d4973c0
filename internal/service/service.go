package service

import "context"

// Service defines the interface for task backend operations.
// The store and commands only talk to a backend through this interface.
type Service interface {
	// ListTasks returns every task in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// ListIncompleteTasks returns tasks with Completed == false.
	ListIncompleteTasks(ctx context.Context) ([]Task, error)

	// ListCompletedTasks returns tasks with Completed == true.
	ListCompletedTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task. The ID of t is a placeholder; the returned
	// task carries the server-assigned ID.
	CreateTask(ctx context.Context, t Task) (Task, error)

	// UpdateTask replaces text and completion of an existing task.
	UpdateTask(ctx context.Context, t Task) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id ID) error

	// SetCompleted marks a task completed or incomplete.
	SetCompleted(ctx context.Context, id ID, completed bool) (Task, error)
}
