package ports

import "context"

// Task is a unit of best-effort background work.
type Task struct {
	// Name labels the task in logs and metrics.
	Name string
	// Key routes the task to a worker; tasks sharing a key run in order.
	Key string
	Run func(ctx context.Context) error
}

// TaskQueue accepts background work without blocking the caller.
type TaskQueue interface {
	// Enqueue reports false when the task was dropped.
	Enqueue(t Task) bool
}
