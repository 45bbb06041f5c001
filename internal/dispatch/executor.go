package dispatch

import (
	"context"
	"time"

	"clipvault/internal/queue"
)

// ProgressFunc reports executor progress back to the queue store. Percent is
// clamped by the store; message replaces the task's status line.
type ProgressFunc func(percent float64, message string)

// Executor runs tasks of a single kind. Execute must honor ctx cancellation;
// a returned error fails the task with the error text.
type Executor interface {
	Execute(ctx context.Context, task queue.Task, progress ProgressFunc) error
	HealthCheck(ctx context.Context) error
}

// Registry maps task kinds to their executors. Tasks with an unregistered
// kind fail immediately.
type Registry map[queue.Kind]Executor

// Notifier receives the drain summary once per dispatch cycle.
type Notifier interface {
	QueueDrained(ctx context.Context, succeeded, failed int, duration time.Duration)
}
