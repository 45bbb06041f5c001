package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"clipvault/internal/logging"
	"clipvault/internal/queue"
)

// Dispatcher drives the queue: whenever pending tasks exist it runs exactly
// one worker goroutine that claims and executes them oldest-first. Executor
// errors and panics fail the task and the loop moves on; there is no retry.
type Dispatcher struct {
	store     *queue.Store
	executors Registry
	notifier  Notifier
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	running bool
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a dispatcher. notifier may be nil.
func New(store *queue.Store, executors Registry, notifier Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		store:     store,
		executors: executors,
		notifier:  notifier,
		logger:    logger.With(logging.String(logging.FieldComponent, "dispatcher")),
	}
}

// Start registers the dispatcher as a queue watcher and begins processing any
// tasks already pending. It does not block.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return errors.New("dispatcher already started")
	}
	d.baseCtx, d.cancel = context.WithCancel(ctx)
	d.started = true
	d.mu.Unlock()

	// The watch callback runs under the store lock, so it only flips the
	// running flag; the worker goroutine touches the store after the lock
	// is released.
	d.store.Watch(func(event queue.Event) {
		if event.Type == queue.EventEnqueued {
			d.kick()
		}
	})

	if d.store.PendingCount() > 0 {
		d.kick()
	}
	return nil
}

// Stop cancels the worker context and waits for the in-flight task to
// settle. Pending tasks stay pending.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	cancel := d.cancel
	d.started = false
	d.cancel = nil
	d.mu.Unlock()

	cancel()
	d.wg.Wait()
}

// Health runs every registered executor's health check and returns the
// failures keyed by kind.
func (d *Dispatcher) Health(ctx context.Context) map[queue.Kind]error {
	results := make(map[queue.Kind]error, len(d.executors))
	for kind, executor := range d.executors {
		results[kind] = executor.HealthCheck(ctx)
	}
	return results
}

// Kinds returns the task kinds with a registered executor.
func (d *Dispatcher) Kinds() []queue.Kind {
	kinds := make([]queue.Kind, 0, len(d.executors))
	for _, kind := range queue.AllKinds() {
		if _, ok := d.executors[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func (d *Dispatcher) kick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started || d.running {
		return
	}
	d.running = true
	d.wg.Add(1)
	go d.run(d.baseCtx)
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()

	start := time.Now()
	succeeded, failed := 0, 0

	for ctx.Err() == nil {
		task, ok := d.store.ClaimNext()
		if !ok {
			break
		}
		if d.execute(ctx, task) {
			succeeded++
		} else {
			failed++
		}
	}

	if succeeded+failed > 0 && ctx.Err() == nil && d.notifier != nil {
		d.notifier.QueueDrained(ctx, succeeded, failed, time.Since(start))
	}

	d.mu.Lock()
	d.running = false
	stopped := !d.started
	d.mu.Unlock()

	// Re-check after clearing the running flag: an enqueue that raced the
	// end of this cycle saw running=true and did not start a worker.
	if !stopped && d.store.PendingCount() > 0 {
		d.kick()
	}
}

// execute runs one task to a terminal state and reports success.
func (d *Dispatcher) execute(ctx context.Context, task queue.Task) bool {
	logger := d.logger.With(
		logging.String(logging.FieldTaskID, task.ID),
		logging.String(logging.FieldTaskKind, string(task.Kind)),
	)
	logger.Info("task started", logging.String(logging.FieldEventType, "task_start"))
	taskStart := time.Now()

	err := d.invoke(ctx, task)
	switch {
	case err == nil:
		if markErr := d.store.MarkCompleted(task.ID); markErr != nil {
			logger.Error("failed to record task completion", logging.Error(markErr))
			return false
		}
		logger.Info("task completed",
			logging.String(logging.FieldEventType, "task_complete"),
			logging.Duration("task_duration", time.Since(taskStart)),
		)
		return true
	case errors.Is(err, context.Canceled):
		if markErr := d.store.MarkFailed(task.ID, queue.DaemonStopReason); markErr != nil {
			logger.Error("failed to record shutdown failure", logging.Error(markErr))
		}
		logger.Debug("task interrupted by shutdown")
		return false
	default:
		if markErr := d.store.MarkFailed(task.ID, err.Error()); markErr != nil {
			logger.Error("failed to record task failure", logging.Error(markErr))
		}
		logger.Error("task failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "task_failed"),
			logging.Duration("task_duration", time.Since(taskStart)),
		)
		return false
	}
}

func (d *Dispatcher) invoke(ctx context.Context, task queue.Task) (err error) {
	executor, ok := d.executors[task.Kind]
	if !ok {
		return fmt.Errorf("no executor registered for task kind %q", task.Kind)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panic: %v", r)
		}
	}()
	progress := func(percent float64, message string) {
		if progressErr := d.store.SetProgress(task.ID, percent, message); progressErr != nil {
			d.logger.Debug("progress update dropped", logging.Error(progressErr))
		}
	}
	return executor.Execute(ctx, task, progress)
}
