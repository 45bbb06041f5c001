package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"clipvault/internal/config"
	"clipvault/internal/dispatch"
	"clipvault/internal/importer"
	"clipvault/internal/library"
	"clipvault/internal/logging"
	"clipvault/internal/notifications"
	"clipvault/internal/queue"
)

// Daemon owns the processing services and enforces single-instance execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	library    *library.Store
	queue      *queue.Store
	dispatcher *dispatch.Dispatcher
	notifier   notifications.Service
	planner    *importer.Planner

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// ExecutorHealth reports readiness of one task kind's executor.
type ExecutorHealth struct {
	Kind   queue.Kind
	Ready  bool
	Detail string
}

// Status is a point-in-time snapshot of the daemon.
type Status struct {
	Running    bool
	PID        int
	LockPath   string
	LogPath    string
	SocketPath string
	Database   string
	Queue      queue.Counts
	Current    *queue.Task
	Executors  []ExecutorHealth
	Library    library.Stats
}

// New assembles a daemon from its already-constructed services.
func New(cfg *config.Config, store *library.Store, q *queue.Store, dispatcher *dispatch.Dispatcher, notifier notifications.Service, planner *importer.Planner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || q == nil || dispatcher == nil {
		return nil, errors.New("daemon requires config, library store, queue, and dispatcher")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "daemon")),
		library:    store,
		queue:      q,
		dispatcher: dispatcher,
		notifier:   notifier,
		planner:    planner,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}

	// Failure pushes ride the queue's event stream. The callback runs under
	// the store lock, so the send happens on its own goroutine.
	q.Watch(func(event queue.Event) {
		if event.Type != queue.EventFailed || d.notifier == nil {
			return
		}
		task := event.Task
		go func() {
			if err := d.notifier.NotifyTaskFailed(context.Background(), string(task.Kind), task.Error); err != nil {
				d.logger.Warn("task failure notification not sent", logging.Error(err))
			}
		}()
	})
	return d, nil
}

// Start acquires the daemon lock and begins dispatching queued tasks.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipvault daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.dispatcher.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start dispatcher: %w", err)
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop halts dispatching and releases the daemon lock. Pending tasks stay
// queued; the in-flight task is failed by the dispatcher.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.dispatcher.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close stops the daemon and closes the library database.
func (d *Daemon) Close() error {
	d.Stop()
	if d.library != nil {
		return d.library.Close()
	}
	return nil
}

// Running reports whether the dispatcher is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LogPath returns the daemon log file path.
func (d *Daemon) LogPath() string {
	return d.cfg.LogPath()
}

// Library exposes the catalog for read paths (listings, stats).
func (d *Daemon) Library() *library.Store {
	return d.library
}

// Status gathers a snapshot of the daemon and its services.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:    d.running.Load(),
		PID:        os.Getpid(),
		LockPath:   d.lockPath,
		LogPath:    d.cfg.LogPath(),
		SocketPath: d.cfg.SocketPath(),
		Database:   d.library.Path(),
		Queue:      d.queue.Counts(),
	}
	if task, ok := d.queue.Current(); ok {
		status.Current = &task
	}
	if stats, err := d.library.Stats(ctx); err == nil {
		status.Library = stats
	}
	for kind, err := range d.dispatcher.Health(ctx) {
		health := ExecutorHealth{Kind: kind, Ready: err == nil}
		if err != nil {
			health.Detail = err.Error()
		}
		status.Executors = append(status.Executors, health)
	}
	sort.Slice(status.Executors, func(i, j int) bool {
		return status.Executors[i].Kind < status.Executors[j].Kind
	})
	return status
}

// TestNotification sends a test push using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
