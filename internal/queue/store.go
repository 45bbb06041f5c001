package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a store mutation delivered to watchers.
type EventType string

const (
	EventEnqueued  EventType = "enqueued"
	EventStarted   EventType = "started"
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventCanceled  EventType = "canceled"
	EventCleared   EventType = "cleared"
)

// Event describes a single store mutation. Task is a snapshot taken at the
// moment the mutation was applied.
type Event struct {
	Type EventType
	Task Task
}

// WatchFunc observes store mutations. Callbacks run synchronously under the
// store lock, so every mutation is visible to all watchers before the next
// one begins. Callbacks must not call back into the store.
type WatchFunc func(Event)

// Store is an in-memory FIFO task queue. Nothing survives a restart.
type Store struct {
	mu       sync.Mutex
	tasks    []*Task
	byID     map[string]*Task
	watchers []WatchFunc
	now      func() time.Time
}

// NewStore returns an empty queue store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Task),
		now:  time.Now,
	}
}

// Watch registers a mutation observer. Registration order is delivery order.
func (s *Store) Watch(fn WatchFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Store) notifyLocked(eventType EventType, task *Task) {
	if len(s.watchers) == 0 {
		return
	}
	event := Event{Type: eventType, Task: task.Clone()}
	for _, fn := range s.watchers {
		fn(event)
	}
}

// Enqueue appends one task per spec in order and returns the assigned IDs.
// Payloads are stored as-is; nothing is validated here.
func (s *Store) Enqueue(specs ...Spec) []string {
	if len(specs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		task := &Task{
			ID:        uuid.NewString(),
			Kind:      spec.Kind,
			Payload:   spec.Payload,
			Status:    StatusPending,
			CreatedAt: s.now().UTC(),
		}
		s.tasks = append(s.tasks, task)
		s.byID[task.ID] = task
		ids = append(ids, task.ID)
		s.notifyLocked(EventEnqueued, task)
	}
	return ids
}

// Cancel removes a pending task from the queue. Tasks that have already
// started (or finished) are left untouched and Cancel reports false.
func (s *Store) Cancel(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.byID[id]
	if !ok {
		return false, fmt.Errorf("cancel %s: %w", id, ErrNotFound)
	}
	if task.Status != StatusPending {
		return false, nil
	}
	s.removeLocked(id)
	s.notifyLocked(EventCanceled, task)
	return true, nil
}

// ClearTerminal removes completed and failed tasks and returns how many were
// dropped. Pending and processing tasks are untouched.
func (s *Store) ClearTerminal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	cleared := 0
	for _, task := range s.tasks {
		if task.Status.IsTerminal() {
			delete(s.byID, task.ID)
			cleared++
			s.notifyLocked(EventCleared, task)
			continue
		}
		kept = append(kept, task)
	}
	s.tasks = kept
	return cleared
}

// ClaimNext atomically moves the oldest pending task to processing and
// returns a snapshot of it. The second return is false when nothing is
// pending.
func (s *Store) ClaimNext() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.Status != StatusPending {
			continue
		}
		now := s.now().UTC()
		task.Status = StatusProcessing
		task.StartedAt = &now
		s.notifyLocked(EventStarted, task)
		return task.Clone(), true
	}
	return Task{}, false
}

// MarkCompleted transitions a processing task to completed.
func (s *Store) MarkCompleted(id string) error {
	return s.finish(id, StatusCompleted, "")
}

// MarkFailed transitions a processing task to failed and records the error.
func (s *Store) MarkFailed(id, message string) error {
	return s.finish(id, StatusFailed, message)
}

func (s *Store) finish(id string, status Status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("finish %s: %w", id, ErrNotFound)
	}
	if task.Status != StatusProcessing {
		return fmt.Errorf("finish %s: %s -> %s: %w", id, task.Status, status, ErrInvalidTransition)
	}
	now := s.now().UTC()
	task.Status = status
	task.FinishedAt = &now
	if status == StatusCompleted {
		task.Progress = 100
		task.Error = ""
		s.notifyLocked(EventCompleted, task)
		return nil
	}
	task.Error = message
	task.Message = message
	s.notifyLocked(EventFailed, task)
	return nil
}

// SetProgress updates the progress of a processing task. Percent is clamped
// to 0-100. Updates against non-processing tasks are ignored so a slow
// executor cannot resurrect a task that was already failed by shutdown.
func (s *Store) SetProgress(id string, percent float64, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("progress %s: %w", id, ErrNotFound)
	}
	if task.Status != StatusProcessing {
		return nil
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	task.Progress = percent
	task.Message = message
	s.notifyLocked(EventProgress, task)
	return nil
}

// Get returns a snapshot of the task with the given ID.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.byID[id]
	if !ok {
		return Task{}, false
	}
	return task.Clone(), true
}

// Current returns the task being processed, if any.
func (s *Store) Current() (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.Status == StatusProcessing {
			return task.Clone(), true
		}
	}
	return Task{}, false
}

// List returns snapshots in enqueue order, optionally filtered by status.
func (s *Store) List(statuses ...Status) []Task {
	filter := make(map[Status]struct{}, len(statuses))
	for _, status := range statuses {
		filter[status] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if len(filter) > 0 {
			if _, ok := filter[task.Status]; !ok {
				continue
			}
		}
		out = append(out, task.Clone())
	}
	return out
}

// Counts returns aggregate totals per lifecycle state.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	var counts Counts
	for _, task := range s.tasks {
		switch task.Status {
		case StatusPending:
			counts.Pending++
		case StatusProcessing:
			counts.Processing++
		case StatusCompleted:
			counts.Completed++
		case StatusFailed:
			counts.Failed++
		}
	}
	return counts
}

// PendingCount returns the number of pending tasks.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, task := range s.tasks {
		if task.Status == StatusPending {
			count++
		}
	}
	return count
}

func (s *Store) removeLocked(id string) {
	delete(s.byID, id)
	for i, task := range s.tasks {
		if task.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}
