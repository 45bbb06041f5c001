// Package dispatch executes queued tasks strictly one at a time. The
// dispatcher wakes on enqueue events, claims the oldest pending task, runs
// the executor registered for its kind, and notifies once per cycle when the
// queue drains.
package dispatch
