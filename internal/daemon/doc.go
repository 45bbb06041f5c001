// Package daemon coordinates the background services behind clipvaultd: the
// library catalog, the task queue, the dispatcher, and notifications. It
// enforces single-instance execution with a lock file and exposes the
// operations the IPC surface calls.
package daemon
