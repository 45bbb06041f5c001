// Package queue implements the in-memory sequential task queue at the heart
// of the daemon. Tasks move pending -> processing -> completed/failed, one at
// a time, and watchers observe every mutation synchronously.
package queue
