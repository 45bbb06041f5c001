package queue

import "errors"

var (
	// ErrNotFound is returned when no task with the requested ID exists.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTransition is returned when a status change would move a
	// task backwards or skip a state.
	ErrInvalidTransition = errors.New("invalid status transition")
)
