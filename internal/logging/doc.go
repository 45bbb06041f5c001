// Package logging configures slog handlers and shared attribute helpers
// used across the daemon and CLI.
package logging
