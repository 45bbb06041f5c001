// Package logs reads the daemon log file incrementally. Callers track a byte
// offset between calls, so `clipvault logs --follow` can poll over IPC
// without the daemon holding per-client state.
package logs
