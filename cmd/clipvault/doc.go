// Package main hosts the clipvault CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC calls
// against clipvaultd: queueing exports, downloads, transcription and analysis,
// inspecting the library and the queue, tailing logs, and configuration
// scaffolding. It centralizes configuration resolution and socket discovery so
// subcommands can focus on user experience instead of wiring.
package main
