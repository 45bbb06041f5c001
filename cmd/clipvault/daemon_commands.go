package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipvault/internal/daemonctl"
)

const (
	daemonStartTimeout = 10 * time.Second
	daemonStopTimeout  = 5 * time.Second
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the clipvault daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonctl.LaunchOptions{SocketPath: ctx.socketPath(), ConfigPath: ctx.configPath()},
				daemonStartTimeout,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}
			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the clipvault daemon (terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), daemonStopTimeout)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.Terminated && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, queue, and library status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(ctx, cmd)
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the clipvault daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			if _, err := daemonctl.StopAndTerminate(ctx.socketPath(), daemonStopTimeout); err != nil && !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonctl.LaunchOptions{SocketPath: ctx.socketPath(), ConfigPath: ctx.configPath()},
				daemonStartTimeout,
			)
			if err != nil {
				return err
			}
			if result.State == daemonctl.StartStateStarted {
				fmt.Fprintln(stdout, "Daemon restarted")
			} else if strings.TrimSpace(result.Message) != "" {
				fmt.Fprintln(stdout, result.Message)
			}
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd, restartCmd}
}

func runStatus(ctx *commandContext, cmd *cobra.Command) error {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}

	client, err := ctx.dialClient()
	if err != nil {
		fmt.Fprintln(stdout, renderStatusLine("Daemon", statusError, "not reachable", colorize))
		fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, ctx.socketPath(), colorize))
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Start the daemon with `clipvault start`")
		return nil
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		return err
	}

	runningKind := statusWarn
	runningDetail := "idle (dispatching stopped)"
	if status.Running {
		runningKind = statusOK
		runningDetail = fmt.Sprintf("processing tasks (pid %d)", status.PID)
	}
	fmt.Fprintln(stdout, renderStatusLine("Daemon", runningKind, runningDetail, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, status.SocketPath, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Log file", statusInfo, status.LogPath, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, status.Database, colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Executors", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, health := range status.Executors {
		kind := statusOK
		detail := "ready"
		if !health.Ready {
			kind = statusWarn
			detail = health.Detail
		}
		fmt.Fprintln(stdout, renderStatusLine(health.Kind, kind, detail, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Library", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Videos", statusInfo, fmt.Sprintf("%d (%d transcribed, %d analyzed)", status.Library.Videos, status.Library.Transcribed, status.Library.Analyzed), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Clips", statusInfo, fmt.Sprintf("%d", status.Library.Clips), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Tags", statusInfo, fmt.Sprintf("%d", status.Library.Tags), colorize))
	fmt.Fprintln(stdout, renderStatusLine("Total size", statusInfo, formatBytes(status.Library.TotalBytes), colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Queue", colorize) {
		fmt.Fprintln(stdout, line)
	}
	counts, any := renderCountsTable(status.Queue)
	if !any {
		fmt.Fprintln(stdout, "Queue is empty")
	} else {
		fmt.Fprintln(stdout, counts)
	}
	if status.Current != nil {
		fmt.Fprintf(stdout, "Current task: %s %s (%.0f%%)\n", shortID(status.Current.ID), status.Current.Kind, status.Current.Progress)
	}
	return nil
}

// daemonExecutable resolves the clipvaultd binary, preferring one installed
// alongside the CLI.
func daemonExecutable() (string, error) {
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), "clipvaultd")
		if info, statErr := os.Stat(sibling); statErr == nil && !info.IsDir() {
			return sibling, nil
		}
	}
	path, err := exec.LookPath("clipvaultd")
	if err != nil {
		return "", fmt.Errorf("locate clipvaultd binary: %w", err)
	}
	return path, nil
}
