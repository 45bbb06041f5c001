// Package daemonrun hosts the clipvaultd runtime loop: logger setup, daemon
// wiring, the IPC server, and shutdown on signal.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"clipvault/internal/config"
	"clipvault/internal/daemon"
	"clipvault/internal/ipc"
	"clipvault/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	SocketPath string
	LogLevel   string
}

// Run starts the clipvault daemon runtime loop and blocks until the context
// is canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	level := opts.LogLevel
	if strings.TrimSpace(level) == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", cfg.LogPath()},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logToolSnapshot(logger, cfg)

	d, err := daemon.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := strings.TrimSpace(opts.SocketPath)
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check lock file and library database access"),
		)
	}

	<-signalCtx.Done()
	logger.Info("clipvault daemon shutting down")
	return nil
}

func logToolSnapshot(logger *slog.Logger, cfg *config.Config) {
	logger.Info("tool snapshot",
		logging.String(logging.FieldEventType, "tool_snapshot"),
		logging.Bool("ffmpeg_available", binaryAvailable(cfg.Tools.FFmpeg)),
		logging.Bool("ffprobe_available", binaryAvailable(cfg.Tools.FFprobe)),
		logging.Bool("yt_dlp_available", binaryAvailable(cfg.Tools.YtDlp)),
		logging.Bool("whisper_available", binaryAvailable(cfg.Tools.Whisper)),
		logging.String("ollama_endpoint", cfg.Ollama.Endpoint),
		logging.String("ollama_model", cfg.Ollama.Model),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
