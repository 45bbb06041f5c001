package download

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"clipvault/internal/config"
	"clipvault/internal/dispatch"
	"clipvault/internal/fileutil"
	"clipvault/internal/library"
	"clipvault/internal/logging"
	"clipvault/internal/media"
	"clipvault/internal/queue"
)

// Payload describes a download-video task.
type Payload struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Executor downloads videos with yt-dlp, stages them, and registers them in
// the library.
type Executor struct {
	cfg    *config.Config
	store  *library.Store
	logger *slog.Logger
}

// NewExecutor builds the download-video executor.
func NewExecutor(cfg *config.Config, store *library.Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		cfg:    cfg,
		store:  store,
		logger: logger.With(logging.String(logging.FieldComponent, "download")),
	}
}

func (e *Executor) Execute(ctx context.Context, task queue.Task, progress dispatch.ProgressFunc) error {
	var payload Payload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode download payload: %w", err)
	}

	progress(5, "validating download request")
	rawURL := strings.TrimSpace(payload.URL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid download url %q", payload.URL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}
	if existing, err := e.store.FindVideoBySourceURL(ctx, rawURL); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("already downloaded as %s", existing.Path)
	}

	fetchCtx := ctx
	if e.cfg.Download.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.Download.Timeout)*time.Second)
		defer cancel()
	}

	progress(10, "downloading")
	stagedPath, err := Fetch(fetchCtx, FetchOptions{
		Binary:    e.cfg.Tools.YtDlp,
		URL:       rawURL,
		TargetDir: e.cfg.Paths.StagingDir,
		Format:    e.cfg.Download.Format,
		RateLimit: e.cfg.Download.RateLimit,
	})
	if err != nil {
		return err
	}

	progress(70, "probing download")
	probe, err := media.Probe(ctx, e.cfg.Tools.FFprobe, stagedPath)
	if err != nil {
		return err
	}
	info, err := os.Stat(stagedPath)
	if err != nil {
		return fmt.Errorf("stat download: %w", err)
	}

	progress(85, "moving into library")
	finalPath := fileutil.UniquePath(filepath.Join(e.cfg.Paths.LibraryDir, filepath.Base(stagedPath)))
	if err := fileutil.MoveFile(stagedPath, finalPath); err != nil {
		return fmt.Errorf("move download into library: %w", err)
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(finalPath), filepath.Ext(finalPath))
	}
	video, err := e.store.AddVideo(ctx, &library.Video{
		Path:            finalPath,
		Title:           title,
		DurationSeconds: probe.DurationSeconds(),
		SizeBytes:       info.Size(),
		SourceURL:       rawURL,
	})
	if err != nil {
		return err
	}

	e.logger.Info("video downloaded",
		logging.String("url", rawURL),
		logging.String("path", video.Path),
		logging.Float64("duration_seconds", video.DurationSeconds),
	)
	progress(100, "download complete")
	return nil
}

func (e *Executor) HealthCheck(context.Context) error {
	for _, binary := range []string{e.cfg.Tools.YtDlp, e.cfg.Tools.FFprobe} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("binary %q not found: %w", binary, err)
		}
	}
	return nil
}
