package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipvault/internal/config"
	"clipvault/internal/dispatch"
	"clipvault/internal/fileutil"
	"clipvault/internal/library"
	"clipvault/internal/logging"
	"clipvault/internal/media"
	"clipvault/internal/queue"
)

// Executor copies a batch of files into the library directory with verified
// copies and catalogs them. Per-file failures are collected; the task fails
// only when every file in the batch fails.
type Executor struct {
	cfg    *config.Config
	store  *library.Store
	logger *slog.Logger
}

// NewExecutor builds the import-batch executor.
func NewExecutor(cfg *config.Config, store *library.Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		cfg:    cfg,
		store:  store,
		logger: logger.With(logging.String(logging.FieldComponent, "importer")),
	}
}

func (e *Executor) Execute(ctx context.Context, task queue.Task, progress dispatch.ProgressFunc) error {
	var payload BatchPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode import payload: %w", err)
	}
	if len(payload.Paths) == 0 {
		return errors.New("import batch is empty")
	}

	var failures []string
	imported := 0
	for i, src := range payload.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		percent := float64(i) / float64(len(payload.Paths)) * 100
		progress(percent, fmt.Sprintf("importing %s", filepath.Base(src)))

		if err := e.importOne(ctx, src); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(src), err))
			e.logger.Warn("file import failed",
				logging.String("path", src),
				logging.Error(err),
			)
			continue
		}
		imported++
	}

	if imported == 0 {
		return fmt.Errorf("all %d files failed to import: %s", len(payload.Paths), strings.Join(failures, "; "))
	}
	if len(failures) > 0 {
		progress(100, fmt.Sprintf("imported %d of %d files", imported, len(payload.Paths)))
		e.logger.Warn("import batch finished with failures",
			logging.Int("imported", imported),
			logging.Int("failed", len(failures)),
		)
		return nil
	}
	progress(100, fmt.Sprintf("imported %d files", imported))
	return nil
}

func (e *Executor) importOne(ctx context.Context, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	probe, err := media.Probe(ctx, e.cfg.Tools.FFprobe, src)
	if err != nil {
		return err
	}

	dst := fileutil.UniquePath(filepath.Join(e.cfg.Paths.LibraryDir, filepath.Base(src)))
	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(dst), filepath.Ext(dst))
	if _, err := e.store.AddVideo(ctx, &library.Video{
		Path:            dst,
		Title:           title,
		DurationSeconds: probe.DurationSeconds(),
		SizeBytes:       info.Size(),
	}); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

func (e *Executor) HealthCheck(context.Context) error {
	if _, err := exec.LookPath(e.cfg.Tools.FFprobe); err != nil {
		return fmt.Errorf("binary %q not found: %w", e.cfg.Tools.FFprobe, err)
	}
	return nil
}
