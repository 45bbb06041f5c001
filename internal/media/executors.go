package media

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
	"clipvault/internal/queue"
)

// ExportPayload describes an export-clip task. Validation happens at
// execution time, not enqueue time.
type ExportPayload struct {
	VideoID      int64   `json:"video_id,omitempty"`
	SourcePath   string  `json:"source_path,omitempty"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	OutputName   string  `json:"output_name,omitempty"`
}

// OverwritePayload describes an overwrite-clip task replacing an existing
// exported clip file.
type OverwritePayload struct {
	VideoID      int64   `json:"video_id,omitempty"`
	SourcePath   string  `json:"source_path,omitempty"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	OutputPath   string  `json:"output_path"`
}

type clipper struct {
	cfg    *config.Config
	store  *library.Store
	logger *slog.Logger
}

func (c *clipper) resolveVideo(ctx context.Context, videoID int64, sourcePath string) (*library.Video, error) {
	if videoID > 0 {
		video, err := c.store.GetVideoByID(ctx, videoID)
		if err != nil {
			return nil, err
		}
		if video == nil {
			return nil, fmt.Errorf("video %d not in library", videoID)
		}
		return video, nil
	}
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return nil, errors.New("payload names neither video_id nor source_path")
	}
	video, err := c.store.GetVideoByPath(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("video %s not in library", sourcePath)
	}
	return video, nil
}

func (c *clipper) validateWindow(video *library.Video, start, end float64) error {
	if start < 0 {
		return fmt.Errorf("start %.3f is negative", start)
	}
	if end <= start {
		return fmt.Errorf("end %.3f must be after start %.3f", end, start)
	}
	if video.DurationSeconds > 0 && start >= video.DurationSeconds {
		return fmt.Errorf("start %.3f is past the video duration %.3f", start, video.DurationSeconds)
	}
	if _, err := os.Stat(video.Path); err != nil {
		return fmt.Errorf("source file missing: %w", err)
	}
	return nil
}

func (c *clipper) registerClip(ctx context.Context, video *library.Video, outputPath string, start, end float64) error {
	var size int64
	if info, err := os.Stat(outputPath); err == nil {
		size = info.Size()
	}
	_, err := c.store.SaveClip(ctx, &library.Clip{
		VideoID:      video.ID,
		OutputPath:   outputPath,
		StartSeconds: start,
		EndSeconds:   end,
		SizeBytes:    size,
	})
	return err
}

func (c *clipper) healthCheck() error {
	for _, binary := range []string{c.cfg.Tools.FFmpeg, c.cfg.Tools.FFprobe} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("binary %q not found: %w", binary, err)
		}
	}
	return nil
}

// ExportExecutor cuts a new clip file into the exports directory.
type ExportExecutor struct {
	clipper
}

// NewExportExecutor builds the export-clip executor.
func NewExportExecutor(cfg *config.Config, store *library.Store, logger *slog.Logger) *ExportExecutor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ExportExecutor{clipper{cfg: cfg, store: store, logger: logger.With(logging.String(logging.FieldComponent, "export"))}}
}

func (e *ExportExecutor) Execute(ctx context.Context, task queue.Task, progress dispatch.ProgressFunc) error {
	var payload ExportPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode export payload: %w", err)
	}

	progress(5, "validating export request")
	video, err := e.resolveVideo(ctx, payload.VideoID, payload.SourcePath)
	if err != nil {
		return err
	}
	if err := e.validateWindow(video, payload.StartSeconds, payload.EndSeconds); err != nil {
		return err
	}

	name := strings.TrimSpace(payload.OutputName)
	if name == "" {
		name = clipFileName(video, payload.StartSeconds, payload.EndSeconds)
	}
	outputPath := fileutil.UniquePath(filepath.Join(e.cfg.Paths.ExportsDir, name))

	progress(25, fmt.Sprintf("exporting %s", filepath.Base(outputPath)))
	if err := CutClip(ctx, e.cfg.Tools.FFmpeg, video.Path, outputPath, payload.StartSeconds, payload.EndSeconds, false); err != nil {
		return err
	}

	progress(90, "registering clip")
	if err := e.registerClip(ctx, video, outputPath, payload.StartSeconds, payload.EndSeconds); err != nil {
		return err
	}
	e.logger.Info("clip exported",
		logging.String("video", video.Path),
		logging.String("clip", outputPath),
	)
	progress(100, "clip exported")
	return nil
}

func (e *ExportExecutor) HealthCheck(context.Context) error {
	return e.healthCheck()
}

// OverwriteExecutor replaces an existing exported clip in place.
type OverwriteExecutor struct {
	clipper
}

// NewOverwriteExecutor builds the overwrite-clip executor.
func NewOverwriteExecutor(cfg *config.Config, store *library.Store, logger *slog.Logger) *OverwriteExecutor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &OverwriteExecutor{clipper{cfg: cfg, store: store, logger: logger.With(logging.String(logging.FieldComponent, "overwrite"))}}
}

func (e *OverwriteExecutor) Execute(ctx context.Context, task queue.Task, progress dispatch.ProgressFunc) error {
	var payload OverwritePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode overwrite payload: %w", err)
	}

	progress(5, "validating overwrite request")
	outputPath := strings.TrimSpace(payload.OutputPath)
	if outputPath == "" {
		return errors.New("payload names no output_path")
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("existing clip missing: %w", err)
	}
	video, err := e.resolveVideo(ctx, payload.VideoID, payload.SourcePath)
	if err != nil {
		return err
	}
	if err := e.validateWindow(video, payload.StartSeconds, payload.EndSeconds); err != nil {
		return err
	}

	progress(25, fmt.Sprintf("rewriting %s", filepath.Base(outputPath)))
	if err := CutClip(ctx, e.cfg.Tools.FFmpeg, video.Path, outputPath, payload.StartSeconds, payload.EndSeconds, true); err != nil {
		return err
	}

	progress(90, "registering clip")
	if err := e.registerClip(ctx, video, outputPath, payload.StartSeconds, payload.EndSeconds); err != nil {
		return err
	}
	e.logger.Info("clip overwritten",
		logging.String("video", video.Path),
		logging.String("clip", outputPath),
	)
	progress(100, "clip overwritten")
	return nil
}

func (e *OverwriteExecutor) HealthCheck(context.Context) error {
	return e.healthCheck()
}

func clipFileName(video *library.Video, start, end float64) string {
	ext := filepath.Ext(video.Path)
	if ext == "" {
		ext = ".mp4"
	}
	base := strings.TrimSuffix(filepath.Base(video.Path), ext)
	return fmt.Sprintf("%s [%s-%s]%s", base, timestampLabel(start), timestampLabel(end), ext)
}

// timestampLabel renders seconds as HH.MM.SS, filename safe.
func timestampLabel(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d.%02d.%02d", total/3600, (total%3600)/60, total%60)
}
