package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipvault/internal/config"
	"clipvault/internal/dispatch"
	"clipvault/internal/library"
	"clipvault/internal/logging"
	"clipvault/internal/media"
	"clipvault/internal/queue"
)

// TranscribePayload names the library video one transcription task covers.
type TranscribePayload struct {
	VideoID int64 `json:"video_id"`
}

// TranscribeExecutor extracts a video's audio, runs whisper over it, and
// stores the resulting SRT transcript beside the video file.
type TranscribeExecutor struct {
	cfg    *config.Config
	store  *library.Store
	logger *slog.Logger
}

// NewTranscribeExecutor builds the transcribe-video executor.
func NewTranscribeExecutor(cfg *config.Config, store *library.Store, logger *slog.Logger) *TranscribeExecutor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &TranscribeExecutor{
		cfg:    cfg,
		store:  store,
		logger: logger.With(logging.String(logging.FieldComponent, "transcribe")),
	}
}

func (e *TranscribeExecutor) Execute(ctx context.Context, task queue.Task, progress dispatch.ProgressFunc) error {
	var payload TranscribePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode transcribe payload: %w", err)
	}
	video, err := e.store.GetVideoByID(ctx, payload.VideoID)
	if err != nil {
		return err
	}
	if video == nil {
		return fmt.Errorf("video %d not in library", payload.VideoID)
	}

	workDir, err := os.MkdirTemp(e.cfg.Paths.StagingDir, "transcribe-")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	progress(10, "extracting audio")
	audioPath := filepath.Join(workDir, "audio.wav")
	if err := media.ExtractAudio(ctx, e.cfg.Tools.FFmpeg, video.Path, audioPath); err != nil {
		return err
	}

	progress(30, fmt.Sprintf("transcribing with whisper (%s model)", e.cfg.Whisper.Model))
	transcript, err := runWhisper(ctx, TranscribeOptions{
		Binary:    e.cfg.Tools.Whisper,
		AudioPath: audioPath,
		Model:     e.cfg.Whisper.Model,
		Language:  e.cfg.Whisper.Language,
		OutputDir: workDir,
	})
	if err != nil {
		return err
	}

	progress(80, "writing transcript")
	srtPath := transcriptPath(video.Path)
	if err := os.WriteFile(srtPath, []byte(FormatSRT(transcript.Segments)), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	if err := e.store.SetTranscript(ctx, video.ID, srtPath); err != nil {
		_ = os.Remove(srtPath)
		return err
	}

	e.logger.Info("video transcribed",
		logging.Int64("video_id", video.ID),
		logging.Int("segments", len(transcript.Segments)),
		logging.String("transcript", srtPath),
	)
	progress(100, fmt.Sprintf("transcribed %d segments", len(transcript.Segments)))
	return nil
}

func (e *TranscribeExecutor) HealthCheck(context.Context) error {
	for _, binary := range []string{e.cfg.Tools.FFmpeg, e.cfg.Tools.Whisper} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("binary %q not found: %w", binary, err)
		}
	}
	return nil
}

// transcriptPath is the video path with its extension swapped for .srt.
func transcriptPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
}

// analysisPath is the video path with its extension swapped for .analysis.txt.
func analysisPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".analysis.txt"
}
