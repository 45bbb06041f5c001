package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"clipvault/internal/analysis"
	"clipvault/internal/download"
	"clipvault/internal/logging"
	"clipvault/internal/media"
	"clipvault/internal/queue"
)

// ExportClip queues a clip export. The window is validated against the
// catalog up front so callers get immediate feedback.
func (d *Daemon) ExportClip(ctx context.Context, payload media.ExportPayload) (string, error) {
	if payload.VideoID > 0 {
		if err := d.requireVideo(ctx, payload.VideoID); err != nil {
			return "", err
		}
	} else if strings.TrimSpace(payload.SourcePath) == "" {
		return "", errors.New("export needs a video id or source path")
	}
	if payload.EndSeconds <= payload.StartSeconds {
		return "", fmt.Errorf("clip window %v-%v is empty", payload.StartSeconds, payload.EndSeconds)
	}
	return d.enqueue(queue.KindExportClip, payload)
}

// OverwriteClip queues an in-place re-cut of an existing exported clip.
func (d *Daemon) OverwriteClip(ctx context.Context, payload media.OverwritePayload) (string, error) {
	if strings.TrimSpace(payload.OutputPath) == "" {
		return "", errors.New("overwrite needs the existing clip path")
	}
	if payload.EndSeconds <= payload.StartSeconds {
		return "", fmt.Errorf("clip window %v-%v is empty", payload.StartSeconds, payload.EndSeconds)
	}
	return d.enqueue(queue.KindOverwriteClip, payload)
}

// Download queues a video fetch from a URL.
func (d *Daemon) Download(ctx context.Context, url, title string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", errors.New("download needs a url")
	}
	existing, err := d.library.FindVideoBySourceURL(ctx, url)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", fmt.Errorf("url already downloaded as %s", existing.Path)
	}
	return d.enqueue(queue.KindDownloadVideo, download.Payload{URL: url, Title: strings.TrimSpace(title)})
}

// Transcribe queues whisper transcription for a cataloged video.
func (d *Daemon) Transcribe(ctx context.Context, videoID int64) (string, error) {
	if err := d.requireVideo(ctx, videoID); err != nil {
		return "", err
	}
	return d.enqueue(queue.KindTranscribeVideo, analysis.TranscribePayload{VideoID: videoID})
}

// Analyze queues AI analysis for a transcribed video.
func (d *Daemon) Analyze(ctx context.Context, videoID int64) (string, error) {
	video, err := d.library.GetVideoByID(ctx, videoID)
	if err != nil {
		return "", err
	}
	if video == nil {
		return "", fmt.Errorf("video %d not in library", videoID)
	}
	if !video.Transcribed() {
		return "", fmt.Errorf("video %d has no transcript, transcribe it first", videoID)
	}
	return d.enqueue(queue.KindAnalyzeVideo, analysis.AnalyzePayload{VideoID: videoID})
}

// Import plans batched imports for the given files. It returns the enqueued
// task IDs and the paths skipped as duplicates or unreadable.
func (d *Daemon) Import(ctx context.Context, paths []string) ([]string, []string, error) {
	if d.planner == nil {
		return nil, nil, errors.New("import planner unavailable")
	}
	return d.planner.Enqueue(ctx, paths)
}

// ListQueue returns queued tasks filtered by the named statuses.
func (d *Daemon) ListQueue(statuses []string) ([]queue.Task, error) {
	parsed := make([]queue.Status, 0, len(statuses))
	for _, name := range statuses {
		status, ok := queue.ParseStatus(name)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", name)
		}
		parsed = append(parsed, status)
	}
	return d.queue.List(parsed...), nil
}

// GetTask returns one task by ID.
func (d *Daemon) GetTask(id string) (queue.Task, error) {
	task, ok := d.queue.Get(id)
	if !ok {
		return queue.Task{}, queue.ErrNotFound
	}
	return task, nil
}

// CancelTask removes a pending task. It reports false when the task has
// already started or finished.
func (d *Daemon) CancelTask(id string) (bool, error) {
	return d.queue.Cancel(id)
}

// ClearFinished removes completed and failed tasks from the queue view.
func (d *Daemon) ClearFinished() int {
	return d.queue.ClearTerminal()
}

func (d *Daemon) requireVideo(ctx context.Context, videoID int64) error {
	video, err := d.library.GetVideoByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return fmt.Errorf("video %d not in library", videoID)
	}
	return nil
}

func (d *Daemon) enqueue(kind queue.Kind, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	ids := d.queue.Enqueue(queue.Spec{Kind: kind, Payload: raw})
	d.logger.Info("task enqueued",
		logging.String(logging.FieldTaskID, ids[0]),
		logging.String(logging.FieldTaskKind, string(kind)),
	)
	return ids[0], nil
}
