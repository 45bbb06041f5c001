package media_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipvault/internal/config"
	"clipvault/internal/library"
	"clipvault/internal/media"
	"clipvault/internal/queue"
	"clipvault/internal/testsupport"
)

// ffmpegStub writes marker content to its final argument so tests can verify
// the output file was produced.
const ffmpegStub = `#!/bin/sh
for last; do :; done
printf 'clip-bytes' > "$last"
`

func newFixture(t *testing.T) (*config.Config, *library.Store, *library.Video) {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubScript("ffmpeg", ffmpegStub),
		testsupport.WithStubbedBinaries("ffprobe"),
	)
	store := testsupport.MustOpenLibrary(t, cfg)

	sourcePath := filepath.Join(cfg.Paths.LibraryDir, "talk.mp4")
	testsupport.WriteMediaFile(t, sourcePath, 4096)
	video, err := store.AddVideo(context.Background(), &library.Video{
		Path:            sourcePath,
		Title:           "talk",
		DurationSeconds: 300,
		SizeBytes:       4096,
	})
	if err != nil {
		t.Fatalf("add video: %v", err)
	}
	return cfg, store, video
}

func exportTask(t *testing.T, payload media.ExportPayload) queue.Task {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return queue.Task{ID: "task-1", Kind: queue.KindExportClip, Payload: raw}
}

func noProgress(float64, string) {}

func TestExportExecutorWritesAndRegistersClip(t *testing.T) {
	ctx := context.Background()
	cfg, store, video := newFixture(t)
	executor := media.NewExportExecutor(cfg, store, nil)

	var messages []string
	progress := func(_ float64, message string) { messages = append(messages, message) }

	task := exportTask(t, media.ExportPayload{VideoID: video.ID, StartSeconds: 10, EndSeconds: 30})
	if err := executor.Execute(ctx, task, progress); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	wantPath := filepath.Join(cfg.Paths.ExportsDir, "talk [00.00.10-00.00.30].mp4")
	if _, err := os.Stat(wantPath); err != nil {
		t.Fatalf("exported clip missing: %v", err)
	}

	clips, err := store.ListClips(ctx, video.ID)
	if err != nil {
		t.Fatalf("list clips: %v", err)
	}
	if len(clips) != 1 || clips[0].OutputPath != wantPath {
		t.Fatalf("clip not registered: %+v", clips)
	}
	if clips[0].StartSeconds != 10 || clips[0].EndSeconds != 30 || clips[0].SizeBytes == 0 {
		t.Fatalf("unexpected clip fields: %+v", clips[0])
	}
	if len(messages) == 0 || messages[len(messages)-1] != "clip exported" {
		t.Fatalf("unexpected progress messages: %v", messages)
	}
}

func TestExportExecutorAvoidsNameCollisions(t *testing.T) {
	ctx := context.Background()
	cfg, store, video := newFixture(t)
	executor := media.NewExportExecutor(cfg, store, nil)

	task := exportTask(t, media.ExportPayload{VideoID: video.ID, StartSeconds: 10, EndSeconds: 30})
	if err := executor.Execute(ctx, task, noProgress); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if err := executor.Execute(ctx, task, noProgress); err != nil {
		t.Fatalf("second export: %v", err)
	}

	suffixed := filepath.Join(cfg.Paths.ExportsDir, "talk [00.00.10-00.00.30] (1).mp4")
	if _, err := os.Stat(suffixed); err != nil {
		t.Fatalf("second export should get a unique name: %v", err)
	}
	clips, err := store.ListClips(ctx, video.ID)
	if err != nil {
		t.Fatalf("list clips: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 registered clips, got %d", len(clips))
	}
}

func TestExportExecutorValidatesAtExecutionTime(t *testing.T) {
	ctx := context.Background()
	cfg, store, video := newFixture(t)
	executor := media.NewExportExecutor(cfg, store, nil)

	tests := []struct {
		name    string
		payload media.ExportPayload
		wantErr string
	}{
		{
			name:    "end before start",
			payload: media.ExportPayload{VideoID: video.ID, StartSeconds: 30, EndSeconds: 10},
			wantErr: "must be after",
		},
		{
			name:    "negative start",
			payload: media.ExportPayload{VideoID: video.ID, StartSeconds: -1, EndSeconds: 10},
			wantErr: "negative",
		},
		{
			name:    "unknown video",
			payload: media.ExportPayload{VideoID: 9999, StartSeconds: 0, EndSeconds: 10},
			wantErr: "not in library",
		},
		{
			name:    "start past duration",
			payload: media.ExportPayload{VideoID: video.ID, StartSeconds: 400, EndSeconds: 410},
			wantErr: "past the video duration",
		},
		{
			name:    "empty payload",
			payload: media.ExportPayload{StartSeconds: 0, EndSeconds: 10},
			wantErr: "neither video_id nor source_path",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := executor.Execute(ctx, exportTask(t, tc.payload), noProgress)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}

	if entries, err := os.ReadDir(cfg.Paths.ExportsDir); err != nil || len(entries) != 0 {
		t.Fatalf("failed validations should not write files: %v %v", entries, err)
	}
}

func TestOverwriteExecutorReplacesExistingClip(t *testing.T) {
	ctx := context.Background()
	cfg, store, video := newFixture(t)
	executor := media.NewOverwriteExecutor(cfg, store, nil)

	outputPath := filepath.Join(cfg.Paths.ExportsDir, "existing.mp4")
	testsupport.WriteMediaFile(t, outputPath, 128)
	if _, err := store.SaveClip(ctx, &library.Clip{VideoID: video.ID, OutputPath: outputPath, StartSeconds: 1, EndSeconds: 2}); err != nil {
		t.Fatalf("seed clip: %v", err)
	}

	raw, _ := json.Marshal(media.OverwritePayload{VideoID: video.ID, StartSeconds: 20, EndSeconds: 40, OutputPath: outputPath})
	task := queue.Task{ID: "task-2", Kind: queue.KindOverwriteClip, Payload: raw}
	if err := executor.Execute(ctx, task, noProgress); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil || string(data) != "clip-bytes" {
		t.Fatalf("clip file not rewritten: %q %v", data, err)
	}
	clip, err := store.GetClipByOutputPath(ctx, outputPath)
	if err != nil {
		t.Fatalf("get clip: %v", err)
	}
	if clip.StartSeconds != 20 || clip.EndSeconds != 40 {
		t.Fatalf("clip row not updated: %+v", clip)
	}
	clips, err := store.ListClips(ctx, video.ID)
	if err != nil || len(clips) != 1 {
		t.Fatalf("overwrite should not add rows: %+v %v", clips, err)
	}
}

func TestOverwriteExecutorRequiresExistingFile(t *testing.T) {
	ctx := context.Background()
	cfg, store, video := newFixture(t)
	executor := media.NewOverwriteExecutor(cfg, store, nil)

	raw, _ := json.Marshal(media.OverwritePayload{
		VideoID:      video.ID,
		StartSeconds: 0,
		EndSeconds:   10,
		OutputPath:   filepath.Join(cfg.Paths.ExportsDir, "missing.mp4"),
	})
	err := executor.Execute(ctx, queue.Task{ID: "t", Kind: queue.KindOverwriteClip, Payload: raw}, noProgress)
	if err == nil || !strings.Contains(err.Error(), "existing clip missing") {
		t.Fatalf("expected missing clip error, got %v", err)
	}
}

func TestExecutorHealthChecks(t *testing.T) {
	cfg, store, _ := newFixture(t)
	executor := media.NewExportExecutor(cfg, store, nil)
	if err := executor.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health with stubbed binaries: %v", err)
	}

	cfg.Tools.FFmpeg = "definitely-not-a-binary"
	if err := executor.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health failure for missing binary")
	}
}
