package main

import (
	"context"
	"path/filepath"
	"testing"

	"clipvault/internal/library"
)

func TestQueueRoundTripThroughCLI(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"download", "https://example.com/watch?v=abc"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Queued download")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "download-video")
	requireContains(t, out, "pending")

	tasks, err := env.daemon.ListQueue(nil)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("expected one task: %v %v", tasks, err)
	}

	out, _, err = runCLI(t, []string{"queue", "cancel", tasks[0].ID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue cancel: %v", err)
	}
	requireContains(t, out, "Canceled task")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list after cancel: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestExportValidatesClipWindow(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t,
		[]string{"export", "--video", "1", "--start", "0:30", "--end", "0:10"},
		env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected window validation error")
	}
	requireContains(t, err.Error(), "must be after")
}

func TestLibraryListAndShowThroughCLI(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	video, err := env.daemon.Library().AddVideo(ctx, &library.Video{
		Path:            filepath.Join(env.cfg.Paths.LibraryDir, "talk.mp4"),
		Title:           "Conference Talk",
		DurationSeconds: 95,
		SizeBytes:       2048,
	})
	if err != nil {
		t.Fatalf("seed video: %v", err)
	}

	out, _, err := runCLI(t, []string{"library", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("library list: %v", err)
	}
	requireContains(t, out, "Conference Talk")
	requireContains(t, out, "1:35")

	out, _, err = runCLI(t, []string{"library", "show", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("library show: %v", err)
	}
	requireContains(t, out, video.Path)

	if _, _, err := runCLI(t, []string{"library", "show", "999"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for unknown video")
	}
}

func TestStatusReportsUnreachableDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	missing := filepath.Join(t.TempDir(), "nope.sock")
	out, _, err := runCLI(t, []string{"status"}, missing, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "not reachable")
	requireContains(t, out, "clipvault start")
}

func TestStatusShowsExecutorsAndLibrary(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Executors")
	requireContains(t, out, "export-clip")
	requireContains(t, out, "Queue is empty")
}
