package main

import (
	"strings"
	"testing"

	"clipvault/internal/ipc"
)

func TestRenderTaskTablePrefersErrorDetail(t *testing.T) {
	out := renderTaskTable([]ipc.Task{{
		ID:       "0123456789abcdef",
		Kind:     "download-video",
		Status:   "failed",
		Progress: 42,
		Message:  "downloading",
		Error:    "network unreachable",
	}})
	requireContains(t, out, "01234567")
	requireContains(t, out, "download-video")
	requireContains(t, out, "42%")
	requireContains(t, out, "network unreachable")
	if strings.Contains(out, "downloading") {
		t.Fatalf("error should replace the progress message:\n%s", out)
	}
}

func TestRenderCountsTableOmitsZeroRows(t *testing.T) {
	if _, any := renderCountsTable(ipc.QueueCounts{}); any {
		t.Fatal("empty queue should render no table")
	}
	out, any := renderCountsTable(ipc.QueueCounts{Pending: 2, Failed: 1})
	if !any {
		t.Fatal("expected rows for non-zero counts")
	}
	requireContains(t, out, "pending")
	requireContains(t, out, "failed")
	if strings.Contains(out, "processing") {
		t.Fatalf("zero rows should be omitted:\n%s", out)
	}
}

func TestRenderVideoTableMarksProgress(t *testing.T) {
	out := renderVideoTable([]ipc.Video{{
		ID:              7,
		Title:           "Conference Talk",
		DurationSeconds: 95,
		SizeBytes:       2048,
		TranscriptPath:  "/media/talk.srt",
	}})
	requireContains(t, out, "Conference Talk")
	requireContains(t, out, "1:35")
	requireContains(t, out, "2.0 KiB")
	requireContains(t, out, "yes")
}
