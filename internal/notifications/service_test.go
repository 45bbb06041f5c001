package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clipvault/internal/config"
	"clipvault/internal/notifications"
)

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func serviceFor(topic string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.Queue = true
	cfg.Notifications.Errors = true
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyQueueDrained(context.Background(), 3, 0, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected noop test notification to return nil, got %v", err)
	}
}

func TestQueueDrainedWording(t *testing.T) {
	tests := []struct {
		name          string
		succeeded     int
		failed        int
		expectTitle   string
		expectPart    string
		expectHighPri bool
	}{
		{
			name:        "all succeeded",
			succeeded:   4,
			expectTitle: "Clipvault - Queue Complete",
			expectPart:  "4 tasks completed",
		},
		{
			name:          "partial failure",
			succeeded:     2,
			failed:        1,
			expectTitle:   "Clipvault - Queue Complete (with errors)",
			expectPart:    "2 succeeded, 1 failed",
			expectHighPri: true,
		},
		{
			name:          "all failed",
			failed:        3,
			expectTitle:   "Clipvault - Queue Failed",
			expectPart:    "all 3 tasks failed",
			expectHighPri: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []captured
			server := newCaptureServer(t, &got)
			defer server.Close()

			svc := serviceFor(server.URL)
			if err := svc.NotifyQueueDrained(context.Background(), tc.succeeded, tc.failed, 90*time.Second); err != nil {
				t.Fatalf("NotifyQueueDrained: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected one request, got %d", len(got))
			}
			if got[0].title != tc.expectTitle {
				t.Fatalf("title: expected %q, got %q", tc.expectTitle, got[0].title)
			}
			if !strings.Contains(got[0].message, tc.expectPart) {
				t.Fatalf("message %q missing %q", got[0].message, tc.expectPart)
			}
			if !strings.Contains(got[0].message, "1m30s") {
				t.Fatalf("message %q missing rounded duration", got[0].message)
			}
			if tc.expectHighPri && got[0].priority != "high" {
				t.Fatalf("expected high priority, got %q", got[0].priority)
			}
		})
	}
}

func TestNotifyTaskFailedFormatsMessage(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	svc := serviceFor(server.URL)
	if err := svc.NotifyTaskFailed(context.Background(), "export-clip", "disk full"); err != nil {
		t.Fatalf("NotifyTaskFailed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one request, got %d", len(got))
	}
	if got[0].message != "Task export-clip failed: disk full" {
		t.Fatalf("unexpected message %q", got[0].message)
	}
	if got[0].priority != "high" {
		t.Fatalf("expected high priority, got %q", got[0].priority)
	}
}

func TestDisabledCategoriesSkipSends(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Queue = false
	cfg.Notifications.Errors = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyQueueDrained(context.Background(), 1, 0, time.Second); err != nil {
		t.Fatalf("NotifyQueueDrained: %v", err)
	}
	if err := svc.NotifyTaskFailed(context.Background(), "export-clip", "boom"); err != nil {
		t.Fatalf("NotifyTaskFailed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("disabled categories should not send, got %d requests", len(got))
	}

	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("test notification should always send, got %d requests", len(got))
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := serviceFor(server.URL)
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected 503 error, got %v", err)
	}
}
