package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of a queued task. Transitions only move
// forward: pending -> processing -> completed or failed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Kind identifies the work a task performs and selects its executor.
type Kind string

const (
	KindExportClip      Kind = "export-clip"
	KindOverwriteClip   Kind = "overwrite-clip"
	KindImportBatch     Kind = "import-batch"
	KindDownloadVideo   Kind = "download-video"
	KindTranscribeVideo Kind = "transcribe-video"
	KindAnalyzeVideo    Kind = "analyze-video"
)

var allKinds = []Kind{
	KindExportClip,
	KindOverwriteClip,
	KindImportBatch,
	KindDownloadVideo,
	KindTranscribeVideo,
	KindAnalyzeVideo,
}

var kindSet = func() map[Kind]struct{} {
	set := make(map[Kind]struct{}, len(allKinds))
	for _, kind := range allKinds {
		set[kind] = struct{}{}
	}
	return set
}()

// AllKinds returns the ordered list of known task kinds.
func AllKinds() []Kind {
	cp := make([]Kind, len(allKinds))
	copy(cp, allKinds)
	return cp
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := kindSet[normalized]
	return normalized, ok
}

// DaemonStopReason is the error message set on in-flight tasks failed by
// daemon shutdown.
const DaemonStopReason = "daemon stopped"

// Spec describes a task to enqueue. Payloads are opaque to the store and
// validated by the executor at execution time.
type Spec struct {
	Kind    Kind
	Payload json.RawMessage
}

// Task is a unit of queued work.
type Task struct {
	ID         string
	Kind       Kind
	Payload    json.RawMessage
	Status     Status
	Progress   float64
	Message    string
	Error      string
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Clone returns a deep copy safe to hand outside the store lock.
func (t *Task) Clone() Task {
	cp := *t
	if t.Payload != nil {
		cp.Payload = make(json.RawMessage, len(t.Payload))
		copy(cp.Payload, t.Payload)
	}
	if t.StartedAt != nil {
		started := *t.StartedAt
		cp.StartedAt = &started
	}
	if t.FinishedAt != nil {
		finished := *t.FinishedAt
		cp.FinishedAt = &finished
	}
	return cp
}

// Counts aggregates queue totals per lifecycle state.
type Counts struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Total returns the number of tasks across every state.
func (c Counts) Total() int {
	return c.Pending + c.Processing + c.Completed + c.Failed
}
