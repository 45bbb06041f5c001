package ipc

import "time"

// StartRequest begins task dispatching.
type StartRequest struct{}

// StartResponse reports whether dispatching was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest halts task dispatching.
type StopRequest struct{}

// StopResponse reports stop completion.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// Task is the wire form of a queued task.
type Task struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	Progress   float64    `json:"progress"`
	Message    string     `json:"message"`
	Error      string     `json:"error"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// QueueCounts tallies tasks per lifecycle state.
type QueueCounts struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// ExecutorHealth reports readiness of one task kind's executor.
type ExecutorHealth struct {
	Kind   string `json:"kind"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// LibraryStats summarizes the catalog.
type LibraryStats struct {
	Videos      int   `json:"videos"`
	Clips       int   `json:"clips"`
	Tags        int   `json:"tags"`
	Transcribed int   `json:"transcribed"`
	Analyzed    int   `json:"analyzed"`
	TotalBytes  int64 `json:"total_bytes"`
}

// StatusRequest fetches a daemon snapshot.
type StatusRequest struct{}

// StatusResponse is a point-in-time view of the daemon and its services.
type StatusResponse struct {
	Running    bool             `json:"running"`
	PID        int              `json:"pid"`
	LockPath   string           `json:"lock_path"`
	LogPath    string           `json:"log_path"`
	SocketPath string           `json:"socket_path"`
	Database   string           `json:"database"`
	Queue      QueueCounts      `json:"queue"`
	Current    *Task            `json:"current,omitempty"`
	Executors  []ExecutorHealth `json:"executors"`
	Library    LibraryStats     `json:"library"`
}

// QueueListRequest filters the queue listing by status names.
type QueueListRequest struct {
	Statuses []string `json:"statuses"`
}

// QueueListResponse carries the matching tasks in queue order.
type QueueListResponse struct {
	Tasks []Task `json:"tasks"`
}

// QueueCancelRequest removes one pending task.
type QueueCancelRequest struct {
	ID string `json:"id"`
}

// QueueCancelResponse reports whether the task was still pending.
type QueueCancelResponse struct {
	Removed bool `json:"removed"`
}

// QueueClearRequest removes completed and failed tasks.
type QueueClearRequest struct{}

// QueueClearResponse reports how many tasks were removed.
type QueueClearResponse struct {
	Removed int `json:"removed"`
}

// ExportRequest queues a clip export.
type ExportRequest struct {
	VideoID      int64   `json:"video_id,omitempty"`
	SourcePath   string  `json:"source_path,omitempty"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	OutputName   string  `json:"output_name,omitempty"`
}

// OverwriteRequest queues an in-place re-cut of an exported clip.
type OverwriteRequest struct {
	VideoID      int64   `json:"video_id,omitempty"`
	SourcePath   string  `json:"source_path,omitempty"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	OutputPath   string  `json:"output_path"`
}

// EnqueueResponse returns the ID of a newly queued task.
type EnqueueResponse struct {
	TaskID string `json:"task_id"`
}

// ImportRequest plans batched imports for the given files.
type ImportRequest struct {
	Paths []string `json:"paths"`
}

// ImportResponse reports the queued batches and the skipped paths.
type ImportResponse struct {
	TaskIDs []string `json:"task_ids"`
	Skipped []string `json:"skipped"`
}

// DownloadRequest queues a video fetch.
type DownloadRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// TranscribeRequest queues transcription for a cataloged video.
type TranscribeRequest struct {
	VideoID int64 `json:"video_id"`
}

// AnalyzeRequest queues AI analysis for a transcribed video.
type AnalyzeRequest struct {
	VideoID int64 `json:"video_id"`
}

// Video is the wire form of a catalog entry.
type Video struct {
	ID              int64     `json:"id"`
	Path            string    `json:"path"`
	Title           string    `json:"title"`
	DurationSeconds float64   `json:"duration_seconds"`
	SizeBytes       int64     `json:"size_bytes"`
	SourceURL       string    `json:"source_url,omitempty"`
	TranscriptPath  string    `json:"transcript_path,omitempty"`
	AnalysisPath    string    `json:"analysis_path,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Clip is the wire form of an exported clip.
type Clip struct {
	ID           int64     `json:"id"`
	VideoID      int64     `json:"video_id"`
	OutputPath   string    `json:"output_path"`
	StartSeconds float64   `json:"start_seconds"`
	EndSeconds   float64   `json:"end_seconds"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// Tag is the wire form of a person or topic tag.
type Tag struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// LibraryListRequest lists the catalog.
type LibraryListRequest struct{}

// LibraryListResponse carries all cataloged videos.
type LibraryListResponse struct {
	Videos []Video `json:"videos"`
}

// LibraryShowRequest fetches one video with its clips and tags.
type LibraryShowRequest struct {
	VideoID int64 `json:"video_id"`
}

// LibraryShowResponse carries a video and everything attached to it.
type LibraryShowResponse struct {
	Video Video  `json:"video"`
	Clips []Clip `json:"clips"`
	Tags  []Tag  `json:"tags"`
}

// LogTailRequest reads log lines from an offset. Offset -1 means the last
// Limit lines.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest sends a test push.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
