package analysis_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipvault/internal/analysis"
	"clipvault/internal/config"
	"clipvault/internal/library"
	"clipvault/internal/queue"
	"clipvault/internal/testsupport"
)

// ffmpegStub writes a fake WAV to the output path (the last argument).
const ffmpegStub = `#!/bin/sh
for a; do out="$a"; done
printf 'RIFF' > "$out"
`

// whisperStub drops a transcript JSON into the --output_dir directory the
// way the whisper CLI does for its input file.
const whisperStub = `#!/bin/sh
dir=""
prev=""
for a; do
  if [ "$prev" = "--output_dir" ]; then dir="$a"; fi
  prev="$a"
done
cat > "$dir/audio.json" <<'JSON'
{
  "text": "The earth is flat, I am certain. Many scientists disagree with me.",
  "segments": [
    {"start": 0.0, "end": 4.0, "text": " The earth is flat, I am certain."},
    {"start": 4.0, "end": 9.0, "text": " Many scientists disagree with me."}
  ],
  "language": "en"
}
JSON
`

const sectionsResponse = `INTERESTING SECTIONS:
Section 1:
Start: "The earth is flat"
End: "disagree with me"
Category: controversy
Description: Speaker makes a disputed claim about the earth

BORING SECTIONS:
(none)
`

const quotesResponse = `Key quotes:
1. Timestamp: [0:00]
   Quote: "The earth is flat, I am certain."
   Significance: States the central disputed claim.
`

const summaryResponse = `A speaker claims the earth is flat while acknowledging scientific disagreement.`

const tagsJSONResponse = `{"people": ["jane doe"], "topics": ["Flat Earth", "Science"]}`

// newOllamaServer serves canned model responses keyed on what each prompt
// asks for.
func newOllamaServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "llama3.2:latest"}},
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var response string
		switch {
		case strings.Contains(req.Prompt, "INTERESTING SECTIONS"):
			response = sectionsResponse
		case strings.Contains(req.Prompt, "Key quotes"):
			response = quotesResponse
		case strings.Contains(req.Prompt, "Tags (JSON only)"):
			response = tagsJSONResponse
		case strings.Contains(req.Prompt, "2-3 sentence summary"):
			response = summaryResponse
		default:
			response = "Ready."
		}
		json.NewEncoder(w).Encode(map[string]string{"response": response})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, *library.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Ollama.Model = "llama3.2"
	cfg.Ollama.RequestsPerMinute = 0
	store := testsupport.MustOpenLibrary(t, cfg)
	return cfg, store
}

func seedVideo(t *testing.T, cfg *config.Config, store *library.Store) *library.Video {
	t.Helper()
	path := filepath.Join(cfg.Paths.LibraryDir, "flat-earth-talk.mp4")
	testsupport.WriteMediaFile(t, path, 512)
	video, err := store.AddVideo(context.Background(), &library.Video{
		Path:            path,
		Title:           "Flat Earth Talk",
		DurationSeconds: 9,
	})
	if err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return video
}

func taskFor(t *testing.T, kind queue.Kind, videoID int64) queue.Task {
	t.Helper()
	raw, err := json.Marshal(map[string]int64{"video_id": videoID})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return queue.Task{ID: "an-1", Kind: kind, Payload: raw}
}

func noProgress(float64, string) {}

func TestTranscribeExecutorWritesTranscript(t *testing.T) {
	ctx := context.Background()
	cfg, store := newFixture(t,
		testsupport.WithStubScript("ffmpeg", ffmpegStub),
		testsupport.WithStubScript("whisper", whisperStub),
	)
	video := seedVideo(t, cfg, store)

	executor := analysis.NewTranscribeExecutor(cfg, store, nil)
	if err := executor.Execute(ctx, taskFor(t, queue.KindTranscribeVideo, video.ID), noProgress); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	srtPath := strings.TrimSuffix(video.Path, ".mp4") + ".srt"
	data, err := os.ReadFile(srtPath)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	if !strings.Contains(string(data), "00:00:00,000 --> 00:00:04,000") {
		t.Fatalf("unexpected transcript:\n%s", data)
	}
	if !strings.Contains(string(data), "The earth is flat, I am certain.") {
		t.Fatalf("segment text missing:\n%s", data)
	}

	updated, err := store.GetVideoByID(ctx, video.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload video: %v", err)
	}
	if updated.TranscriptPath != srtPath {
		t.Fatalf("transcript path not recorded: %q", updated.TranscriptPath)
	}

	// The extraction workspace is cleaned up.
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("staging not cleaned: %v %v", entries, err)
	}
}

func TestTranscribeExecutorRequiresKnownVideo(t *testing.T) {
	cfg, store := newFixture(t, testsupport.WithStubbedBinaries())
	executor := analysis.NewTranscribeExecutor(cfg, store, nil)
	err := executor.Execute(context.Background(), taskFor(t, queue.KindTranscribeVideo, 99), noProgress)
	if err == nil || !strings.Contains(err.Error(), "not in library") {
		t.Fatalf("expected unknown video error, got %v", err)
	}
}

func TestTranscribeExecutorSurfacesWhisperFailure(t *testing.T) {
	cfg, store := newFixture(t,
		testsupport.WithStubScript("ffmpeg", ffmpegStub),
		testsupport.WithStubScript("whisper", "#!/bin/sh\necho 'CUDA out of memory' >&2\nexit 1\n"),
	)
	video := seedVideo(t, cfg, store)

	executor := analysis.NewTranscribeExecutor(cfg, store, nil)
	err := executor.Execute(context.Background(), taskFor(t, queue.KindTranscribeVideo, video.ID), noProgress)
	if err == nil || !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Fatalf("expected whisper stderr in error, got %v", err)
	}
}

func writeTranscript(t *testing.T, store *library.Store, video *library.Video) string {
	t.Helper()
	srtPath := strings.TrimSuffix(video.Path, ".mp4") + ".srt"
	segments := []analysis.Segment{
		{Start: 0, End: 4, Text: "The earth is flat, I am certain."},
		{Start: 4, End: 9, Text: "Many scientists disagree with me."},
	}
	if err := os.WriteFile(srtPath, []byte(analysis.FormatSRT(segments)), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	if err := store.SetTranscript(context.Background(), video.ID, srtPath); err != nil {
		t.Fatalf("set transcript: %v", err)
	}
	return srtPath
}

func TestAnalyzeExecutorWritesReportSummaryAndTags(t *testing.T) {
	ctx := context.Background()
	server := newOllamaServer(t)
	cfg, store := newFixture(t, testsupport.WithOllamaEndpoint(server.URL))
	video := seedVideo(t, cfg, store)
	writeTranscript(t, store, video)

	executor := analysis.NewAnalyzeExecutor(cfg, store, nil)
	if err := executor.Execute(ctx, taskFor(t, queue.KindAnalyzeVideo, video.ID), noProgress); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	reportPath := strings.TrimSuffix(video.Path, ".mp4") + ".analysis.txt"
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	report := string(data)
	for _, want := range []string{
		"VIDEO ANALYSIS RESULTS",
		"**0:00 - 0:09 - Speaker makes a disputed claim about the earth [controversy]**",
		`0:00 - "The earth is flat, I am certain."`,
		"States the central disputed claim.",
		"SUMMARY",
		"People: Jane Doe",
		"Topics: Flat Earth, Science",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}

	updated, err := store.GetVideoByID(ctx, video.ID)
	if err != nil || updated == nil {
		t.Fatalf("reload video: %v", err)
	}
	if updated.AnalysisPath != reportPath {
		t.Fatalf("analysis path not recorded: %q", updated.AnalysisPath)
	}
	if updated.Summary != summaryResponse {
		t.Fatalf("summary not recorded: %q", updated.Summary)
	}

	tags, err := store.TagsForVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("tags for video: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %+v", tags)
	}
}

func TestAnalyzeExecutorRequiresTranscript(t *testing.T) {
	server := newOllamaServer(t)
	cfg, store := newFixture(t, testsupport.WithOllamaEndpoint(server.URL))
	video := seedVideo(t, cfg, store)

	executor := analysis.NewAnalyzeExecutor(cfg, store, nil)
	err := executor.Execute(context.Background(), taskFor(t, queue.KindAnalyzeVideo, video.ID), noProgress)
	if err == nil || !strings.Contains(err.Error(), "no transcript") {
		t.Fatalf("expected missing transcript error, got %v", err)
	}
}

func TestAnalyzeExecutorFailsWhenModelNotInstalled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"models": []map[string]string{}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg, store := newFixture(t, testsupport.WithOllamaEndpoint(server.URL))
	video := seedVideo(t, cfg, store)
	writeTranscript(t, store, video)

	executor := analysis.NewAnalyzeExecutor(cfg, store, nil)
	err := executor.Execute(context.Background(), taskFor(t, queue.KindAnalyzeVideo, video.ID), noProgress)
	if err == nil || !strings.Contains(err.Error(), "not installed") {
		t.Fatalf("expected model check failure, got %v", err)
	}
}

func TestClientRetriesTransientFailures(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "recovered"})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg, _ := newFixture(t, testsupport.WithOllamaEndpoint(server.URL))
	client := analysis.NewClient(cfg)
	text, err := client.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "recovered" || attempts != 2 {
		t.Fatalf("expected retry then success, got text=%q attempts=%d", text, attempts)
	}
}

func TestClientDoesNotRetryBadRequests(t *testing.T) {
	attempts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "model is required", http.StatusBadRequest)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg, _ := newFixture(t, testsupport.WithOllamaEndpoint(server.URL))
	client := analysis.NewClient(cfg)
	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("client retried a non-retryable status: %d attempts", attempts)
	}
}
