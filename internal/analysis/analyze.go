package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"clipvault/internal/config"
	"clipvault/internal/dispatch"
	"clipvault/internal/library"
	"clipvault/internal/logging"
	"clipvault/internal/queue"
)

// AnalyzePayload names the library video one analysis task covers.
type AnalyzePayload struct {
	VideoID int64 `json:"video_id"`
}

// AnalyzeExecutor runs AI analysis over a transcribed video: it chunks the
// transcript, asks the model for notable sections and their key quotes,
// streams them into a report file, and finishes with a summary and tags.
type AnalyzeExecutor struct {
	cfg    *config.Config
	store  *library.Store
	client *Client
	logger *slog.Logger
}

// NewAnalyzeExecutor builds the analyze-video executor.
func NewAnalyzeExecutor(cfg *config.Config, store *library.Store, logger *slog.Logger) *AnalyzeExecutor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AnalyzeExecutor{
		cfg:    cfg,
		store:  store,
		client: NewClient(cfg),
		logger: logger.With(logging.String(logging.FieldComponent, "analyze")),
	}
}

func (e *AnalyzeExecutor) Execute(ctx context.Context, task queue.Task, progress dispatch.ProgressFunc) error {
	var payload AnalyzePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode analyze payload: %w", err)
	}
	video, err := e.store.GetVideoByID(ctx, payload.VideoID)
	if err != nil {
		return err
	}
	if video == nil {
		return fmt.Errorf("video %d not in library", payload.VideoID)
	}
	if !video.Transcribed() {
		return fmt.Errorf("video %d has no transcript, transcribe it first", video.ID)
	}

	progress(5, "reading transcript")
	srt, err := os.ReadFile(video.TranscriptPath)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}
	segments := ParseSRT(string(srt))
	if len(segments) == 0 {
		return fmt.Errorf("transcript %s has no usable segments", video.TranscriptPath)
	}

	progress(10, fmt.Sprintf("checking model %s", e.client.Model()))
	if err := e.client.CheckModel(ctx); err != nil {
		return err
	}

	chunks := chunkTranscript(segments, e.cfg.Ollama.ChunkMinutes)
	reportPath := analysisPath(video.Path)
	out, err := newReport(reportPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var analyzed []AnalyzedSection
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		percent := 15 + float64(i)/float64(len(chunks))*70
		progress(percent, fmt.Sprintf("analyzing chunk %d/%d", i+1, len(chunks)))

		sections := e.analyzeChunk(ctx, chunk, out)
		analyzed = append(analyzed, sections...)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	progress(90, "summarizing")
	summary := e.summarize(ctx, video.Title, analyzed)

	progress(95, "extracting tags")
	tags := e.extractTags(ctx, analyzed, segments)
	out.WriteSummary(summary, tags)
	if err := out.Close(); err != nil {
		return err
	}

	if err := e.store.SetAnalysis(ctx, video.ID, reportPath, summary); err != nil {
		return err
	}
	if err := e.saveTags(ctx, video.ID, tags); err != nil {
		return err
	}

	e.logger.Info("video analyzed",
		logging.Int64("video_id", video.ID),
		logging.Int("sections", len(analyzed)),
		logging.Int("tags", len(tags.People)+len(tags.Topics)),
		logging.String("report", reportPath),
	)
	progress(100, fmt.Sprintf("found %d notable sections", len(analyzed)))
	return nil
}

// analyzeChunk asks the model for notable sections in one chunk and expands
// each with quotes. Model failures here skip the chunk rather than failing
// the task, so one bad response does not discard an hour of analysis.
func (e *AnalyzeExecutor) analyzeChunk(ctx context.Context, chunk Chunk, out *report) []AnalyzedSection {
	response, err := e.client.Generate(ctx, sectionsPrompt(chunk.Text))
	if err != nil {
		e.logger.Warn("section identification failed",
			logging.Int("chunk", chunk.Number),
			logging.Error(err),
		)
		return nil
	}

	var analyzed []AnalyzedSection
	timestamped := timestampedText(chunk.Segments)
	for _, section := range parseSections(response) {
		if ctx.Err() != nil {
			return analyzed
		}
		detail, err := e.client.Generate(ctx, quotesPrompt(section, timestamped))
		if err != nil {
			e.logger.Warn("quote extraction failed",
				logging.Int("chunk", chunk.Number),
				logging.String("category", section.Category),
				logging.Error(err),
			)
			continue
		}
		quotes := parseQuotes(detail)
		if len(quotes) == 0 {
			continue
		}
		result := AnalyzedSection{
			Category:    section.Category,
			Description: section.Description,
			StartTime:   displayTime(chunk.Segments[0].Start),
			EndTime:     displayTime(chunk.Segments[len(chunk.Segments)-1].End),
			Quotes:      quotes,
		}
		out.WriteSection(result)
		analyzed = append(analyzed, result)
	}
	return analyzed
}

func (e *AnalyzeExecutor) summarize(ctx context.Context, title string, sections []AnalyzedSection) string {
	response, err := e.client.Generate(ctx, summaryPrompt(title, sectionsContext(sections)))
	if err != nil {
		e.logger.Warn("summary generation failed", logging.Error(err))
		return ""
	}
	return strings.TrimSpace(response)
}

func (e *AnalyzeExecutor) extractTags(ctx context.Context, sections []AnalyzedSection, segments []Segment) Tags {
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, strings.TrimSpace(seg.Text))
	}
	response, err := e.client.Generate(ctx, tagsPrompt(sectionsContext(sections), strings.Join(texts, " ")))
	if err != nil {
		e.logger.Warn("tag extraction failed", logging.Error(err))
		return Tags{}
	}
	return parseTags(response)
}

func (e *AnalyzeExecutor) saveTags(ctx context.Context, videoID int64, tags Tags) error {
	kinds := []struct {
		kind  library.TagKind
		names []string
	}{
		{library.TagPerson, tags.People},
		{library.TagTopic, tags.Topics},
	}
	for _, group := range kinds {
		for _, name := range group.names {
			tag, err := e.store.EnsureTag(ctx, group.kind, name)
			if err != nil {
				return err
			}
			if err := e.store.TagVideo(ctx, videoID, tag.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *AnalyzeExecutor) HealthCheck(ctx context.Context) error {
	return e.client.CheckModel(ctx)
}

func sectionsContext(sections []AnalyzedSection) string {
	if len(sections) == 0 {
		return "(no notable sections identified)"
	}
	lines := make([]string, 0, len(sections))
	for _, section := range sections {
		lines = append(lines, fmt.Sprintf("%s - %s: %s [%s]", section.StartTime, section.EndTime, section.Description, section.Category))
	}
	return strings.Join(lines, "\n")
}
