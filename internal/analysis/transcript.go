package analysis

import (
	"fmt"
	"strings"
)

// Segment is one timed span of speech from a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript holds the full text of a video plus its timed segments.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// maxPromptSegments caps how many segments feed a single quote-extraction
// prompt so prompts stay within model context limits.
const maxPromptSegments = 200

// displayTime renders seconds as M:SS, or H:MM:SS past the hour mark.
func displayTime(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// timestampedText renders segments as one "[M:SS] text" line each, for
// prompts that need the model to cite timestamps.
func timestampedText(segments []Segment) string {
	if len(segments) > maxPromptSegments {
		segments = segments[:maxPromptSegments]
	}
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("[%s] %s", displayTime(seg.Start), strings.TrimSpace(seg.Text)))
	}
	return strings.Join(lines, "\n")
}
