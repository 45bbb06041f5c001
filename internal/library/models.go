package library

import (
	"strings"
	"time"
)

// Video is a catalog entry for a file in the library directory.
type Video struct {
	ID              int64
	Path            string
	Title           string
	DurationSeconds float64
	SizeBytes       int64
	SourceURL       string
	TranscriptPath  string
	AnalysisPath    string
	Summary         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Transcribed reports whether a transcript has been recorded for the video.
func (v *Video) Transcribed() bool {
	return strings.TrimSpace(v.TranscriptPath) != ""
}

// Analyzed reports whether analysis output has been recorded for the video.
func (v *Video) Analyzed() bool {
	return strings.TrimSpace(v.AnalysisPath) != ""
}

// Clip is an exported segment of a video.
type Clip struct {
	ID           int64
	VideoID      int64
	OutputPath   string
	StartSeconds float64
	EndSeconds   float64
	SizeBytes    int64
	CreatedAt    time.Time
}

// TagKind partitions tags into the two extraction categories.
type TagKind string

const (
	TagPerson TagKind = "person"
	TagTopic  TagKind = "topic"
)

// ParseTagKind converts a string into a known TagKind.
func ParseTagKind(value string) (TagKind, bool) {
	switch TagKind(strings.ToLower(strings.TrimSpace(value))) {
	case TagPerson:
		return TagPerson, true
	case TagTopic:
		return TagTopic, true
	default:
		return "", false
	}
}

// Tag labels videos with an extracted person or topic.
type Tag struct {
	ID   int64
	Kind TagKind
	Name string
}

// Stats aggregates library counts for status reporting.
type Stats struct {
	Videos      int
	Clips       int
	Tags        int
	Transcribed int
	Analyzed    int
	TotalBytes  int64
}
