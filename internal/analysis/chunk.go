package analysis

import "strings"

// Chunk is one time-bounded slice of a transcript.
type Chunk struct {
	Number   int
	Start    float64
	End      float64
	Text     string
	Segments []Segment
}

// chunkTranscript splits segments into consecutive windows of chunkMinutes.
// A segment belongs to the window its start time falls in. Windows with no
// speech are dropped.
func chunkTranscript(segments []Segment, chunkMinutes int) []Chunk {
	if len(segments) == 0 {
		return nil
	}
	if chunkMinutes <= 0 {
		chunkMinutes = 15
	}
	window := float64(chunkMinutes * 60)
	total := segments[len(segments)-1].End

	var chunks []Chunk
	number := 1
	for start := 0.0; start < total; start += window {
		end := start + window
		var inWindow []Segment
		var texts []string
		for _, seg := range segments {
			if seg.Start >= start && seg.Start < end {
				inWindow = append(inWindow, seg)
				texts = append(texts, strings.TrimSpace(seg.Text))
			}
		}
		if len(inWindow) == 0 {
			continue
		}
		if end > total {
			end = total
		}
		chunks = append(chunks, Chunk{
			Number:   number,
			Start:    start,
			End:      end,
			Text:     strings.Join(texts, " "),
			Segments: inWindow,
		})
		number++
	}
	return chunks
}
