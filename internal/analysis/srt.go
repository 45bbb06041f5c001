package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSRT renders segments as SubRip subtitles: a 1-based index, a
// "start --> end" line, the text, and a blank separator per cue.
func FormatSRT(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", srtTimestamp(seg.Start), srtTimestamp(seg.End))
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// ParseSRT recovers timed segments from SubRip subtitle text. Malformed cues
// are skipped rather than failing the whole parse.
func ParseSRT(content string) []Segment {
	var segments []Segment
	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}
		start, end, ok := parseSRTRange(lines[1])
		if !ok {
			continue
		}
		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(strings.Join(lines[2:], " ")),
		})
	}
	return segments
}

// srtTimestamp renders seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	millis := int((seconds - float64(total)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func parseSRTRange(line string) (start, end float64, ok bool) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok = parseSRTTimestamp(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, 0, false
	}
	end, ok = parseSRTTimestamp(strings.TrimSpace(parts[1]))
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func parseSRTTimestamp(value string) (float64, bool) {
	clock, millisPart, found := strings.Cut(value, ",")
	if !found {
		return 0, false
	}
	fields := strings.Split(clock, ":")
	if len(fields) != 3 {
		return 0, false
	}
	hours, err1 := strconv.Atoi(fields[0])
	minutes, err2 := strconv.Atoi(fields[1])
	secs, err3 := strconv.Atoi(fields[2])
	millis, err4 := strconv.Atoi(millisPart)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60+secs) + float64(millis)/1000, true
}
