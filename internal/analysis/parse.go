package analysis

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Section is one notable span the model identified within a chunk.
type Section struct {
	StartPhrase string
	EndPhrase   string
	Category    string
	Description string
}

// Quote is one cited line from a section, with the model's reading of it.
type Quote struct {
	Timestamp    string
	Text         string
	Significance string
}

// AnalyzedSection is a section with its extracted quotes and the display
// times of the chunk it came from.
type AnalyzedSection struct {
	Category    string
	Description string
	StartTime   string
	EndTime     string
	Quotes      []Quote
}

// Tags are the people and topics extracted from a transcript.
type Tags struct {
	People []string `json:"people"`
	Topics []string `json:"topics"`
}

// parseSections extracts sections from a model response. The model is asked
// for an exact format but rarely follows it perfectly, so parsing is
// line-oriented and drops incomplete sections instead of failing.
func parseSections(response string) []Section {
	if !strings.Contains(response, "INTERESTING SECTIONS:") {
		return nil
	}

	var sections []Section
	parts := strings.Split(response, "Section ")[1:]
	for _, part := range parts {
		if idx := strings.Index(part, "BORING SECTIONS:"); idx >= 0 {
			part = part[:idx]
		}

		var section Section
		for _, line := range strings.Split(part, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "Start:"):
				section.StartPhrase = strings.Trim(strings.TrimPrefix(line, "Start:"), ` "`)
			case strings.HasPrefix(line, "End:"):
				section.EndPhrase = strings.Trim(strings.TrimPrefix(line, "End:"), ` "`)
			case strings.HasPrefix(line, "Category:"):
				section.Category = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "Category:")))
			case strings.HasPrefix(line, "Description:"):
				section.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
			}
		}
		if section.StartPhrase != "" && section.EndPhrase != "" && section.Category != "" && section.Description != "" {
			sections = append(sections, section)
		}
	}
	return sections
}

// parseQuotes extracts quotes from a model response. A quote opens at each
// "Timestamp:" line; trailing fields attach to the open quote.
func parseQuotes(response string) []Quote {
	idx := strings.Index(response, "Key quotes:")
	if idx < 0 {
		return nil
	}

	var quotes []Quote
	var current *Quote
	for _, line := range strings.Split(response[idx+len("Key quotes:"):], "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789. ")
		switch {
		case strings.HasPrefix(line, "Timestamp:"):
			if current != nil && current.Timestamp != "" {
				quotes = append(quotes, *current)
			}
			current = &Quote{
				Timestamp: strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "Timestamp:")), "[]"),
			}
		case strings.HasPrefix(line, "Quote:"):
			if current != nil {
				current.Text = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "Quote:")), `"`)
			}
		case strings.HasPrefix(line, "Significance:"):
			if current != nil {
				current.Significance = strings.TrimSpace(strings.TrimPrefix(line, "Significance:"))
			}
		}
	}
	if current != nil && current.Timestamp != "" {
		quotes = append(quotes, *current)
	}
	return quotes
}

// parseTags pulls the first JSON object out of a model response and decodes
// it as tags. Names are title-cased so tag rows dedupe across casings.
func parseTags(response string) Tags {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return Tags{}
	}

	var tags Tags
	if err := json.Unmarshal([]byte(response[start:end+1]), &tags); err != nil {
		return Tags{}
	}

	titler := cases.Title(language.Und)
	tags.People = normalizeTagNames(tags.People, titler)
	tags.Topics = normalizeTagNames(tags.Topics, titler)
	return tags
}

func normalizeTagNames(names []string, titler cases.Caser) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, name := range names {
		name = titler.String(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
