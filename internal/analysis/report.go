package analysis

import (
	"fmt"
	"os"
	"strings"
)

const reportRule = 80

// report streams analyzed sections to a plain-text file as they arrive, so a
// partial run still leaves readable results on disk. Write and sync failures
// are sticky and surface from Close, which is safe to call more than once.
type report struct {
	file *os.File
	err  error
}

func newReport(path string) (*report, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create analysis report: %w", err)
	}
	r := &report{file: file}
	r.line(strings.Repeat("=", reportRule))
	r.line("VIDEO ANALYSIS RESULTS")
	r.line(strings.Repeat("=", reportRule))
	r.line("")
	return r, nil
}

func (r *report) WriteSection(section AnalyzedSection) {
	r.line(fmt.Sprintf("**%s - %s - %s [%s]**", section.StartTime, section.EndTime, section.Description, section.Category))
	r.line("")
	for _, quote := range section.Quotes {
		r.line(fmt.Sprintf("%s - %q", quote.Timestamp, quote.Text))
		if quote.Significance != "" {
			r.line("   → " + quote.Significance)
		}
		r.line("")
	}
	r.line(strings.Repeat("-", reportRule))
	r.line("")
	if err := r.file.Sync(); err != nil && r.err == nil {
		r.err = fmt.Errorf("sync analysis report: %w", err)
	}
}

func (r *report) WriteSummary(summary string, tags Tags) {
	r.line(strings.Repeat("=", reportRule))
	r.line("SUMMARY")
	r.line(strings.Repeat("=", reportRule))
	r.line("")
	if summary != "" {
		r.line(summary)
		r.line("")
	}
	if len(tags.People) > 0 {
		r.line("People: " + strings.Join(tags.People, ", "))
	}
	if len(tags.Topics) > 0 {
		r.line("Topics: " + strings.Join(tags.Topics, ", "))
	}
}

func (r *report) Close() error {
	if r.file == nil {
		return r.err
	}
	err := r.file.Close()
	r.file = nil
	if r.err != nil {
		return r.err
	}
	if err != nil {
		return fmt.Errorf("close analysis report: %w", err)
	}
	return nil
}

func (r *report) line(text string) {
	if r.err != nil {
		return
	}
	if _, err := fmt.Fprintln(r.file, text); err != nil {
		r.err = fmt.Errorf("write analysis report: %w", err)
	}
}
