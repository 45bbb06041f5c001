package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// TranscribeOptions configure one whisper CLI run.
type TranscribeOptions struct {
	Binary    string
	AudioPath string
	Model     string
	Language  string
	OutputDir string
}

// runWhisper transcribes an audio file with the whisper CLI and parses the
// JSON transcript it writes into OutputDir.
func runWhisper(ctx context.Context, opts TranscribeOptions) (*Transcript, error) {
	args := []string{
		opts.AudioPath,
		"--model", opts.Model,
		"--output_format", "json",
		"--output_dir", opts.OutputDir,
		"--fp16", "False",
		"--verbose", "False",
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}

	cmd := exec.CommandContext(ctx, opts.Binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	base := strings.TrimSuffix(filepath.Base(opts.AudioPath), filepath.Ext(opts.AudioPath))
	jsonPath := filepath.Join(opts.OutputDir, base+".json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}
	if len(transcript.Segments) == 0 {
		return nil, fmt.Errorf("whisper produced no segments for %s", filepath.Base(opts.AudioPath))
	}
	return &transcript, nil
}
