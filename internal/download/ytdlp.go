package download

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// FetchOptions configures a single yt-dlp invocation.
type FetchOptions struct {
	Binary    string
	URL       string
	TargetDir string
	Format    string
	RateLimit string
}

// Fetch downloads a single video into the target directory and returns the
// path of the downloaded file as reported by yt-dlp.
func Fetch(ctx context.Context, opts FetchOptions) (string, error) {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "yt-dlp"
	}
	if strings.TrimSpace(opts.URL) == "" {
		return "", errors.New("yt-dlp: empty url")
	}
	if strings.TrimSpace(opts.TargetDir) == "" {
		return "", errors.New("yt-dlp: empty target directory")
	}

	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-simulate",
		"--print", "after_move:filepath",
		"-o", filepath.Join(opts.TargetDir, "%(title)s.%(ext)s"),
	}
	if format := strings.TrimSpace(opts.Format); format != "" {
		args = append(args, "-f", format)
	}
	if rate := strings.TrimSpace(opts.RateLimit); rate != "" {
		args = append(args, "--limit-rate", rate)
	}
	args = append(args, opts.URL)

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return "", fmt.Errorf("yt-dlp: %w", err)
		}
		return "", fmt.Errorf("yt-dlp: %w: %s", err, detail)
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	path := strings.TrimSpace(lines[len(lines)-1])
	if path == "" {
		return "", errors.New("yt-dlp reported no output file")
	}
	return path, nil
}
