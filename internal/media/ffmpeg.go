package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CutClip stream-copies the [start, end] window of src into dst. When
// overwrite is false an existing dst fails the export.
func CutClip(ctx context.Context, binary, src, dst string, start, end float64, overwrite bool) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	clobber := "-n"
	if overwrite {
		clobber = "-y"
	}
	args := []string{
		"-v", "error", "-hide_banner", clobber,
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", src,
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		dst,
	}
	return runFFmpeg(ctx, binary, args)
}

// ExtractAudio writes a mono 16 kHz WAV of src's audio track to dst, the
// input format the transcriber expects.
func ExtractAudio(ctx context.Context, binary, src, dst string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	args := []string{
		"-v", "error", "-hide_banner", "-y",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dst,
	}
	return runFFmpeg(ctx, binary, args)
}

func runFFmpeg(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			return fmt.Errorf("ffmpeg: %w", err)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, detail)
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
