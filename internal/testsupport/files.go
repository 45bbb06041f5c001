package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// riffHeader is the 12-byte container preamble media sniffers look for; the
// stubbed tools in these tests never parse past it.
var riffHeader = []byte("RIFF\x00\x00\x00\x00WAVE")

// WriteMediaFile fills the target path with size bytes that open with a RIFF
// header, so fixtures resemble the video files the executors shuffle around.
// A size smaller than the header writes plain filler; size <= 0 writes one byte.
func WriteMediaFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	content := make([]byte, size)
	filler := content
	if size >= int64(len(riffHeader)) {
		copy(content, riffHeader)
		filler = content[len(riffHeader):]
	}
	for i := range filler {
		filler[i] = 0x42
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
