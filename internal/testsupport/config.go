package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"clipvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.ExportsDir = filepath.Join(base, "exports")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	for _, dir := range []string{cfgVal.Paths.LibraryDir, cfgVal.Paths.ExportsDir, cfgVal.Paths.StagingDir, cfgVal.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOllamaEndpoint points the analysis client at a test server.
func WithOllamaEndpoint(endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ollama.Endpoint = endpoint
	}
}

// WithImportBatchSize overrides the import grouping size.
func WithImportBatchSize(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.ImportBatchSize = size
	}
}

// WithStubbedBinaries writes exit-0 stub executables for the provided names
// and prepends them to PATH. If names is empty, every external binary the
// executors shell out to is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "yt-dlp", "whisper"}
		}
		for _, name := range names {
			b.stub(name, "#!/bin/sh\nexit 0\n")
		}
	}
}

// WithStubScript installs a binary stub with custom shell behavior on PATH.
func WithStubScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		b.stub(name, script)
	}
}

func (b *configBuilder) stub(name, script string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
