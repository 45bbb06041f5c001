package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Queue.ImportBatchSize != defaultImportBatchSize {
		t.Fatalf("expected default batch size, got %d", cfg.Queue.ImportBatchSize)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("expected default ffmpeg binary, got %q", cfg.Tools.FFmpeg)
	}
	if !filepath.IsAbs(cfg.Paths.LibraryDir) {
		t.Fatalf("expected expanded library dir, got %q", cfg.Paths.LibraryDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
library_dir = "` + filepath.Join(dir, "lib") + `"
exports_dir = "` + filepath.Join(dir, "exports") + `"
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[ollama]
endpoint = "http://localhost:11434/"
timeout_seconds = 0

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Ollama.Endpoint != "http://localhost:11434" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Ollama.Endpoint)
	}
	if cfg.Ollama.TimeoutSeconds != defaultOllamaTimeout {
		t.Fatalf("expected default timeout restored, got %d", cfg.Ollama.TimeoutSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging settings, got %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadLevel(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad level")
	}
}

func TestValidateRejectsRelativeOllamaEndpoint(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Ollama.Endpoint = "localhost:11434"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for relative endpoint")
	}
}

func TestEnsureDirectoriesCreatesRequired(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.LibraryDir = filepath.Join(dir, "lib")
	cfg.Paths.ExportsDir = filepath.Join(dir, "exports")
	cfg.Paths.StagingDir = filepath.Join(dir, "staging")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{cfg.Paths.ExportsDir, cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", d, err)
		}
	}
}

func TestCreateSampleWritesEmbeddedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample config missing [paths] section")
	}
}

func TestSocketAndLogPathsDeriveFromLogDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.LogDir = "/var/log/clipvault"
	if cfg.SocketPath() != "/var/log/clipvault/clipvault.sock" {
		t.Fatalf("unexpected socket path %q", cfg.SocketPath())
	}
	if cfg.LogPath() != "/var/log/clipvault/clipvault.log" {
		t.Fatalf("unexpected log path %q", cfg.LogPath())
	}
}
