package config

const (
	defaultLibraryDir        = "~/videos/library"
	defaultExportsDir        = "~/videos/exports"
	defaultStagingDir        = "~/.local/share/clipvault/staging"
	defaultLogDir            = "~/.local/share/clipvault/logs"
	defaultDownloadFormat    = "bestvideo*+bestaudio/best"
	defaultDownloadTimeout   = 3600
	defaultWhisperModel      = "base"
	defaultWhisperLanguage   = "en"
	defaultOllamaEndpoint    = "http://127.0.0.1:11434"
	defaultOllamaModel       = "qwen2.5:7b"
	defaultOllamaTimeout     = 120
	defaultOllamaChunkMins   = 15
	defaultOllamaRequestRate = 30
	defaultImportBatchSize   = 3
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			ExportsDir: defaultExportsDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			YtDlp:   "yt-dlp",
			Whisper: "whisper",
		},
		Download: Download{
			Format:  defaultDownloadFormat,
			Timeout: defaultDownloadTimeout,
		},
		Whisper: Whisper{
			Model:    defaultWhisperModel,
			Language: defaultWhisperLanguage,
		},
		Ollama: Ollama{
			Endpoint:          defaultOllamaEndpoint,
			Model:             defaultOllamaModel,
			TimeoutSeconds:    defaultOllamaTimeout,
			ChunkMinutes:      defaultOllamaChunkMins,
			RequestsPerMinute: defaultOllamaRequestRate,
		},
		Queue: Queue{
			ImportBatchSize: defaultImportBatchSize,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Queue:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
