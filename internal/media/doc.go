// Package media wraps the ffmpeg and ffprobe binaries and implements the
// clip export and overwrite executors.
package media
