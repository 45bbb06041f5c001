// Package analysis turns library videos into transcripts and AI analysis
// reports. Transcription runs the whisper CLI over extracted audio and stores
// an SRT file beside the video. Analysis chunks the transcript, asks an
// Ollama model for notable sections and key quotes, and streams the results
// into a plain-text report.
package analysis
