// Package whisper provides speech-to-text transcription over downloaded
// audio files.
//
// This package handles:
//   - WAV extraction from downloaded audio (mono, 16kHz)
//   - Whisper invocation through uvx
//   - Transcript segment extraction from the JSON output
//
// It is the fallback path for videos that publish no captions.
package whisper
