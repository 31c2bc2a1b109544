package whisper

// Config captures runtime settings for Whisper transcription.
type Config struct {
	// Model is the Whisper model to use (e.g., "turbo", "base").
	Model string
}

// Whisper configuration constants.
const (
	DefaultModel = "small"
	OutputFormat = "json"
)

// Command names for external tools.
const (
	UVXCommand    = "uvx"
	FFmpegCommand = "ffmpeg"
)
