package deps

import "ytscribe/internal/config"

// Default lists the external tools the pipeline shells out to. Whisper runs
// through uvx, so uvx and ffmpeg are only needed when the audio fallback is
// enabled; they are flagged optional here and enforced at run time.
func Default(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Tools.YtDlp,
			Description: "channel enumeration, metadata, and audio download",
		},
		{
			Name:        "ffmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "audio conversion for speech recognition",
			Optional:    true,
		},
		{
			Name:        "uvx",
			Command:     cfg.Tools.Uvx,
			Description: "runs Whisper for the audio fallback",
			Optional:    true,
		},
	}
}

// MissingRequired returns the names of unavailable non-optional tools. When
// audio is true the fallback tools count as required too.
func MissingRequired(statuses []Status, audio bool) []string {
	var missing []string
	for _, status := range statuses {
		if status.Available {
			continue
		}
		if status.Optional && !audio {
			continue
		}
		missing = append(missing, status.Name)
	}
	return missing
}
