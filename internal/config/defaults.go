package config

const (
	defaultOutputDir        = "~/ytscribe/output"
	defaultLogDir           = "~/.local/share/ytscribe/logs"
	defaultWorkDir          = "~/.local/share/ytscribe/work"
	defaultOutputFormat     = "markdown"
	defaultRequestTimeout   = 30
	defaultUserAgent        = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
	defaultYtDlpBinary      = "yt-dlp"
	defaultFFmpegBinary     = "ffmpeg"
	defaultUvxBinary        = "uvx"
	defaultWhisperModel     = "small"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultCaptionsLanguage = "en"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			WorkDir:   defaultWorkDir,
		},
		Output: Output{
			Format:       defaultOutputFormat,
			MergeChannel: true,
		},
		Transcripts: Transcripts{
			Languages:      []string{defaultCaptionsLanguage},
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
		},
		Tools: Tools{
			YtDlp:        defaultYtDlpBinary,
			FFmpeg:       defaultFFmpegBinary,
			Uvx:          defaultUvxBinary,
			WhisperModel: defaultWhisperModel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
