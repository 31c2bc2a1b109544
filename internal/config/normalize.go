package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.normalizeTranscripts()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = ExpandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
}

func (c *Config) normalizeTranscripts() {
	languages := make([]string, 0, len(c.Transcripts.Languages))
	for _, lang := range c.Transcripts.Languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang != "" {
			languages = append(languages, lang)
		}
	}
	if len(languages) == 0 {
		languages = []string{defaultCaptionsLanguage}
	}
	c.Transcripts.Languages = languages
	if c.Transcripts.RequestTimeout <= 0 {
		c.Transcripts.RequestTimeout = defaultRequestTimeout
	}
	if strings.TrimSpace(c.Transcripts.UserAgent) == "" {
		c.Transcripts.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.YtDlp) == "" {
		c.Tools.YtDlp = defaultYtDlpBinary
	}
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Tools.Uvx) == "" {
		c.Tools.Uvx = defaultUvxBinary
	}
	if strings.TrimSpace(c.Tools.WhisperModel) == "" {
		c.Tools.WhisperModel = defaultWhisperModel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
