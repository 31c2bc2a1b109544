package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	langpkg "ytscribe/internal/language"
	"ytscribe/internal/transcript"
)

// Service provides Whisper transcription capabilities.
type Service struct {
	cfg           Config
	ffmpegBinary  string
	uvxBinary     string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a Whisper service with the given configuration.
func NewService(cfg Config, ffmpegBinary, uvxBinary string) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	if uvxBinary == "" {
		uvxBinary = UVXCommand
	}
	return &Service{
		cfg:          cfg,
		ffmpegBinary: ffmpegBinary,
		uvxBinary:    uvxBinary,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// ExtractWAV converts a downloaded audio file into a mono 16kHz WAV file.
// This method uses the service's command runner if configured.
func (s *Service) ExtractWAV(ctx context.Context, source, dest string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.ffmpegBinary, buildFFmpegExtractArgs(source, dest)...)
	}
	return ExtractWAV(ctx, s.ffmpegBinary, source, dest)
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe runs Whisper over an audio file and returns the recognized
// transcript. The source should be a WAV file produced by ExtractWAV.
// outputDir is where Whisper writes its JSON output.
func (s *Service) Transcribe(ctx context.Context, source, outputDir, language string) (transcript.Result, error) {
	var result transcript.Result

	if source == "" {
		return result, fmt.Errorf("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := s.buildArgs(source, outputDir, language)
	if err := s.run(ctx, s.uvxBinary, args...); err != nil {
		return result, fmt.Errorf("whisper: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	jsonPath := filepath.Join(outputDir, baseName+".json")

	payload, err := loadPayload(jsonPath)
	if err != nil {
		return result, fmt.Errorf("whisper output: %w", err)
	}

	result.Source = transcript.SourceSpeech
	result.Language = payload.Language
	if result.Language == "" {
		result.Language = language
	}
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}
	if result.Empty() {
		return result, fmt.Errorf("whisper recognized no speech in %s", filepath.Base(source))
	}
	return result, nil
}

// buildArgs constructs the uvx command arguments for Whisper.
func (s *Service) buildArgs(source, outputDir, language string) []string {
	model := s.cfg.Model
	if model == "" {
		model = DefaultModel
	}

	args := []string{
		"--from", "openai-whisper",
		"whisper",
		source,
		"--model", model,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--fp16", "False",
	}
	if lang := langpkg.ToISO2(language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

// payloadSegment is one transcribed span in Whisper's JSON output.
type payloadSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// payload is the JSON structure Whisper writes alongside the audio.
type payload struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []payloadSegment `json:"segments"`
}

func loadPayload(jsonPath string) (payload, error) {
	var p payload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse whisper json: %w", err)
	}
	return p, nil
}
