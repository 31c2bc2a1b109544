package whisper

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExtractWAV converts a downloaded audio file into a mono 16kHz WAV file
// suitable for Whisper.
func ExtractWAV(ctx context.Context, ffmpegBinary, source, dest string) error {
	if source == "" {
		return fmt.Errorf("extract wav: source path required")
	}
	if dest == "" {
		return fmt.Errorf("extract wav: destination path required")
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, buildFFmpegExtractArgs(source, dest)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildFFmpegExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}
