package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResolution marks failures to resolve a channel or video URL.
	ErrResolution = errors.New("resolution error")
	// ErrTranscriptUnavailable marks videos with no caption track. This is an
	// expected outcome and the only one that triggers the audio fallback.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	// ErrTransient marks retryable fetch failures (network, throttling). These
	// are surfaced, never treated as "no transcript".
	ErrTransient = errors.New("transient failure")
	// ErrDownload marks audio download failures.
	ErrDownload = errors.New("download error")
	// ErrTranscription marks speech recognition failures.
	ErrTranscription = errors.New("transcription error")
	// ErrConfiguration marks bad options caught before any processing starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks missing external resources (binaries, cookie files).
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsUnavailable reports whether err represents a missing transcript rather
// than a genuine failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrTranscriptUnavailable)
}

// IsFatal reports whether err should abort the whole run instead of failing a
// single video. Only configuration errors qualify.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
