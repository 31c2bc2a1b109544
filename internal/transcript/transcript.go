// Package transcript defines the time-aligned text types shared by the
// caption fetcher, the speech recognizer, and the renderer.
package transcript

import "strings"

// Source identifies where a transcript came from.
type Source string

const (
	// SourceCaptions marks transcripts retrieved from an existing caption track.
	SourceCaptions Source = "captions"
	// SourceSpeech marks transcripts produced by the audio fallback pipeline.
	SourceSpeech Source = "speech"
)

// Segment is a single timestamped span of transcript text. Start and End are
// offsets in seconds from the beginning of the video.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Result is a complete transcript for one video.
type Result struct {
	Language string
	Source   Source
	Segments []Segment
}

// Text joins all non-empty segment texts with single spaces.
func (r Result) Text() string {
	parts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Empty reports whether the result carries no usable text.
func (r Result) Empty() bool {
	for _, seg := range r.Segments {
		if strings.TrimSpace(seg.Text) != "" {
			return false
		}
	}
	return true
}
