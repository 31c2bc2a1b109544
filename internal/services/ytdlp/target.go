package ytdlp

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// TargetKind distinguishes a single video from an enumerable collection.
type TargetKind string

const (
	// TargetVideo is a single watch/short/youtu.be URL.
	TargetVideo TargetKind = "video"
	// TargetChannel is a channel, handle, or playlist URL that must be
	// enumerated before processing.
	TargetChannel TargetKind = "channel"
)

// Target is a parsed command line argument.
type Target struct {
	Kind    TargetKind
	VideoID string
	URL     string
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseTarget normalizes a channel or video URL. Bare 11-character video IDs
// are accepted as a convenience.
func ParseTarget(arg string) (Target, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Target{}, fmt.Errorf("empty URL")
	}

	if videoIDPattern.MatchString(arg) {
		return Target{
			Kind:    TargetVideo,
			VideoID: arg,
			URL:     "https://www.youtube.com/watch?v=" + arg,
		}, nil
	}

	parsed, err := url.Parse(arg)
	if err != nil {
		return Target{}, fmt.Errorf("parse URL %q: %w", arg, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Target{}, fmt.Errorf("unsupported URL %q: expected an http(s) YouTube URL or a bare video ID", arg)
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := parsed.Query().Get("v"); id != "" {
			return Target{Kind: TargetVideo, VideoID: id, URL: arg}, nil
		}
		if rest, ok := strings.CutPrefix(parsed.Path, "/shorts/"); ok {
			if id, _, _ := strings.Cut(rest, "/"); id != "" {
				return Target{Kind: TargetVideo, VideoID: id, URL: arg}, nil
			}
		}
		return Target{Kind: TargetChannel, URL: arg}, nil
	case "youtu.be":
		id := strings.Trim(parsed.Path, "/")
		if slash := strings.IndexByte(id, '/'); slash >= 0 {
			id = id[:slash]
		}
		if id == "" {
			return Target{}, fmt.Errorf("no video ID in %q", arg)
		}
		return Target{Kind: TargetVideo, VideoID: id, URL: arg}, nil
	default:
		return Target{}, fmt.Errorf("not a YouTube URL: %q", arg)
	}
}
