package captions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ytscribe/internal/services"
	"ytscribe/internal/transcript"
)

// HTTPDoer describes the HTTP client used by the caption fetcher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	watchPageURL = "https://www.youtube.com/watch?v=%s"

	// Watch pages can exceed a megabyte; anything larger than this is not a
	// normal player response.
	maxPageBytes = 20 << 20
)

// Client fetches caption tracks for individual videos.
type Client struct {
	client    HTTPDoer
	userAgent string
}

// Option configures the caption client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (used in tests).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// WithUserAgent overrides the User-Agent header sent to YouTube.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if strings.TrimSpace(agent) != "" {
			c.userAgent = agent
		}
	}
}

// NewClient constructs a caption client. The default HTTP client applies the
// given timeout per request.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		client:    &http.Client{Timeout: timeout},
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// track is one entry of the player response caption track list.
type track struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// Fetch retrieves the transcript for videoID, preferring the first matching
// entry of languages. Errors are tagged services.ErrTranscriptUnavailable
// when the video has no caption track, and services.ErrTransient for
// retryable fetch failures.
func (c *Client) Fetch(ctx context.Context, videoID string, languages []string) (transcript.Result, error) {
	var result transcript.Result

	page, err := c.get(ctx, fmt.Sprintf(watchPageURL, videoID))
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "captions", "fetch watch page", videoID, err)
	}

	tracks, err := extractTracks(page)
	if err != nil {
		// Only a genuinely caption-less video counts as unavailable. A
		// captcha wall or a garbled page is a retryable fetch problem, and
		// must never send the video down the audio fallback.
		marker := services.ErrTranscriptUnavailable
		if errors.Is(err, errPageUnusable) {
			marker = services.ErrTransient
		}
		return result, services.Wrap(marker, "captions", "list tracks", videoID, err)
	}

	chosen := pickTrack(tracks, languages)
	trackURL := chosen.BaseURL
	if strings.Contains(trackURL, "?") {
		trackURL += "&fmt=json3"
	} else {
		trackURL += "?fmt=json3"
	}

	body, err := c.get(ctx, trackURL)
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "captions", "download track", videoID, err)
	}

	segments, err := parseJSON3(body)
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "captions", "parse track", videoID, err)
	}
	if len(segments) == 0 {
		return result, services.Wrap(services.ErrTranscriptUnavailable, "captions", "parse track",
			fmt.Sprintf("%s: track %s contained no text", videoID, chosen.LanguageCode), nil)
	}

	result.Language = chosen.LanguageCode
	result.Source = transcript.SourceCaptions
	result.Segments = segments
	return result, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// errPageUnusable tags extractTracks failures where the watch page itself is
// bad (captcha wall, truncated or garbled player response). These are
// retryable, unlike a video that simply publishes no captions.
var errPageUnusable = errors.New("watch page unusable")

// extractTracks pulls the caption track list out of the embedded player
// response. The watch page inlines it as `"captions":{...}` followed by
// `,"videoDetails"`.
func extractTracks(page []byte) ([]track, error) {
	body := string(page)
	_, after, found := strings.Cut(body, `"captions":`)
	if !found {
		if strings.Contains(body, `class="g-recaptcha"`) {
			// A captcha wall is rate limiting, not a missing transcript.
			return nil, fmt.Errorf("%w: request was served a captcha page", errPageUnusable)
		}
		return nil, fmt.Errorf("no caption data on watch page")
	}

	end := strings.Index(after, `,"videoDetails"`)
	if end < 0 {
		return nil, fmt.Errorf("%w: malformed player response", errPageUnusable)
	}

	var payload struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []track `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	if err := json.Unmarshal([]byte(after[:end]), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode caption tracks: %v", errPageUnusable, err)
	}

	tracks := payload.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("captions disabled for this video")
	}
	return tracks, nil
}

// pickTrack returns the first track whose language matches the preference
// list, preferring manually created tracks over auto-generated ("asr") ones
// within the same language. Falls back to the first track.
func pickTrack(tracks []track, languages []string) track {
	for _, lang := range languages {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		var autoMatch *track
		for i := range tracks {
			code := strings.ToLower(tracks[i].LanguageCode)
			if code != lang && !strings.HasPrefix(code, lang+"-") {
				continue
			}
			if tracks[i].Kind != "asr" {
				return tracks[i]
			}
			if autoMatch == nil {
				autoMatch = &tracks[i]
			}
		}
		if autoMatch != nil {
			return *autoMatch
		}
	}
	return tracks[0]
}

// parseJSON3 converts a json3 caption payload into transcript segments.
func parseJSON3(body []byte) ([]transcript.Segment, error) {
	var payload struct {
		Events []struct {
			StartMs    int64 `json:"tStartMs"`
			DurationMs int64 `json:"dDurationMs"`
			Segs       []struct {
				UTF8 string `json:"utf8"`
			} `json:"segs"`
		} `json:"events"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode json3: %w", err)
	}

	segments := make([]transcript.Segment, 0, len(payload.Events))
	for _, event := range payload.Events {
		var b strings.Builder
		for _, seg := range event.Segs {
			b.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(b.String(), "\n", " "))
		if text == "" {
			continue
		}
		start := float64(event.StartMs) / 1000
		segments = append(segments, transcript.Segment{
			Start: start,
			End:   start + float64(event.DurationMs)/1000,
			Text:  text,
		})
	}
	return segments, nil
}
