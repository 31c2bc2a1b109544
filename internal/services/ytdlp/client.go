package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Video is the metadata yt-dlp reports for one video.
type Video struct {
	ID         string
	Title      string
	URL        string
	Channel    string
	ChannelURL string
	UploadDate string
	Duration   float64
	LiveStatus string
	IsLive     bool
}

// Live reports whether the video is a live or upcoming broadcast instead of
// a finished upload. Finished streams ("was_live") publish captions like any
// other video and are not treated as live.
func (v Video) Live() bool {
	switch v.LiveStatus {
	case "is_live", "is_upcoming", "post_live", "live", "upcoming":
		return true
	}
	return v.IsLive
}

// Option configures the CLI client.
type Option func(*Client)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// Client wraps the yt-dlp command line tool.
type Client struct {
	binary string
}

// NewClient constructs a client using defaults.
func NewClient(opts ...Option) *Client {
	client := &Client{binary: "yt-dlp"}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// flatEntry is one line of `--flat-playlist --dump-json` output.
type flatEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Channel    string  `json:"channel"`
	Uploader   string  `json:"uploader"`
	ChannelURL string  `json:"channel_url"`
	UploadDate string  `json:"upload_date"`
	Duration   float64 `json:"duration"`
	LiveStatus string  `json:"live_status"`
	IsLive     bool    `json:"is_live"`
}

// ErrStopEnumeration signals ResolveChannel to stop early without error.
var ErrStopEnumeration = errors.New("stop enumeration")

// ResolveChannel enumerates a channel's videos in upload order, calling fn
// once per video as yt-dlp emits it. The full list is never held in memory,
// so arbitrarily large channels stream through. fn may return
// ErrStopEnumeration to stop cleanly; any other error aborts and is returned.
func (c *Client) ResolveChannel(ctx context.Context, channelURL, cookieFile string, fn func(Video) error) error {
	if strings.TrimSpace(channelURL) == "" {
		return errors.New("channel URL required")
	}
	args := []string{"--flat-playlist", "--dump-json", "--no-warnings", "--ignore-no-formats-error"}
	args = appendCookieArgs(args, cookieFile)
	args = append(args, channelURL)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.binary, err)
	}

	var stopped bool
	var fnErr error
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry flatEntry
		if err := json.Unmarshal(line, &entry); err != nil || entry.ID == "" {
			continue
		}
		if err := fn(entry.toVideo(channelURL)); err != nil {
			fnErr = err
			stopped = true
			_ = cmd.Process.Kill()
			break
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if stopped {
		if errors.Is(fnErr, ErrStopEnumeration) {
			return nil
		}
		return fnErr
	}
	if scanErr != nil {
		return fmt.Errorf("read %s output: %w", c.binary, scanErr)
	}
	if waitErr != nil {
		return fmt.Errorf("%s failed: %w: %s", c.binary, waitErr, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func (e flatEntry) toVideo(channelURL string) Video {
	video := Video{
		ID:         e.ID,
		Title:      e.Title,
		URL:        e.URL,
		Channel:    e.Channel,
		ChannelURL: e.ChannelURL,
		UploadDate: e.UploadDate,
		Duration:   e.Duration,
		LiveStatus: e.LiveStatus,
		IsLive:     e.IsLive,
	}
	if video.Title == "" {
		video.Title = video.ID
	}
	if video.Channel == "" {
		video.Channel = e.Uploader
	}
	if video.ChannelURL == "" {
		video.ChannelURL = channelURL
	}
	if video.URL == "" {
		video.URL = "https://www.youtube.com/watch?v=" + video.ID
	}
	return video
}

// FetchVideo retrieves the full metadata for a single video URL.
func (c *Client) FetchVideo(ctx context.Context, videoURL, cookieFile string) (Video, error) {
	if strings.TrimSpace(videoURL) == "" {
		return Video{}, errors.New("video URL required")
	}
	args := []string{"--dump-json", "--skip-download", "--no-playlist", "--no-warnings"}
	args = appendCookieArgs(args, cookieFile)
	args = append(args, videoURL)

	output, err := c.run(ctx, args)
	if err != nil {
		return Video{}, err
	}

	var entry flatEntry
	if err := json.Unmarshal(bytes.TrimSpace(output), &entry); err != nil {
		return Video{}, fmt.Errorf("decode video metadata: %w", err)
	}
	if entry.ID == "" {
		return Video{}, fmt.Errorf("no video metadata for %s", videoURL)
	}
	video := entry.toVideo("")
	if video.URL == "" || strings.HasPrefix(video.URL, "https://www.youtube.com/watch?v=") {
		video.URL = videoURL
	}
	return video, nil
}

// DownloadAudio downloads the best audio stream for videoURL into destDir as
// m4a and returns the file path.
func (c *Client) DownloadAudio(ctx context.Context, videoURL, destDir, cookieFile string) (string, error) {
	if strings.TrimSpace(videoURL) == "" {
		return "", errors.New("video URL required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure audio dir: %w", err)
	}

	args := []string{
		"--no-playlist",
		"--no-warnings",
		"-f", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "m4a",
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
		"--no-simulate",
		"--print", "after_move:filepath",
	}
	args = appendCookieArgs(args, cookieFile)
	args = append(args, videoURL)

	output, err := c.run(ctx, args)
	if err != nil {
		return "", err
	}

	path := lastLine(output)
	if path == "" {
		return "", fmt.Errorf("%s reported no output file", c.binary)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("downloaded audio missing at %s: %w", path, err)
	}
	return path, nil
}

// ExtractBrowserCookies exports a browser's YouTube cookies into a Netscape
// cookie jar at destFile.
func (c *Client) ExtractBrowserCookies(ctx context.Context, browser, destFile string) error {
	if strings.TrimSpace(browser) == "" {
		return errors.New("browser name required")
	}
	if strings.TrimSpace(destFile) == "" {
		return errors.New("destination file required")
	}

	args := []string{
		"--cookies-from-browser", browser,
		"--cookies", destFile,
		"--skip-download",
		"--playlist-items", "0",
		"--no-warnings",
		"https://www.youtube.com",
	}
	if _, err := c.run(ctx, args); err != nil {
		return err
	}
	if _, err := os.Stat(destFile); err != nil {
		return fmt.Errorf("cookie export missing at %s: %w", destFile, err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return nil, fmt.Errorf("%s failed: %w: %s", c.binary, err, detail)
	}
	return stdout.Bytes(), nil
}

func appendCookieArgs(args []string, cookieFile string) []string {
	if strings.TrimSpace(cookieFile) != "" {
		args = append(args, "--cookies", cookieFile)
	}
	return args
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
