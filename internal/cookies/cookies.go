// Package cookies resolves the cookie jar handed to yt-dlp and the caption
// fetcher. Cookies unlock age-restricted and members-only videos; everything
// else works without them.
package cookies

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ytscribe/internal/services"
)

// Supported browsers for cookie extraction.
var supportedBrowsers = map[string]struct{}{
	"brave":    {},
	"chrome":   {},
	"chromium": {},
	"edge":     {},
	"firefox":  {},
	"opera":    {},
	"safari":   {},
	"vivaldi":  {},
}

// BrowserExtractor exports a browser's cookies into a Netscape cookie file.
type BrowserExtractor interface {
	ExtractBrowserCookies(ctx context.Context, browser, destFile string) error
}

// Options selects the cookie source. FilePath wins over Browser when both are
// set; with neither, a cookies.txt in the working directory is picked up.
type Options struct {
	FilePath string
	Browser  string
	WorkDir  string
}

// Resolve returns the cookie file path to pass to downstream tools, or empty
// when no cookies apply. The returned cleanup removes any temporary file this
// call created and is safe to call exactly once.
func Resolve(ctx context.Context, opts Options, extractor BrowserExtractor) (string, func(), error) {
	noop := func() {}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", noop, services.Wrap(services.ErrConfiguration, "cookies", "resolve",
				fmt.Sprintf("cookie file %s", path), err)
		}
		return path, noop, nil
	}

	if browser := strings.ToLower(strings.TrimSpace(opts.Browser)); browser != "" {
		if _, ok := supportedBrowsers[browser]; !ok {
			return "", noop, services.Wrap(services.ErrConfiguration, "cookies", "resolve",
				fmt.Sprintf("unsupported browser %q", browser), nil)
		}
		if extractor == nil {
			return "", noop, services.Wrap(services.ErrConfiguration, "cookies", "resolve",
				"browser extraction not available", nil)
		}
		tmp, err := os.CreateTemp("", "ytscribe-cookies-*.txt")
		if err != nil {
			return "", noop, services.Wrap(services.ErrConfiguration, "cookies", "resolve",
				"create temp cookie file", err)
		}
		path := tmp.Name()
		tmp.Close()
		cleanup := func() { os.Remove(path) }
		if err := extractor.ExtractBrowserCookies(ctx, browser, path); err != nil {
			cleanup()
			return "", noop, services.Wrap(services.ErrConfiguration, "cookies", "extract",
				fmt.Sprintf("cookies from %s", browser), err)
		}
		return path, cleanup, nil
	}

	if opts.WorkDir != "" {
		implicit := filepath.Join(opts.WorkDir, "cookies.txt")
		if _, err := os.Stat(implicit); err == nil {
			return implicit, noop, nil
		}
	}

	return "", noop, nil
}
