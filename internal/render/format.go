package render

import (
	"strings"

	"ytscribe/internal/services"
)

// Format selects the output document flavor.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a user-supplied format name. Unknown values are a
// configuration error so they are rejected before any video is processed.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "render", "parse format",
			"unknown output format "+value+" (expected markdown or html)", nil)
	}
}

// Extension returns the file extension for the format, with the leading dot.
func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".md"
}
