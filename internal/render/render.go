// Package render turns transcripts into Markdown or HTML documents. Rendering
// is pure: the same inputs always produce byte-identical output.
package render

import (
	"fmt"

	"ytscribe/internal/transcript"
)

// Document is one video's transcript ready for rendering.
type Document struct {
	Title      string
	VideoID    string
	URL        string
	Channel    string
	UploadDate string
	Transcript transcript.Result
}

// ChannelDocument is a merged document covering every completed video of a
// channel run.
type ChannelDocument struct {
	Name   string
	URL    string
	Videos []Document
}

// Render produces a single-video document in the requested format.
func Render(doc Document, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(doc), nil
	case FormatHTML:
		return renderHTML(doc)
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// RenderChannel produces the merged channel document in the requested format.
func RenderChannel(doc ChannelDocument, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return renderChannelMarkdown(doc), nil
	case FormatHTML:
		return renderChannelHTML(doc)
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

func watchURL(doc Document) string {
	if doc.URL != "" {
		return doc.URL
	}
	if doc.VideoID != "" {
		return "https://www.youtube.com/watch?v=" + doc.VideoID
	}
	return ""
}

func documentTitle(doc Document) string {
	if doc.Title != "" {
		return doc.Title
	}
	if doc.VideoID != "" {
		return doc.VideoID
	}
	return "Unknown Video"
}
