package render

import (
	"fmt"
	"strings"
)

const noTranscriptNotice = "No transcript available for this video."

func renderMarkdown(doc Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", documentTitle(doc))
	if url := watchURL(doc); url != "" {
		fmt.Fprintf(&b, "Video: %s\n\n", url)
	}
	if doc.Channel != "" {
		fmt.Fprintf(&b, "Channel: %s\n\n", doc.Channel)
	}
	if date := formatUploadDate(doc.UploadDate); date != "" {
		fmt.Fprintf(&b, "Published: %s\n\n", date)
	}
	if line := sourceLine(doc); line != "" {
		fmt.Fprintf(&b, "%s\n\n", line)
	}
	writeMarkdownBody(&b, doc)
	return b.String()
}

func renderChannelMarkdown(doc ChannelDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transcripts for YouTube channel: %s\n\n", DisplayName(doc.Name))
	if doc.URL != "" {
		fmt.Fprintf(&b, "Channel URL: %s\n\n", doc.URL)
	}
	for _, video := range doc.Videos {
		fmt.Fprintf(&b, "## %s - %s\n\n", documentTitle(video), watchURL(video))
		writeMarkdownBody(&b, video)
		b.WriteString("---\n\n")
	}
	return b.String()
}

func writeMarkdownBody(b *strings.Builder, doc Document) {
	paragraphs := SplitParagraphs(doc.Transcript.Text())
	if len(paragraphs) == 0 {
		fmt.Fprintf(b, "%s\n\n", noTranscriptNotice)
		return
	}
	for _, para := range paragraphs {
		fmt.Fprintf(b, "%s\n\n", para)
	}
}

func sourceLine(doc Document) string {
	if doc.Transcript.Source == "" {
		return ""
	}
	line := "Transcript source: " + string(doc.Transcript.Source)
	if doc.Transcript.Language != "" {
		line += " (" + doc.Transcript.Language + ")"
	}
	return line
}

// formatUploadDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD. Anything else
// passes through untouched.
func formatUploadDate(date string) string {
	if len(date) != 8 {
		return date
	}
	for _, r := range date {
		if r < '0' || r > '9' {
			return date
		}
	}
	return date[:4] + "-" + date[4:6] + "-" + date[6:]
}
