package render

import (
	"fmt"
	"html/template"
	"strings"
)

const htmlStyle = `body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 0 auto; padding: 20px; }
h1 { color: #333; border-bottom: 1px solid #eee; }
h2 { color: #444; margin-top: 30px; }
.video-transcript { margin-bottom: 40px; }
.metadata { color: #666; }
.separator { border-top: 1px dashed #ccc; margin: 30px 0; }`

var videoTemplate = template.Must(template.New("video").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
{{.Style}}
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
{{- if .URL}}
    <p class="metadata">Video: <a href="{{.URL}}">{{.URL}}</a></p>
{{- end}}
{{- if .Channel}}
    <p class="metadata">Channel: {{.Channel}}</p>
{{- end}}
{{- if .Published}}
    <p class="metadata">Published: {{.Published}}</p>
{{- end}}
{{- if .SourceLine}}
    <p class="metadata">{{.SourceLine}}</p>
{{- end}}
{{- if .Paragraphs}}
{{- range .Paragraphs}}
    <p>{{.}}</p>
{{- end}}
{{- else}}
    <p>{{.Notice}}</p>
{{- end}}
</body>
</html>
`))

var channelTemplate = template.Must(template.New("channel").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Transcripts for {{.Name}}</title>
    <style>
{{.Style}}
    </style>
</head>
<body>
    <h1>Transcripts for YouTube channel: {{.Name}}</h1>
    <p>Channel URL: <a href="{{.URL}}">{{.URL}}</a></p>
{{- range .Videos}}
    <div class="video-transcript">
        <h2><a href="{{.URL}}">{{.Title}}</a></h2>
{{- if .Paragraphs}}
{{- range .Paragraphs}}
        <p>{{.}}</p>
{{- end}}
{{- else}}
        <p>{{.Notice}}</p>
{{- end}}
    </div>
    <div class="separator"></div>
{{- end}}
</body>
</html>
`))

type htmlVideo struct {
	Title      string
	URL        string
	Channel    string
	Published  string
	SourceLine string
	Paragraphs []string
	Notice     string
	Style      template.CSS
}

type htmlChannel struct {
	Name   string
	URL    string
	Videos []htmlVideo
	Style  template.CSS
}

func toHTMLVideo(doc Document) htmlVideo {
	return htmlVideo{
		Title:      documentTitle(doc),
		URL:        watchURL(doc),
		Channel:    doc.Channel,
		Published:  formatUploadDate(doc.UploadDate),
		SourceLine: sourceLine(doc),
		Paragraphs: SplitParagraphs(doc.Transcript.Text()),
		Notice:     noTranscriptNotice,
		Style:      template.CSS(htmlStyle),
	}
}

func renderHTML(doc Document) (string, error) {
	var b strings.Builder
	if err := videoTemplate.Execute(&b, toHTMLVideo(doc)); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return b.String(), nil
}

func renderChannelHTML(doc ChannelDocument) (string, error) {
	data := htmlChannel{
		Name:  DisplayName(doc.Name),
		URL:   doc.URL,
		Style: template.CSS(htmlStyle),
	}
	for _, video := range doc.Videos {
		data.Videos = append(data.Videos, toHTMLVideo(video))
	}
	var b strings.Builder
	if err := channelTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render channel html: %w", err)
	}
	return b.String(), nil
}
