package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SplitParagraphs breaks a flat transcript into sentence-terminated
// paragraphs. A paragraph ends at '.', '!', or '?' followed by whitespace.
func SplitParagraphs(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var paragraphs []string
	var current strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if para := strings.TrimSpace(current.String()); para != "" {
				paragraphs = append(paragraphs, para)
			}
			current.Reset()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
		}
	}
	if para := strings.TrimSpace(current.String()); para != "" {
		paragraphs = append(paragraphs, para)
	}
	return paragraphs
}

// DisplayName normalizes a channel name or handle for use in headings.
// Separator punctuation becomes spaces and the result is title-cased.
func DisplayName(name string) string {
	var cleaned strings.Builder
	prevSpace := false
	for _, r := range strings.TrimPrefix(strings.TrimSpace(name), "@") {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	display := strings.TrimSpace(cleaned.String())
	if display == "" {
		return "YouTube Channel"
	}
	if display == strings.ToLower(display) {
		return cases.Title(language.Und).String(display)
	}
	return display
}
