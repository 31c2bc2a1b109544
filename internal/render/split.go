package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ytscribe/internal/fileutil"
)

// Merged channel documents can outgrow what downstream tools accept, so the
// splitter breaks them into parts that stay under character and byte caps
// while keeping per-video H2 sections intact wherever possible. Splitting is
// lossless: concatenating the parts reproduces the input byte for byte.

const (
	DefaultSplitChars = 500_000
	DefaultSplitBytes = 200 << 20
)

// Splitter breaks a document into size-capped parts.
type Splitter struct {
	maxChars int
	maxBytes int
}

// NewSplitter constructs a splitter; non-positive caps fall back to the
// defaults.
func NewSplitter(maxChars, maxBytes int) *Splitter {
	if maxChars <= 0 {
		maxChars = DefaultSplitChars
	}
	if maxBytes <= 0 {
		maxBytes = DefaultSplitBytes
	}
	return &Splitter{maxChars: maxChars, maxBytes: maxBytes}
}

// Split returns the document's parts in order. A document already under the
// caps comes back as a single part.
func (s *Splitter) Split(content string) []string {
	if content == "" {
		return []string{""}
	}
	return s.pack(splitSections(content))
}

// SplitFile splits the document at path and writes <stem>_partN<ext> files
// into outputDir, defaulting to the input's own directory. Returns the paths
// written.
func (s *Splitter) SplitFile(path, outputDir string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	if outputDir == "" {
		outputDir = filepath.Dir(path)
	}

	parts := s.Split(string(data))
	written := make([]string, 0, len(parts))
	for i, part := range parts {
		out := filepath.Join(outputDir, fmt.Sprintf("%s_part%d%s", stem, i+1, ext))
		if err := fileutil.WriteFileAtomic(out, []byte(part), 0o644); err != nil {
			return written, fmt.Errorf("write part %d: %w", i+1, err)
		}
		written = append(written, out)
	}
	return written, nil
}

// splitSections cuts the document ahead of each H2 heading, trying Markdown
// first and HTML second. A document without H2s is one big section.
func splitSections(content string) []string {
	if parts := cutBefore(content, markdownH2At); len(parts) > 1 {
		return parts
	}
	if parts := cutBefore(content, htmlH2At); len(parts) > 1 {
		return parts
	}
	return []string{content}
}

func markdownH2At(content string, i int) bool {
	return strings.HasPrefix(content[i:], "\n## ")
}

func htmlH2At(content string, i int) bool {
	rest := content[i:]
	return len(rest) >= 3 && rest[0] == '<' && (rest[1] == 'h' || rest[1] == 'H') && rest[2] == '2'
}

// cutBefore splits content at every index where boundary reports true,
// keeping the boundary text with the section it starts.
func cutBefore(content string, boundary func(string, int) bool) []string {
	var parts []string
	start := 0
	for i := 1; i < len(content); i++ {
		if boundary(content, i) {
			parts = append(parts, content[start:i])
			start = i
		}
	}
	return append(parts, content[start:])
}

// pack greedily fills parts with whole sections. A section that alone
// exceeds the caps is broken down first, by paragraph, then by sentence,
// then by fixed windows as a last resort.
func (s *Splitter) pack(sections []string) []string {
	var parts []string
	var current strings.Builder
	curChars, curBytes := 0, 0

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
			curChars, curBytes = 0, 0
		}
	}
	add := func(piece string) {
		chars := len([]rune(piece))
		size := len(piece)
		if current.Len() > 0 && (curBytes+size > s.maxBytes || curChars+chars > s.maxChars) {
			flush()
		}
		current.WriteString(piece)
		curChars += chars
		curBytes += size
	}

	for _, section := range sections {
		if len(section) > s.maxBytes || len([]rune(section)) > s.maxChars {
			for _, piece := range s.breakDown(section) {
				add(piece)
			}
			continue
		}
		add(section)
	}
	flush()

	if len(parts) == 0 {
		return []string{strings.Join(sections, "")}
	}
	return parts
}

func (s *Splitter) breakDown(section string) []string {
	if parts := cutAfter(section, "\n\n"); len(parts) > 1 {
		return parts
	}
	if parts := cutAfterSentences(section); len(parts) > 1 {
		return parts
	}

	window := s.maxChars
	if half := s.maxBytes / 2; half > 0 && half < window {
		window = half
	}
	runes := []rune(section)
	parts := make([]string, 0, len(runes)/window+1)
	for i := 0; i < len(runes); i += window {
		end := i + window
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[i:end]))
	}
	return parts
}

// cutAfter splits content after each occurrence of sep, keeping sep with the
// preceding piece.
func cutAfter(content, sep string) []string {
	var parts []string
	start := 0
	for {
		idx := strings.Index(content[start:], sep)
		if idx < 0 {
			break
		}
		end := start + idx + len(sep)
		parts = append(parts, content[start:end])
		start = end
	}
	if start < len(content) {
		parts = append(parts, content[start:])
	}
	return parts
}

// cutAfterSentences splits after sentence terminators followed by
// whitespace, keeping the whitespace with the sentence it follows.
func cutAfterSentences(content string) []string {
	var parts []string
	runes := []rune(content)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t' || runes[j] == '\n' || runes[j] == '\r') {
			j++
		}
		if j == i+1 || j == len(runes) {
			continue
		}
		parts = append(parts, string(runes[start:j]))
		start = j
		i = j - 1
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}
