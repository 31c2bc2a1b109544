// Package fileutil provides filesystem helpers for output documents and
// scratch space.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// WriteFileAtomic writes data to path through a temporary sibling file and a
// rename, so a crash mid-write never leaves a truncated document behind.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	tmpPath = ""
	return nil
}

// SafeName converts an arbitrary title into a filesystem-safe file name.
// Alphanumerics, spaces, hyphens, and underscores survive; everything else
// becomes an underscore. The result is trimmed and capped at 100 runes.
func SafeName(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	cleaned := strings.TrimRight(b.String(), " .")
	runes := []rune(cleaned)
	if len(runes) > 100 {
		cleaned = string(runes[:100])
	}
	return cleaned
}

// Exists reports whether a file or directory exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
