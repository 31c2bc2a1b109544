package fileutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/fileutil"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "doc.md")

	if err := fileutil.WriteFileAtomic(path, []byte("# hello\n"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "# hello\n" {
		t.Fatalf("unexpected contents: %q", data)
	}

	// Overwrite must replace, not append.
	if err := fileutil.WriteFileAtomic(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "x" {
		t.Fatalf("expected overwrite, got %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("leftover temp file %q", entry.Name())
		}
	}
}

func TestSafeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Plain Title", "Plain Title"},
		{"a/b\\c:d", "a_b_c_d"},
		{"trailing dots...", "trailing dots"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := fileutil.SafeName(tc.in); got != tc.want {
			t.Fatalf("SafeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := strings.Repeat("a", 150)
	if got := fileutil.SafeName(long); len([]rune(got)) != 100 {
		t.Fatalf("expected 100 runes, got %d", len([]rune(got)))
	}
}
