package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "ytscribe", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Output.Format != "markdown" {
		t.Fatalf("expected markdown default, got %q", cfg.Output.Format)
	}
	if !cfg.Output.MergeChannel {
		t.Fatal("expected merged channel document enabled by default")
	}
	if len(cfg.Transcripts.Languages) != 1 || cfg.Transcripts.Languages[0] != "en" {
		t.Fatalf("unexpected default languages: %v", cfg.Transcripts.Languages)
	}
	if cfg.Tools.YtDlp != "yt-dlp" {
		t.Fatalf("unexpected yt-dlp binary: %q", cfg.Tools.YtDlp)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[output]
format = "HTML"

[transcripts]
languages = [" EN ", "de", ""]

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config at %q", path)
	}
	if cfg.Output.Format != "html" {
		t.Fatalf("expected html after normalization, got %q", cfg.Output.Format)
	}
	if len(cfg.Transcripts.Languages) != 2 || cfg.Transcripts.Languages[0] != "en" || cfg.Transcripts.Languages[1] != "de" {
		t.Fatalf("unexpected languages: %v", cfg.Transcripts.Languages)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[output]\nformat = \"pdf\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "output.format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when file already exists")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.WorkDir = filepath.Join(base, "work")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.WorkDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist", dir)
		}
	}
}
