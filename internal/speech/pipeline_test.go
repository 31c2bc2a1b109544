package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/services"
	"ytscribe/internal/transcript"
)

type fakeDownloader struct {
	err     error
	lastDir string
}

func (f *fakeDownloader) DownloadAudio(ctx context.Context, videoURL, destDir, cookieFile string) (string, error) {
	f.lastDir = destDir
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(destDir, "vid1.m4a")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeRecognizer struct {
	extractErr    error
	transcribeErr error
	result        transcript.Result
}

func (f *fakeRecognizer) ExtractWAV(ctx context.Context, source, dest string) error {
	if f.extractErr != nil {
		return f.extractErr
	}
	return os.WriteFile(dest, []byte("wav"), 0o644)
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, source, outputDir, language string) (transcript.Result, error) {
	if f.transcribeErr != nil {
		return transcript.Result{}, f.transcribeErr
	}
	return f.result, nil
}

func speechResult() transcript.Result {
	return transcript.Result{
		Language: "en",
		Segments: []transcript.Segment{{Start: 0, End: 2, Text: "hello there"}},
	}
}

func TestPipelineTranscribe(t *testing.T) {
	workDir := t.TempDir()
	downloader := &fakeDownloader{}
	pipeline := NewPipeline(downloader, &fakeRecognizer{result: speechResult()}, workDir, nil)

	result, err := pipeline.Transcribe(context.Background(), "vid1", "https://youtu.be/vid1", "", "en")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if result.Source != transcript.SourceSpeech {
		t.Fatalf("expected speech source, got %s", result.Source)
	}
	if result.Text() != "hello there" {
		t.Fatalf("unexpected text %q", result.Text())
	}
	if !strings.HasPrefix(filepath.Base(downloader.lastDir), "vid1-") {
		t.Fatalf("expected per-video scratch dir, got %s", downloader.lastDir)
	}
	assertNoScratch(t, workDir)
}

func TestPipelineCleansUpOnFailure(t *testing.T) {
	workDir := t.TempDir()
	pipeline := NewPipeline(&fakeDownloader{}, &fakeRecognizer{transcribeErr: errors.New("boom")}, workDir, nil)

	_, err := pipeline.Transcribe(context.Background(), "vid1", "https://youtu.be/vid1", "", "")
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error, got %v", err)
	}
	assertNoScratch(t, workDir)
}

func TestPipelineDownloadFailure(t *testing.T) {
	workDir := t.TempDir()
	pipeline := NewPipeline(&fakeDownloader{err: errors.New("403")}, &fakeRecognizer{}, workDir, nil)

	_, err := pipeline.Transcribe(context.Background(), "vid1", "https://youtu.be/vid1", "", "")
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected download error, got %v", err)
	}
	assertNoScratch(t, workDir)
}

func TestPipelineEmptyTranscript(t *testing.T) {
	workDir := t.TempDir()
	pipeline := NewPipeline(&fakeDownloader{}, &fakeRecognizer{}, workDir, nil)

	_, err := pipeline.Transcribe(context.Background(), "vid1", "https://youtu.be/vid1", "", "")
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription error for empty result, got %v", err)
	}
	assertNoScratch(t, workDir)
}

func TestPipelineRejectsMissingIdentity(t *testing.T) {
	pipeline := NewPipeline(&fakeDownloader{}, &fakeRecognizer{}, t.TempDir(), nil)
	if _, err := pipeline.Transcribe(context.Background(), "", "", "", ""); err == nil {
		t.Fatal("expected error for missing video identity")
	}
}

func assertNoScratch(t *testing.T, workDir string) {
	t.Helper()
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch dirs removed, found %d entries", len(entries))
	}
}
