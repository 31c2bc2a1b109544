// Package speech implements the audio fallback pipeline for videos without
// captions. It downloads the audio track, converts it to a WAV file Whisper
// accepts, and runs speech recognition over the result. All intermediate
// files live in a per-video scratch directory that is removed when the
// pipeline returns, success or not.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/transcript"
)

// Downloader fetches a video's audio track into a directory and returns the
// path of the downloaded file.
type Downloader interface {
	DownloadAudio(ctx context.Context, videoURL, destDir, cookieFile string) (string, error)
}

// Recognizer converts audio into a transcript.
type Recognizer interface {
	ExtractWAV(ctx context.Context, source, dest string) error
	Transcribe(ctx context.Context, source, outputDir, language string) (transcript.Result, error)
}

// Pipeline runs download, conversion, and recognition for one video at a time.
type Pipeline struct {
	downloader Downloader
	recognizer Recognizer
	workDir    string
	logger     *slog.Logger
}

// NewPipeline wires a fallback pipeline. workDir is the parent for per-video
// scratch directories and is created on first use.
func NewPipeline(downloader Downloader, recognizer Recognizer, workDir string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		downloader: downloader,
		recognizer: recognizer,
		workDir:    workDir,
		logger:     logger,
	}
}

// Transcribe produces a speech-recognized transcript for the given video.
// Every intermediate artifact is confined to a scratch directory under the
// pipeline's work dir and deleted before returning.
func (p *Pipeline) Transcribe(ctx context.Context, videoID, videoURL, cookieFile, language string) (transcript.Result, error) {
	var result transcript.Result

	if videoID == "" || videoURL == "" {
		return result, services.Wrap(services.ErrDownload, "fallback", "prepare", "video ID and URL required", nil)
	}

	if err := os.MkdirAll(p.workDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrDownload, "fallback", "prepare", "create work dir", err)
	}
	scratch, err := os.MkdirTemp(p.workDir, videoID+"-")
	if err != nil {
		return result, services.Wrap(services.ErrDownload, "fallback", "prepare", "create scratch dir", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			p.logger.Warn("scratch cleanup failed", logging.VideoID(videoID), logging.Error(err))
		}
	}()

	p.logger.Info("downloading audio", logging.VideoID(videoID), logging.Stage("fallback"))
	audioPath, err := p.downloader.DownloadAudio(ctx, videoURL, scratch, cookieFile)
	if err != nil {
		return result, services.Wrap(services.ErrDownload, "fallback", "download", fmt.Sprintf("audio for %s", videoID), err)
	}

	wavPath := filepath.Join(scratch, videoID+".wav")
	if err := p.recognizer.ExtractWAV(ctx, audioPath, wavPath); err != nil {
		return result, services.Wrap(services.ErrTranscription, "fallback", "convert", fmt.Sprintf("wav for %s", videoID), err)
	}

	p.logger.Info("transcribing audio", logging.VideoID(videoID), logging.Stage("fallback"))
	result, err = p.recognizer.Transcribe(ctx, wavPath, scratch, language)
	if err != nil {
		return transcript.Result{}, services.Wrap(services.ErrTranscription, "fallback", "recognize", fmt.Sprintf("speech for %s", videoID), err)
	}
	if result.Empty() {
		return transcript.Result{}, services.Wrap(services.ErrTranscription, "fallback", "recognize", fmt.Sprintf("no speech recognized for %s", videoID), nil)
	}
	result.Source = transcript.SourceSpeech
	return result, nil
}
