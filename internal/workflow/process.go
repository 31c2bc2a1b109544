package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ytscribe/internal/fileutil"
	"ytscribe/internal/logging"
	"ytscribe/internal/queue"
	"ytscribe/internal/render"
	"ytscribe/internal/services"
	"ytscribe/internal/services/ytdlp"
	"ytscribe/internal/transcript"
)

// Outcome is the result of dispatching one video.
type Outcome struct {
	VideoID    string
	Title      string
	Status     queue.Status
	Skipped    bool
	Source     transcript.Source
	OutputPath string
	Err        error
	Document   *render.Document
}

func (r *Runner) processVideo(ctx context.Context, logger *slog.Logger, video ytdlp.Video, opts Options) Outcome {
	outcome := Outcome{VideoID: video.ID, Title: video.Title}
	log := logger.With(logging.VideoID(video.ID))

	item, err := r.store.Upsert(ctx, video.ID, video.Title, video.ChannelURL)
	if err != nil {
		return outcome.failed(fmt.Errorf("record video: %w", err))
	}
	if !item.ShouldProcess() {
		log.Info("already completed, skipping", logging.Stage("dispatch"))
		outcome.Status = queue.StatusCompleted
		outcome.OutputPath = item.OutputPath
		outcome.Skipped = true
		return outcome
	}

	if video.Live() {
		// A running or scheduled broadcast has no transcript to fetch, and
		// an audio download of it would never finish. The record stays
		// failed so a later run picks the video up once the stream ends.
		return r.fail(ctx, log, outcome, fmt.Errorf("live or upcoming stream, no transcript yet"))
	}

	if err := r.store.SetStatus(ctx, video.ID, queue.StatusFetching); err != nil {
		return outcome.failed(fmt.Errorf("mark fetching: %w", err))
	}
	log.Info("fetching captions", logging.Stage("fetching"))

	result, err := r.fetcher.Fetch(ctx, video.ID, opts.Languages)
	if err != nil {
		if !services.IsUnavailable(err) {
			return r.fail(ctx, log, outcome, err)
		}
		if !opts.AudioFallback {
			return r.fail(ctx, log, outcome, err)
		}
		result, err = r.transcribeAudio(ctx, log, video, opts)
		if err != nil {
			return r.fail(ctx, log, outcome, err)
		}
	}

	doc := render.Document{
		Title:      video.Title,
		VideoID:    video.ID,
		URL:        video.URL,
		Channel:    video.Channel,
		UploadDate: video.UploadDate,
		Transcript: result,
	}
	path, err := r.writeVideoDocument(doc, video, opts)
	if err != nil {
		return r.fail(ctx, log, outcome, err)
	}

	if err := r.store.MarkCompleted(ctx, video.ID, result.Source, path); err != nil {
		return outcome.failed(fmt.Errorf("mark completed: %w", err))
	}
	log.Info("transcript written",
		logging.Stage("completed"),
		logging.String("source", string(result.Source)),
		logging.String("path", path))

	outcome.Status = queue.StatusCompleted
	outcome.Source = result.Source
	outcome.OutputPath = path
	outcome.Document = &doc
	return outcome
}

func (r *Runner) transcribeAudio(ctx context.Context, log *slog.Logger, video ytdlp.Video, opts Options) (transcript.Result, error) {
	if err := r.store.SetStatus(ctx, video.ID, queue.StatusTranscribing); err != nil {
		return transcript.Result{}, fmt.Errorf("mark transcribing: %w", err)
	}
	log.Info("no captions, falling back to audio", logging.Stage("transcribing"))

	language := ""
	if len(opts.Languages) > 0 {
		language = opts.Languages[0]
	}
	return r.fallback.Transcribe(ctx, video.ID, video.URL, opts.CookieFile, language)
}

func (r *Runner) fail(ctx context.Context, log *slog.Logger, outcome Outcome, cause error) Outcome {
	if err := r.store.MarkFailed(ctx, outcome.VideoID, cause.Error()); err != nil {
		log.Warn("mark failed errored", logging.Error(err))
	}
	log.Warn("video failed", logging.Stage("failed"), logging.Error(cause))
	return outcome.failed(cause)
}

func (o Outcome) failed(err error) Outcome {
	o.Status = queue.StatusFailed
	o.Err = err
	return o
}

func (r *Runner) writeVideoDocument(doc render.Document, video ytdlp.Video, opts Options) (string, error) {
	content, err := render.Render(doc, opts.Format)
	if err != nil {
		return "", err
	}

	dir := opts.OutputDir
	if channelDir := fileutil.SafeName(video.Channel); channelDir != "" {
		dir = filepath.Join(dir, channelDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure output dir: %w", err)
	}

	path := filepath.Join(dir, video.ID+opts.Format.Extension())
	if err := fileutil.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

func (r *Runner) writeChannelDocument(channelName, channelURL string, documents []render.Document, opts Options) (string, error) {
	content, err := render.RenderChannel(render.ChannelDocument{
		Name:   channelName,
		URL:    channelURL,
		Videos: documents,
	}, opts.Format)
	if err != nil {
		return "", err
	}

	name := opts.MergedFile
	if name == "" {
		name = fileutil.SafeName(channelName)
	}
	if name == "" {
		name = "YouTube_Channel"
	}
	if filepath.Ext(name) == "" {
		name += opts.Format.Extension()
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.OutputDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("ensure output dir: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write channel document: %w", err)
	}
	return path, nil
}
