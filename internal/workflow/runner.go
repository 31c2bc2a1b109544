package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/queue"
	"ytscribe/internal/render"
	"ytscribe/internal/services"
	"ytscribe/internal/services/ytdlp"
	"ytscribe/internal/transcript"
)

// Fetcher retrieves an existing caption transcript for a video.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string, languages []string) (transcript.Result, error)
}

// Resolver turns a target URL into video metadata.
type Resolver interface {
	ResolveChannel(ctx context.Context, channelURL, cookieFile string, fn func(ytdlp.Video) error) error
	FetchVideo(ctx context.Context, videoURL, cookieFile string) (ytdlp.Video, error)
}

// Fallback produces a speech-recognized transcript when captions are missing.
type Fallback interface {
	Transcribe(ctx context.Context, videoID, videoURL, cookieFile, language string) (transcript.Result, error)
}

// Options parameterizes a single run.
type Options struct {
	Target        ytdlp.Target
	CookieFile    string
	AudioFallback bool
	Format        render.Format
	Languages     []string
	OutputDir     string
	MergedFile    string
	MergeChannel  bool
}

// Runner executes transcript runs one video at a time.
type Runner struct {
	cfg      *config.Config
	store    *queue.Store
	resolver Resolver
	fetcher  Fetcher
	fallback Fallback
	logger   *slog.Logger
}

// NewRunner wires a runner. fallback may be nil when the audio path is
// disabled.
func NewRunner(cfg *config.Config, store *queue.Store, resolver Resolver, fetcher Fetcher, fallback Fallback, logger *slog.Logger) (*Runner, error) {
	if cfg == nil || store == nil || resolver == nil || fetcher == nil {
		return nil, errors.New("runner requires config, store, resolver, and fetcher")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		fetcher:  fetcher,
		fallback: fallback,
		logger:   logger,
	}, nil
}

// Run processes the target sequentially and returns a summary. The progress
// store is guarded by a file lock for the duration of the run; a second
// concurrent run fails fast.
func (r *Runner) Run(ctx context.Context, opts Options) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString(), Target: opts.Target.URL}
	started := time.Now()

	if opts.AudioFallback && r.fallback == nil {
		return summary, services.Wrap(services.ErrConfiguration, "run", "prepare", "audio fallback requested but not wired", nil)
	}
	if opts.Format == "" {
		opts.Format = render.FormatMarkdown
	}
	if opts.OutputDir == "" {
		opts.OutputDir = r.cfg.Paths.OutputDir
	}

	lock := flock.New(filepath.Join(r.cfg.Paths.LogDir, "ytscribe.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return summary, services.Wrap(services.ErrConfiguration, "run", "lock", "another run is already active", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("release run lock failed", logging.Error(err))
		}
	}()

	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))
	logger.Info("run started", logging.String("target", opts.Target.URL), logging.String("kind", string(opts.Target.Kind)))

	var documents []render.Document
	var channelName, channelURL string

	process := func(video ytdlp.Video) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if channelName == "" {
			channelName = video.Channel
		}
		if channelURL == "" {
			channelURL = video.ChannelURL
		}
		outcome := r.processVideo(ctx, logger, video, opts)
		summary.record(outcome)
		if outcome.Document != nil {
			documents = append(documents, *outcome.Document)
		}
		return nil
	}

	switch opts.Target.Kind {
	case ytdlp.TargetVideo:
		video, err := r.resolver.FetchVideo(ctx, opts.Target.URL, opts.CookieFile)
		if err != nil {
			return summary, services.Wrap(services.ErrResolution, "run", "resolve video", opts.Target.URL, err)
		}
		if err := process(video); err != nil {
			return summary, err
		}
	case ytdlp.TargetChannel:
		err := r.resolver.ResolveChannel(ctx, opts.Target.URL, opts.CookieFile, process)
		if err != nil {
			if errors.Is(err, ctx.Err()) && ctx.Err() != nil {
				return summary, err
			}
			return summary, services.Wrap(services.ErrResolution, "run", "resolve channel", opts.Target.URL, err)
		}
	default:
		return summary, services.Wrap(services.ErrConfiguration, "run", "prepare", fmt.Sprintf("unknown target kind %q", opts.Target.Kind), nil)
	}

	if r.shouldMerge(opts) && len(documents) > 0 {
		path, err := r.writeChannelDocument(channelName, channelURL, documents, opts)
		if err != nil {
			return summary, err
		}
		summary.MergedPath = path
		logger.Info("channel document written", logging.String("path", path))
	}

	summary.Elapsed = time.Since(started)
	logger.Info("run finished",
		logging.Int("completed", summary.Completed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", len(summary.Failures)),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func (r *Runner) shouldMerge(opts Options) bool {
	if opts.MergedFile != "" {
		return true
	}
	return opts.Target.Kind == ytdlp.TargetChannel && (opts.MergeChannel || r.cfg.Output.MergeChannel)
}
