package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"ytscribe/internal/queue"
	"ytscribe/internal/render"
	"ytscribe/internal/services"
	"ytscribe/internal/services/ytdlp"
	"ytscribe/internal/testsupport"
	"ytscribe/internal/transcript"
)

type fakeResolver struct {
	videos []ytdlp.Video
}

func (f *fakeResolver) ResolveChannel(ctx context.Context, channelURL, cookieFile string, fn func(ytdlp.Video) error) error {
	for _, video := range f.videos {
		if err := fn(video); err != nil {
			if errors.Is(err, ytdlp.ErrStopEnumeration) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (f *fakeResolver) FetchVideo(ctx context.Context, videoURL, cookieFile string) (ytdlp.Video, error) {
	if len(f.videos) == 0 {
		return ytdlp.Video{}, errors.New("no such video")
	}
	return f.videos[0], nil
}

type fakeFetcher struct {
	results map[string]transcript.Result
	errs    map[string]error
	calls   map[string]int
}

func (f *fakeFetcher) Fetch(ctx context.Context, videoID string, languages []string) (transcript.Result, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[videoID]++
	if err := f.errs[videoID]; err != nil {
		return transcript.Result{}, err
	}
	return f.results[videoID], nil
}

type fakeFallback struct {
	results map[string]transcript.Result
	errs    map[string]error
	calls   map[string]int
}

func (f *fakeFallback) Transcribe(ctx context.Context, videoID, videoURL, cookieFile, language string) (transcript.Result, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[videoID]++
	if err := f.errs[videoID]; err != nil {
		return transcript.Result{}, err
	}
	return f.results[videoID], nil
}

func captionResult(text string) transcript.Result {
	return transcript.Result{
		Language: "en",
		Source:   transcript.SourceCaptions,
		Segments: []transcript.Segment{{Start: 0, End: 3, Text: text}},
	}
}

func speechResult(text string) transcript.Result {
	return transcript.Result{
		Language: "en",
		Source:   transcript.SourceSpeech,
		Segments: []transcript.Segment{{Start: 0, End: 3, Text: text}},
	}
}

func channelVideo(id, title string) ytdlp.Video {
	return ytdlp.Video{
		ID:         id,
		Title:      title,
		URL:        "https://www.youtube.com/watch?v=" + id,
		Channel:    "Go Talks",
		ChannelURL: "https://www.youtube.com/@gotalks",
	}
}

func channelTarget() ytdlp.Target {
	return ytdlp.Target{Kind: ytdlp.TargetChannel, URL: "https://www.youtube.com/@gotalks"}
}

func unavailable() error {
	return services.Wrap(services.ErrTranscriptUnavailable, "captions", "fetch", "no tracks", nil)
}

func TestRunChannelMixedOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	resolver := &fakeResolver{videos: []ytdlp.Video{
		channelVideo("vidAAAAAAA1", "Has Captions"),
		channelVideo("vidBBBBBBB2", "No Audio Either"),
		channelVideo("vidCCCCCCC3", "Speech Only"),
	}}
	fetcher := &fakeFetcher{
		results: map[string]transcript.Result{"vidAAAAAAA1": captionResult("From captions.")},
		errs: map[string]error{
			"vidBBBBBBB2": unavailable(),
			"vidCCCCCCC3": unavailable(),
		},
	}
	fallback := &fakeFallback{
		results: map[string]transcript.Result{"vidCCCCCCC3": speechResult("From speech.")},
		errs:    map[string]error{"vidBBBBBBB2": services.Wrap(services.ErrDownload, "fallback", "download", "403", nil)},
	}

	runner, err := NewRunner(cfg, store, resolver, fetcher, fallback, nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	summary, err := runner.Run(context.Background(), Options{
		Target:        channelTarget(),
		AudioFallback: true,
		Format:        render.FormatMarkdown,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Completed != 2 || summary.Skipped != 0 || len(summary.Failures) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Failures[0].VideoID != "vidBBBBBBB2" {
		t.Fatalf("unexpected failure: %+v", summary.Failures[0])
	}

	ctx := context.Background()
	itemA, _ := store.GetByVideoID(ctx, "vidAAAAAAA1")
	if itemA == nil || itemA.Status != queue.StatusCompleted || itemA.Source != transcript.SourceCaptions {
		t.Fatalf("unexpected item A: %+v", itemA)
	}
	itemB, _ := store.GetByVideoID(ctx, "vidBBBBBBB2")
	if itemB == nil || itemB.Status != queue.StatusFailed || itemB.ErrorMessage == "" {
		t.Fatalf("unexpected item B: %+v", itemB)
	}
	itemC, _ := store.GetByVideoID(ctx, "vidCCCCCCC3")
	if itemC == nil || itemC.Status != queue.StatusCompleted || itemC.Source != transcript.SourceSpeech {
		t.Fatalf("unexpected item C: %+v", itemC)
	}

	data, err := os.ReadFile(itemA.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "From captions.") {
		t.Fatalf("unexpected document:\n%s", data)
	}
}

func TestRunWithoutFallbackFailsUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	resolver := &fakeResolver{videos: []ytdlp.Video{channelVideo("vidAAAAAAA1", "Silent")}}
	fetcher := &fakeFetcher{errs: map[string]error{"vidAAAAAAA1": unavailable()}}
	fallback := &fakeFallback{results: map[string]transcript.Result{"vidAAAAAAA1": speechResult("nope")}}

	runner, _ := NewRunner(cfg, store, resolver, fetcher, fallback, nil)
	summary, err := runner.Run(context.Background(), Options{Target: channelTarget()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Failures) != 1 || summary.Completed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if fallback.calls["vidAAAAAAA1"] != 0 {
		t.Fatal("fallback must not run when audio is disabled")
	}
}

func TestRunTransientErrorNeverFallsBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	resolver := &fakeResolver{videos: []ytdlp.Video{channelVideo("vidAAAAAAA1", "Flaky")}}
	fetcher := &fakeFetcher{errs: map[string]error{
		"vidAAAAAAA1": services.Wrap(services.ErrTransient, "captions", "fetch", "503", nil),
	}}
	fallback := &fakeFallback{results: map[string]transcript.Result{"vidAAAAAAA1": speechResult("nope")}}

	runner, _ := NewRunner(cfg, store, resolver, fetcher, fallback, nil)
	summary, err := runner.Run(context.Background(), Options{Target: channelTarget(), AudioFallback: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Failures) != 1 {
		t.Fatalf("expected transient failure recorded, got %+v", summary)
	}
	if fallback.calls["vidAAAAAAA1"] != 0 {
		t.Fatal("fallback must not run on transient errors")
	}
}

func TestRunLiveStreamNeverFetchesOrFallsBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	live := channelVideo("vidAAAAAAA1", "Live Now")
	live.LiveStatus = "is_live"
	upcoming := channelVideo("vidBBBBBBB2", "Premiere")
	upcoming.IsLive = false
	upcoming.LiveStatus = "is_upcoming"

	resolver := &fakeResolver{videos: []ytdlp.Video{live, upcoming}}
	fetcher := &fakeFetcher{results: map[string]transcript.Result{
		"vidAAAAAAA1": captionResult("nope"),
		"vidBBBBBBB2": captionResult("nope"),
	}}
	fallback := &fakeFallback{results: map[string]transcript.Result{"vidAAAAAAA1": speechResult("nope")}}

	runner, _ := NewRunner(cfg, store, resolver, fetcher, fallback, nil)
	summary, err := runner.Run(context.Background(), Options{Target: channelTarget(), AudioFallback: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Completed != 0 || len(summary.Failures) != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("live videos must not be fetched: %v", fetcher.calls)
	}
	if len(fallback.calls) != 0 {
		t.Fatalf("live videos must not hit the audio fallback: %v", fallback.calls)
	}

	item, _ := store.GetByVideoID(context.Background(), "vidAAAAAAA1")
	if item == nil || item.Status != queue.StatusFailed || !strings.Contains(item.ErrorMessage, "live") {
		t.Fatalf("expected failed live record, got %+v", item)
	}
}

func TestRunSkipsCompletedAndRetriesFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Upsert(ctx, "vidAAAAAAA1", "Done", ""); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkCompleted(ctx, "vidAAAAAAA1", transcript.SourceCaptions, "/tmp/done.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Upsert(ctx, "vidBBBBBBB2", "Broken", ""); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkFailed(ctx, "vidBBBBBBB2", "flaked last run"); err != nil {
		t.Fatal(err)
	}

	resolver := &fakeResolver{videos: []ytdlp.Video{
		channelVideo("vidAAAAAAA1", "Done"),
		channelVideo("vidBBBBBBB2", "Broken"),
	}}
	fetcher := &fakeFetcher{results: map[string]transcript.Result{
		"vidAAAAAAA1": captionResult("should not be fetched"),
		"vidBBBBBBB2": captionResult("second chance"),
	}}

	runner, _ := NewRunner(cfg, store, resolver, fetcher, nil, nil)
	summary, err := runner.Run(ctx, Options{Target: channelTarget()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Skipped != 1 || summary.Completed != 1 || len(summary.Failures) != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if fetcher.calls["vidAAAAAAA1"] != 0 {
		t.Fatal("completed video must not be re-fetched")
	}
	if fetcher.calls["vidBBBBBBB2"] != 1 {
		t.Fatal("failed video should be retried")
	}
}

func TestRunSingleVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	video := channelVideo("vidAAAAAAA1", "One Video")
	resolver := &fakeResolver{videos: []ytdlp.Video{video}}
	fetcher := &fakeFetcher{results: map[string]transcript.Result{"vidAAAAAAA1": captionResult("Single.")}}

	runner, _ := NewRunner(cfg, store, resolver, fetcher, nil, nil)
	summary, err := runner.Run(context.Background(), Options{
		Target: ytdlp.Target{Kind: ytdlp.TargetVideo, URL: video.URL, VideoID: video.ID},
		Format: render.FormatHTML,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Completed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	item, _ := store.GetByVideoID(context.Background(), "vidAAAAAAA1")
	if item == nil || filepath.Ext(item.OutputPath) != ".html" {
		t.Fatalf("expected html output, got %+v", item)
	}
}

func TestRunWritesMergedChannelDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	resolver := &fakeResolver{videos: []ytdlp.Video{
		channelVideo("vidAAAAAAA1", "First"),
		channelVideo("vidBBBBBBB2", "Second"),
	}}
	fetcher := &fakeFetcher{results: map[string]transcript.Result{
		"vidAAAAAAA1": captionResult("Alpha."),
		"vidBBBBBBB2": captionResult("Beta."),
	}}

	runner, _ := NewRunner(cfg, store, resolver, fetcher, nil, nil)
	summary, err := runner.Run(context.Background(), Options{
		Target:       channelTarget(),
		MergeChannel: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.MergedPath == "" {
		t.Fatal("expected merged document path")
	}

	data, err := os.ReadFile(summary.MergedPath)
	if err != nil {
		t.Fatalf("read merged document: %v", err)
	}
	content := string(data)
	for _, want := range []string{"## First -", "## Second -", "Alpha.", "Beta."} {
		if !strings.Contains(content, want) {
			t.Fatalf("merged document missing %q:\n%s", want, content)
		}
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "ytscribe.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("prepare lock: %v", err)
	}
	defer lock.Unlock()

	resolver := &fakeResolver{videos: []ytdlp.Video{channelVideo("vidAAAAAAA1", "Blocked")}}
	runner, _ := NewRunner(cfg, store, resolver, &fakeFetcher{}, nil, nil)

	_, err = runner.Run(context.Background(), Options{Target: channelTarget()})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected lock conflict, got %v", err)
	}
}
