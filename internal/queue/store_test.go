package queue_test

import (
	"context"
	"fmt"
	"testing"

	"ytscribe/internal/queue"
	"ytscribe/internal/testsupport"
	"ytscribe/internal/transcript"
)

func TestUpsertCreatesPendingRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.Upsert(ctx, "abc123", "First Video", "https://www.youtube.com/@chan")
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", item.Status)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	fetched, err := store.GetByVideoID(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetByVideoID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "First Video" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestUpsertPreservesCompletedStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.Upsert(ctx, "abc123", "Old Title", ""); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.MarkCompleted(ctx, "abc123", transcript.SourceCaptions, "/out/abc123.md"); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	item, err := store.Upsert(ctx, "abc123", "New Title", "")
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("re-upsert must not reset status, got %s", item.Status)
	}
	if item.Title != "New Title" {
		t.Fatalf("expected refreshed title, got %q", item.Title)
	}

	done, err := store.IsCompleted(ctx, "abc123")
	if err != nil {
		t.Fatalf("IsCompleted failed: %v", err)
	}
	if !done {
		t.Fatal("expected video to remain completed")
	}
}

func TestMarkFailedAndResetFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.Upsert(ctx, "vid1", "V1", ""); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.MarkFailed(ctx, "vid1", "transcription error: whisper exited"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	item, err := store.GetByVideoID(ctx, "vid1")
	if err != nil {
		t.Fatalf("GetByVideoID failed: %v", err)
	}
	if item.Status != queue.StatusFailed || item.ErrorMessage == "" {
		t.Fatalf("unexpected failed record: %#v", item)
	}
	if !item.ShouldProcess() {
		t.Fatal("failed videos are retried on the next run")
	}

	count, err := store.ResetFailed(ctx)
	if err != nil {
		t.Fatalf("ResetFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reset, got %d", count)
	}
	item, _ = store.GetByVideoID(ctx, "vid1")
	if item.Status != queue.StatusPending || item.ErrorMessage != "" {
		t.Fatalf("expected clean pending record, got %#v", item)
	}
}

func TestMarkUnknownVideoFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if err := store.MarkCompleted(context.Background(), "missing", transcript.SourceSpeech, ""); err == nil {
		t.Fatal("expected error for unknown video id")
	}
}

func TestListAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := store.Upsert(ctx, fmt.Sprintf("vid%d", i), fmt.Sprintf("Video %d", i), ""); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	if err := store.MarkCompleted(ctx, "vid0", transcript.SourceCaptions, "/out/vid0.md"); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	if err := store.MarkFailed(ctx, "vid1", "no captions"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	want := queue.HealthSummary{Total: 3, Pending: 1, Completed: 1, Failed: 1}
	if health != want {
		t.Fatalf("unexpected summary: %+v", health)
	}
}

func TestClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.Upsert(ctx, "vid1", "V1", ""); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	count, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 cleared, got %d", count)
	}
	items, _ := store.List(ctx)
	if len(items) != 0 {
		t.Fatalf("expected empty store, got %d items", len(items))
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Completed "); !ok || status != queue.StatusCompleted {
		t.Fatalf("unexpected parse result: %v %v", status, ok)
	}
	if _, ok := queue.ParseStatus("bogus"); ok {
		t.Fatal("expected unknown status to fail parsing")
	}
}
