package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ytscribe/internal/config"
	"ytscribe/internal/transcript"
)

// Store manages progress persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the progress database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "progress.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the database.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Upsert records a video as pending if it has no record yet, and returns the
// current record either way. Titles are refreshed on conflict so re-resolved
// metadata wins.
func (s *Store) Upsert(ctx context.Context, videoID, title, channelURL string) (*Item, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, errors.New("video id required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO progress (video_id, title, channel_url, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(video_id) DO UPDATE SET
             title = excluded.title,
             channel_url = excluded.channel_url,
             updated_at = excluded.updated_at`,
		videoID,
		title,
		channelURL,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert progress for %s: %w", videoID, err)
	}

	return s.GetByVideoID(ctx, videoID)
}

// GetByVideoID fetches a progress record, returning nil when absent.
func (s *Store) GetByVideoID(ctx context.Context, videoID string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM progress WHERE video_id = ?`, videoID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress for %s: %w", videoID, err)
	}
	return item, nil
}

// IsCompleted reports whether a video has already been fully processed.
func (s *Store) IsCompleted(ctx context.Context, videoID string) (bool, error) {
	item, err := s.GetByVideoID(ctx, videoID)
	if err != nil {
		return false, err
	}
	return item != nil && item.Status == StatusCompleted, nil
}

// SetStatus moves a record to the given in-flight status.
func (s *Store) SetStatus(ctx context.Context, videoID string, status Status) error {
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	return s.touch(ctx, videoID,
		`UPDATE progress SET status = ?, updated_at = ? WHERE video_id = ?`,
		status)
}

// MarkCompleted records a finished video together with its transcript source
// and the document path that was written. Call this only after the output
// document is durably on disk.
func (s *Store) MarkCompleted(ctx context.Context, videoID string, source transcript.Source, outputPath string) error {
	return s.touch(ctx, videoID,
		`UPDATE progress SET status = ?, source = ?, output_path = ?, error_message = '', updated_at = ? WHERE video_id = ?`,
		StatusCompleted, string(source), outputPath)
}

// MarkFailed records a failure with its human-readable reason.
func (s *Store) MarkFailed(ctx context.Context, videoID, reason string) error {
	return s.touch(ctx, videoID,
		`UPDATE progress SET status = ?, error_message = ?, updated_at = ? WHERE video_id = ?`,
		StatusFailed, strings.TrimSpace(reason))
}

// touch runs an update whose final two placeholders are updated_at and
// video_id, and verifies the row existed.
func (s *Store) touch(ctx context.Context, videoID, query string, args ...any) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return errors.New("video id required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	args = append(args, timestamp, videoID)

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update progress for %s: %w", videoID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no progress record for %s", videoID)
	}
	return nil
}

// List returns all records ordered by creation time.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM progress ORDER BY created_at, video_id`)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ResetFailed flips failed records back to pending and returns how many
// changed.
func (s *Store) ResetFailed(ctx context.Context) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE progress SET status = ?, error_message = '', updated_at = ? WHERE status = ?`,
		StatusPending, timestamp, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("reset failed records: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes all records and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM progress`)
	if err != nil {
		return 0, fmt.Errorf("clear progress: %w", err)
	}
	return res.RowsAffected()
}

// Health aggregates record counts per lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM progress GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("progress health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch Status(status) {
		case StatusPending:
			summary.Pending += count
		case StatusFetching, StatusTranscribing:
			summary.Processing += count
		case StatusCompleted:
			summary.Completed += count
		case StatusFailed:
			summary.Failed += count
		}
	}
	return summary, rows.Err()
}

const itemColumns = `video_id, title, channel_url, status, source, output_path, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var status, source, createdAt, updatedAt string
	if err := row.Scan(
		&item.VideoID,
		&item.Title,
		&item.ChannelURL,
		&status,
		&source,
		&item.OutputPath,
		&item.ErrorMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	item.Status = Status(status)
	item.Source = transcript.Source(source)
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)
	return &item, nil
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
