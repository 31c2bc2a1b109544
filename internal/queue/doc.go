// Package queue persists per-video progress in SQLite so interrupted channel
// runs resume instead of restarting. Completed videos are skipped on re-runs;
// pending and failed videos are retried.
package queue
