// Package workflow orchestrates transcript runs. A Runner walks a channel's
// videos sequentially, drives each one through the per-video state machine
// (pending, fetching, transcribing, completed, failed), and records every
// transition in the progress store so interrupted runs resume where they
// stopped. One video failing never aborts the run; configuration problems do.
package workflow
