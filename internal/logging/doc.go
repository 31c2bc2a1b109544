// Package logging configures the process-wide slog logger with either a
// human-oriented console handler or machine-oriented JSON output, mirrored to
// a log file under the configured log directory.
package logging
