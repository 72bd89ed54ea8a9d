// Package logging assembles structured slog loggers and formatting helpers used
// across chorus.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers and the
// analysis pipeline tag log lines with track identifiers and correlation IDs.
// When a log directory is configured the console stream is teed into a JSON
// log file. A no-op logger is provided for tests and for wiring code that
// cannot fail.
package logging
