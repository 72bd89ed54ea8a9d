package logging

import (
	"context"
	"log/slog"
)

// minLevelHandler drops records below level before they reach next.
type minLevelHandler struct {
	next  slog.Handler
	level slog.Level
}

func (h *minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.next.Enabled(ctx, level)
}

func (h *minLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &minLevelHandler{next: h.next.WithAttrs(attrs), level: h.level}
}

func (h *minLevelHandler) WithGroup(name string) slog.Handler {
	return &minLevelHandler{next: h.next.WithGroup(name), level: h.level}
}

// WithMinimumLevel returns a logger that suppresses records below level while
// keeping the attributes and outputs of logger. One-shot CLI commands use it
// to keep informational noise off the terminal.
func WithMinimumLevel(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if h, ok := logger.Handler().(*minLevelHandler); ok {
		return slog.New(&minLevelHandler{next: h.next, level: level})
	}
	return slog.New(&minLevelHandler{next: logger.Handler(), level: level})
}
