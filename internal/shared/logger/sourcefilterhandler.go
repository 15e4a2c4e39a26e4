package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// sourceFilterHandler adds source location only for selected levels, keeping
// info/debug lines compact in production. The wrapped handler must be built
// with AddSource disabled.
type sourceFilterHandler struct {
	inner  slog.Handler
	levels map[slog.Level]bool
}

func newSourceFilterHandler(inner slog.Handler, levels ...slog.Level) slog.Handler {
	m := make(map[slog.Level]bool, len(levels))
	for _, l := range levels {
		m[l] = true
	}
	return &sourceFilterHandler{inner: inner, levels: m}
}

func (h *sourceFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.levels[r.Level] && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		r.AddAttrs(slog.Attr{
			Key: slog.SourceKey,
			Value: slog.AnyValue(&slog.Source{
				Function: f.Function,
				File:     f.File,
				Line:     f.Line,
			}),
		})
	}
	return h.inner.Handle(ctx, r)
}

func (h *sourceFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sourceFilterHandler{inner: h.inner.WithAttrs(attrs), levels: h.levels}
}

func (h *sourceFilterHandler) WithGroup(name string) slog.Handler {
	return &sourceFilterHandler{inner: h.inner.WithGroup(name), levels: h.levels}
}

func (h *sourceFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}
