package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler writes each record to every sink whose level admits it. Sinks
// keep their own levels, so a debug stderr mirror does not turn on debug
// output in the log file.
type teeHandler []slog.Handler

func newTeeHandler(sinks ...slog.Handler) slog.Handler {
	var tee teeHandler
	for _, sink := range sinks {
		if sink != nil {
			tee = append(tee, sink)
		}
	}
	switch len(tee) {
	case 0:
		return NoopHandler{}
	case 1:
		return tee[0]
	}
	return tee
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range t {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers to every admitting sink even when one fails and returns
// the joined failures.
func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, sink := range t {
		if !sink.Enabled(ctx, record.Level) {
			continue
		}
		if err := sink.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) each(fn func(slog.Handler) slog.Handler) teeHandler {
	next := make(teeHandler, len(t))
	for i, sink := range t {
		next[i] = fn(sink)
	}
	return next
}

// TeeLogger returns a logger that writes to base's handler and to each
// mirror. The CLI uses it to copy the file log onto stderr with --verbose.
func TeeLogger(base *slog.Logger, mirrors ...slog.Handler) *slog.Logger {
	if base == nil {
		return slog.New(newTeeHandler(mirrors...))
	}
	return slog.New(newTeeHandler(append([]slog.Handler{base.Handler()}, mirrors...)...))
}
