package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every sink is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatal("expected a single sink to be returned unwrapped")
	}
}

func TestTeeHandlerKeepsSinkLevels(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	debug := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	warn := slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})

	logger := slog.New(newTeeHandler(warn, debug))
	logger.Debug("probing renderer")

	if !strings.Contains(debugBuf.String(), "probing renderer") {
		t.Fatalf("debug sink missing record: %q", debugBuf.String())
	}
	if warnBuf.Len() != 0 {
		t.Fatalf("warn sink should skip debug record, got %q", warnBuf.String())
	}
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug-4) {
		t.Fatal("expected levels below every sink to be disabled")
	}
}

func TestTeeHandlerDeliversPastFailingSink(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewJSONHandler(&buf, nil)
	bad := failingHandler{Handler: slog.NewJSONHandler(&bytes.Buffer{}, nil)}

	h := newTeeHandler(bad, ok)
	record := slog.NewRecord(time.Now(), slog.LevelInfo, "asset imported", 0)
	err := h.Handle(context.Background(), record)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected joined sink error, got %v", err)
	}
	if !strings.Contains(buf.String(), "asset imported") {
		t.Fatalf("healthy sink missing record: %q", buf.String())
	}
}

func TestTeeLoggerCopiesAttrsToEveryHandler(t *testing.T) {
	var baseBuf, mirrorBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))
	mirror := slog.NewJSONHandler(&mirrorBuf, nil)

	logger := TeeLogger(base, mirror).With(slog.Int64(FieldAssetID, 7))
	logger.Info("thumbnail written")

	for name, buf := range map[string]*bytes.Buffer{"base": &baseBuf, "mirror": &mirrorBuf} {
		if !strings.Contains(buf.String(), `"asset_id":7`) {
			t.Fatalf("%s handler missing asset_id: %q", name, buf.String())
		}
	}
}
