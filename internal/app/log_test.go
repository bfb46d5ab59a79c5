package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestCtxHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			level:   slog.LevelInfo,
			message: "pack rendered",
			want:    "2024-06-15T14:30:45Z\tINFO\tpack rendered\n",
		},
		{
			name:    "debug level",
			level:   slog.LevelDebug,
			message: "checking blob cache",
			want:    "2024-06-15T14:30:45Z\tDEBUG\tchecking blob cache\n",
		},
		{
			name:    "with record attrs",
			level:   slog.LevelInfo,
			message: "artifact added",
			attrs:   []slog.Attr{slog.String("pack_id", "p-1"), slog.Int("priority", 5)},
			want:    "2024-06-15T14:30:45Z\tINFO\tartifact added\tpack_id=p-1\tpriority=5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &ctxHandler{w: &buf}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestCtxHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &ctxHandler{w: &buf}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "render")}).(*ctxHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "fingerprinted", 0)
	r.AddAttrs(slog.String("hash", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=render") {
		t.Errorf("expected pre-set attr component=render, got: %q", got)
	}
	if !strings.Contains(got, "hash=abc") {
		t.Errorf("expected record attr hash=abc, got: %q", got)
	}
}

func TestCtxHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &ctxHandler{w: &buf, attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*ctxHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestCtxHandler_Enabled(t *testing.T) {
	h := &ctxHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false, want true", level)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if logger == nil {
		t.Fatal("newLogger() returned nil logger")
	}
	if f == nil {
		t.Fatal("newLogger() returned nil file")
	}
}
