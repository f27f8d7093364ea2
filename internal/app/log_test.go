package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestFdHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := &fdHandler{w: &buf, opID: "ab12cd34"}

	r := slog.NewRecord(
		time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		slog.LevelInfo, "operation started", 0,
	)
	r.AddAttrs(slog.String("op", "export-site"), slog.Int64("site", 3))

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	want := "2026-01-15T10:30:00Z\tINFO\tab12cd34\toperation started\top=export-site\tsite=3\n"
	if got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestFdHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := &fdHandler{w: &buf, opID: "op1"}
	h := base.WithAttrs([]slog.Attr{slog.String("component", "backup")})

	r := slog.NewRecord(
		time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		slog.LevelWarn, "snapshot skipped", 0,
	)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "\tWARN\t") {
		t.Errorf("line = %q, want WARN level", got)
	}
	if !strings.Contains(got, "\tcomponent=backup") {
		t.Errorf("line = %q, want pre-set attr", got)
	}

	// The base handler is unchanged.
	buf.Reset()
	if err := base.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if strings.Contains(buf.String(), "component=") {
		t.Errorf("base handler line = %q, attrs leaked", buf.String())
	}
}
