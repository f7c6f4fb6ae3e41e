package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ghuser/invoiceledger/pkg/config"
)

func newTestLogger(buf *bytes.Buffer) Logger {
	return NewWithWriter(buf, slog.LevelDebug)
}

func setupTracer(t *testing.T) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("parse log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestContext_AddsTraceIDs(t *testing.T) {
	setupTracer(t)
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	ctx, parent := otel.Tracer("test").Start(context.Background(), "parent")
	log.InfoContext(ctx, "parent")
	p := lastEntry(t, &buf)

	ctx, child := otel.Tracer("test").Start(ctx, "child")
	log.ErrorContext(ctx, "child", "error", errors.New("boom"), "invoice_id", 12)
	c := lastEntry(t, &buf)
	child.End()
	parent.End()

	if p["trace_id"] == nil || p["trace_id"] != c["trace_id"] {
		t.Errorf("trace ids %v / %v", p["trace_id"], c["trace_id"])
	}
	if p["span_id"] == c["span_id"] {
		t.Error("parent and child share a span id")
	}
	if c["invoice_id"] != float64(12) || c["error"] != "boom" {
		t.Errorf("attributes lost: %v", c)
	}
}

func TestContext_NoSpanNoTraceFields(t *testing.T) {
	var buf bytes.Buffer
	newTestLogger(&buf).InfoContext(context.Background(), "plain")

	entry := lastEntry(t, &buf)
	for _, k := range []string{"trace_id", "span_id", "request_id"} {
		if _, ok := entry[k]; ok {
			t.Errorf("unexpected %s", k)
		}
	}
}

func TestAddAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	AddAttrs(context.Background(), slog.Int64("ignored", 1))

	ctx := WithAttrBag(context.Background())
	if WithAttrBag(ctx) != ctx {
		t.Error("WithAttrBag replaced an existing bag")
	}
	AddAttrs(ctx, slog.Int64("invoice_id", 7))
	log.InfoContext(ctx, "item added")

	if got := lastEntry(t, &buf)["invoice_id"]; got != float64(7) {
		t.Errorf("invoice_id = %v, want 7", got)
	}
}

func TestNew_StampsServiceFields(t *testing.T) {
	l := New(&config.Config{ServiceName: "invoice-ledger", ServiceVersion: "1.2.3", Environment: config.EnvTesting})
	if l.ToSlog() == nil {
		t.Fatal("nil slog logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
