package logger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

type attrsKey struct{}

// attrBag collects attributes discovered while a request is being served,
// such as the invoice id once routing has matched.
type attrBag struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

func (b *attrBag) add(attrs ...slog.Attr) {
	b.mu.Lock()
	b.attrs = append(b.attrs, attrs...)
	b.mu.Unlock()
}

func (b *attrBag) snapshot() []slog.Attr {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]slog.Attr(nil), b.attrs...)
}

// WithAttrBag returns a context whose records can be enriched with AddAttrs.
// Middleware installs one per request.
func WithAttrBag(ctx context.Context) context.Context {
	if _, ok := ctx.Value(attrsKey{}).(*attrBag); ok {
		return ctx
	}
	return context.WithValue(ctx, attrsKey{}, &attrBag{})
}

// AddAttrs attaches attrs to every later record logged with ctx, including
// the request log line. No-op when ctx carries no bag.
func AddAttrs(ctx context.Context, attrs ...slog.Attr) {
	if b, ok := ctx.Value(attrsKey{}).(*attrBag); ok {
		b.add(attrs...)
	}
}

// contextHandler injects correlation fields from ctx into each record.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if id := middleware.GetReqID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if b, ok := ctx.Value(attrsKey{}).(*attrBag); ok {
		r.AddAttrs(b.snapshot()...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{h.Handler.WithGroup(name)}
}
