package logging

import (
	"context"
	"log/slog"
	"strings"

	"subsync/internal/services"
)

// ContextFields extracts standard logging attributes from the context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var attrs []Attr
	if id, ok := services.RequestIDFromContext(ctx); ok && strings.TrimSpace(id) != "" {
		attrs = append(attrs, String(FieldCorrelationID, id))
	}
	if provider, ok := services.ProviderFromContext(ctx); ok && strings.TrimSpace(provider) != "" {
		attrs = append(attrs, String(FieldProvider, provider))
	}
	return attrs
}

// WithContext returns a logger enriched with the context's standard fields.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

// contextHandler adds context fields to records logged via the *Context
// methods, skipping keys already attached to the logger.
type contextHandler struct {
	next slog.Handler
	keys map[string]struct{}
}

func newContextHandler(next slog.Handler) slog.Handler {
	return &contextHandler{next: next, keys: map[string]struct{}{}}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, attr := range ContextFields(ctx) {
		if _, exists := h.keys[attr.Key]; exists {
			continue
		}
		record.AddAttrs(attr)
	}
	return h.next.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	keys := make(map[string]struct{}, len(h.keys)+len(attrs))
	for k := range h.keys {
		keys[k] = struct{}{}
	}
	for _, attr := range attrs {
		keys[attr.Key] = struct{}{}
	}
	return &contextHandler{next: h.next.WithAttrs(attrs), keys: keys}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), keys: h.keys}
}
