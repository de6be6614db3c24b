// Package ctxutil carries request-scoped identifiers through a context.
package ctxutil

import (
	"context"
	"log/slog"
)

type (
	tabIDKey     struct{}
	requestIDKey struct{}
)

// WithTabID stores the browser tab id of the sending page in the context.
func WithTabID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, tabIDKey{}, id)
}

// TabIDFromCtx returns the tab id, or false when none is set. Tab ids are
// always positive, so a stored zero or negative value also reports false.
func TabIDFromCtx(ctx context.Context) (int, bool) {
	id, _ := ctx.Value(tabIDKey{}).(int)
	return id, id > 0
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromCtx returns the request id or "".
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LogAttrs returns the identifiers present in ctx as log attributes:
// request_id always, tab_id only when a tab is known.
func LogAttrs(ctx context.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("request_id", RequestIDFromCtx(ctx))}
	if tab, ok := TabIDFromCtx(ctx); ok {
		attrs = append(attrs, slog.Int("tab_id", tab))
	}
	return attrs
}
