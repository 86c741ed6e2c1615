package logger

import (
	"context"
	"log/slog"
)

type (
	handleFunc func(context.Context, slog.Record) error
	middleware func(handleFunc) handleFunc
)

// chainHandler runs every record through the middlewares before handing it to the wrapped handler.
type chainHandler struct {
	h           slog.Handler
	middlewares []middleware
}

func newChainHandler(handler slog.Handler, middlewares ...middleware) *chainHandler {
	return &chainHandler{
		h:           handler,
		middlewares: middlewares,
	}
}

func (c *chainHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return c.h.Enabled(ctx, lvl)
}

func (c *chainHandler) Handle(ctx context.Context, rec slog.Record) error {
	h := c.h.Handle
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h(ctx, rec)
}

func (c *chainHandler) WithGroup(group string) slog.Handler {
	return &chainHandler{
		middlewares: c.middlewares,
		h:           c.h.WithGroup(group),
	}
}

func (c *chainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &chainHandler{
		middlewares: c.middlewares,
		h:           c.h.WithAttrs(attrs),
	}
}
