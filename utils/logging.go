package utils

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// LocalDevHandler prints a compact "time LEVEL message" prefix followed by
// the structured attributes, for readable local output. Production runs use
// a plain slog.JSONHandler instead.
type LocalDevHandler struct {
	internalHandler slog.Handler

	mu sync.Mutex
	w  io.Writer
}

func NewLocalDevHandler(w io.Writer) *LocalDevHandler {
	internalOpts := slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "time" || a.Key == "level" || a.Key == "msg" {
				return slog.Attr{}
			}
			return a
		},
	}
	return &LocalDevHandler{
		w:               w,
		internalHandler: slog.NewTextHandler(w, &internalOpts),
	}
}

func (h *LocalDevHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.internalHandler.Enabled(ctx, level)
}

func (h *LocalDevHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString(r.Time.Format(time.RFC3339))
	buf.WriteString(" ")
	buf.WriteString(r.Level.String())
	buf.WriteString(" ")
	buf.WriteString(r.Message)
	buf.WriteString(" ")

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.w.Write(buf.Bytes()); err != nil {
		return err
	}

	return h.internalHandler.Handle(ctx, r)
}

func (h *LocalDevHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LocalDevHandler{
		w:               h.w,
		internalHandler: h.internalHandler.WithAttrs(attrs),
	}
}

func (h *LocalDevHandler) WithGroup(name string) slog.Handler {
	return &LocalDevHandler{
		w:               h.w,
		internalHandler: h.internalHandler.WithGroup(name),
	}
}
