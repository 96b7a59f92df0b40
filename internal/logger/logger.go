// Package logger configures JSON structured logging.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hitoshi/dda/internal/reqctx"
)

// Setup returns a JSON slog.Logger writing to w at the given level.
// Records logged with a request context carry tid and user_id.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(&contextHandler{Handler: handler})
}

// SetupDefault installs the JSON logger as the process-wide default.
// A nil writer means os.Stdout.
func SetupDefault(w io.Writer, level slog.Level) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w, level))
}

// Level picks DEBUG for local or debug runs and INFO otherwise.
func Level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// contextHandler adds request-scoped attributes taken from the context.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if tid := reqctx.TransactionID(ctx); tid != "" {
		r.AddAttrs(slog.String("tid", tid))
	}
	if userID := reqctx.UserID(ctx); userID != "" {
		r.AddAttrs(slog.String("user_id", userID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
