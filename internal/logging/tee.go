package logging

import (
	"context"
	"errors"
	"log/slog"
)

// Tee returns a handler that writes every record to the console sink and
// mirrors the records the store sink accepts (ERROR and above for DBHandler)
// into it. A store failure never suppresses the console line.
func Tee(console, store slog.Handler) slog.Handler {
	return teeHandler{console: console, store: store}
}

type teeHandler struct {
	console slog.Handler
	store   slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.console.Enabled(ctx, level) || t.store.Enabled(ctx, level)
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var consoleErr, storeErr error
	if t.console.Enabled(ctx, record.Level) {
		consoleErr = t.console.Handle(ctx, record)
	}
	if t.store.Enabled(ctx, record.Level) {
		storeErr = t.store.Handle(ctx, record.Clone())
	}
	return errors.Join(consoleErr, storeErr)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{console: t.console.WithAttrs(attrs), store: t.store.WithAttrs(attrs)}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{console: t.console.WithGroup(name), store: t.store.WithGroup(name)}
}
