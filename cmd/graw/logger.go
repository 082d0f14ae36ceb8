package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logOptions configures the CLI logger.
type logOptions struct {
	Level  string
	Format string
	Writer io.Writer
}

// newLogger builds the CLI's zerolog logger. Console format is meant for a
// terminal, json for piping into something else.
func newLogger(opt logOptions) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := opt.Writer
	if strings.ToLower(opt.Format) == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().Str("component", "graw").Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// zerologHandler lets the library's slog output land in the CLI's zerolog
// logger.
type zerologHandler struct {
	log    zerolog.Logger
	attrs  []slog.Attr
	prefix string
}

func newSlogLogger(log zerolog.Logger) *slog.Logger {
	return slog.New(&zerologHandler{log: log})
}

func (h *zerologHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.log.GetLevel() <= slogToZerolog(level)
}

func (h *zerologHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.log.WithLevel(slogToZerolog(r.Level))
	for _, a := range h.attrs {
		ev = addAttr(ev, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = addAttr(ev, h.prefix, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (h *zerologHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), prefixed(h.prefix, attrs)...)
	return &next
}

func (h *zerologHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

func addAttr(ev *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	key := prefix + a.Key
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return ev.Str(key, v.String())
	case slog.KindInt64:
		return ev.Int64(key, v.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, v.Float64())
	case slog.KindBool:
		return ev.Bool(key, v.Bool())
	case slog.KindDuration:
		return ev.Dur(key, v.Duration())
	case slog.KindTime:
		return ev.Time(key, v.Time())
	case slog.KindGroup:
		sub := prefix
		if a.Key != "" {
			sub = key + "."
		}
		for _, ga := range v.Group() {
			ev = addAttr(ev, sub, ga)
		}
		return ev
	default:
		if err, ok := v.Any().(error); ok {
			return ev.AnErr(key, err)
		}
		return ev.Interface(key, v.Any())
	}
}

func slogToZerolog(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
