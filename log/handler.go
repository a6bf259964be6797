package log

import (
	"context"
	"io"
	"log/slog"
)

// discardHandler drops everything until InitLogger runs.
type discardHandler struct{}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorGreen  = "\x1b[32m"
	colorCyan   = "\x1b[36m"
	colorPurple = "\x1b[35m"
)

func levelColor(l slog.Level) string {
	switch {
	case l >= LevelCrit:
		return colorPurple
	case l >= slog.LevelError:
		return colorRed
	case l >= slog.LevelWarn:
		return colorYellow
	case l >= slog.LevelInfo:
		return colorGreen
	default:
		return colorCyan
	}
}

// newTerminalHandler is a text handler with short timestamps and level
// names, optionally colored.
func newTerminalHandler(wr io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.String(slog.TimeKey, a.Value.Time().Format("01-02|15:04:05.000"))
			case slog.LevelKey:
				l, ok := a.Value.Any().(slog.Level)
				if !ok {
					return a
				}
				name := levelName(l)
				if useColor {
					name = levelColor(l) + name + colorReset
				}
				return slog.String(slog.LevelKey, name)
			}
			return a
		},
	})
}
