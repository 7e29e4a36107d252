// Package logger configures the process-wide structured logger. It
// wraps log/slog with a filtering handler that suppresses third-party
// library noise unless the level is debug, and a colorized text
// formatter for terminal output.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

var defaultLogger *slog.Logger

const modulePrefix = "github.com/kadirpekel/cocode"

// ParseLevel converts a level name to a slog.Level. Unrecognized names
// fall back to Warn rather than erroring, since a bad log-level config
// value should never prevent startup.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// filteringHandler suppresses log records originating outside this
// module's packages unless the configured level is Debug.
type filteringHandler struct {
	handler  slog.Handler
	minLevel slog.Level
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.minLevel && h.handler.Enabled(ctx, level)
}

func (h *filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.minLevel <= slog.LevelDebug || isOwnPackage(record.PC) {
		return h.handler.Handle(ctx, record)
	}
	return nil
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filteringHandler{handler: h.handler.WithAttrs(attrs), minLevel: h.minLevel}
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{handler: h.handler.WithGroup(name), minLevel: h.minLevel}
}

func isOwnPackage(pc uintptr) bool {
	if pc == 0 {
		return false
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return false
	}
	file, _ := fn.FileLine(pc)
	return strings.Contains(fn.Name(), modulePrefix) || strings.Contains(file, "cocode/")
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "\033[31m"
	case level >= slog.LevelWarn:
		return "\033[33m"
	case level >= slog.LevelInfo:
		return "\033[36m"
	default:
		return "\033[90m"
	}
}

// coloredHandler renders level + message + attrs with ANSI color, used
// for terminal output.
type coloredHandler struct {
	writer io.Writer
}

func (h *coloredHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *coloredHandler) Handle(ctx context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(levelColor(record.Level))
	b.WriteString(strings.ToUpper(record.Level.String()))
	b.WriteString("\033[0m ")
	b.WriteString(record.Message)
	record.Attrs(func(a slog.Attr) bool {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString("=")
		b.WriteString(a.Value.String())
		return true
	})
	b.WriteString("\n")
	_, err := h.writer.Write([]byte(b.String()))
	return err
}

func (h *coloredHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *coloredHandler) WithGroup(string) slog.Handler      { return h }

// Init configures the default slog logger at level, writing to output.
// Terminal output is colorized; non-terminal output uses plain
// slog.TextHandler. Call once at process start; GetLogger will lazily
// call this with info/stderr defaults if it hasn't run yet.
func Init(level slog.Level, output *os.File) {
	var base slog.Handler
	if isTerminal(output) {
		base = &coloredHandler{writer: output}
	} else {
		base = slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})
	}

	defaultLogger = slog.New(&filteringHandler{handler: base, minLevel: level})
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the process-wide logger, initializing it with
// info-level stderr output if Init has not been called yet.
func GetLogger() *slog.Logger {
	if defaultLogger == nil {
		Init(slog.LevelInfo, os.Stderr)
	}
	return defaultLogger
}
