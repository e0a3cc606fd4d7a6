package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/vsinha/pluanalyzer/pkg/infrastructure/config"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
	level  = new(slog.LevelVar)
)

// ParseLevel maps a config level name to a slog level; unknown names mean info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs the process logger described by cfg
func Init(cfg config.LoggerConfig) error {
	writer, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}

	level.Set(ParseLevel(cfg.Level))
	l := New(writer, cfg.Format, level)

	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)

	return nil
}

// New builds a logger writing to w; format is "json" or console
func New(w io.Writer, format string, lvl slog.Leveler) *slog.Logger {
	var handler slog.Handler

	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:       lvl,
			TimeFormat:  time.DateTime,
			NoColor:     !isTerminal(w),
			ReplaceAttr: errorAttr,
		})
	}

	return slog.New(newSourceHandler(handler, slog.LevelWarn, slog.LevelError))
}

func errorAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" && a.Value.Kind() == slog.KindAny {
		if err, ok := a.Value.Any().(error); ok {
			return tint.Err(err)
		}
	}
	return a
}

func openOutput(path string) (io.Writer, error) {
	switch strings.ToLower(path) {
	case "stderr", "":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return file, nil
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SetLevel changes the level of the installed logger at runtime
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Get returns the process logger, building a console logger on stderr if Init was never called
func Get() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = New(os.Stderr, "console", level)
	}
	return logger
}

// WithComponent returns the process logger tagged with a component name
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
