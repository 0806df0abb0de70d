package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging throughout the application. Console output
// is colored; when a run log file is configured every line is also appended
// to it as timestamped JSON.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger creates a debug-level Logger writing to stdout.
func NewLogger() *Logger {
	return newLogger(consoleWriter(os.Stdout), zerolog.DebugLevel)
}

// NewLoggerTo creates a Logger writing plain JSON lines to w. Used by tests
// that need to inspect what was logged.
func NewLoggerTo(w io.Writer) *Logger {
	return newLogger(w, zerolog.DebugLevel)
}

// OpenLogger creates a Logger at the given level. If logFile is non-empty the
// file is opened in append mode and receives a copy of every line.
func OpenLogger(level, logFile string) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := consoleWriter(os.Stdout)
	if logFile == "" {
		return newLogger(console, lvl), nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: open run log %q: %w", logFile, err)
	}
	l := newLogger(zerolog.MultiLevelWriter(console, f), lvl)
	l.file = f
	return l, nil
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
}

func newLogger(w io.Writer, lvl zerolog.Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}
}

// WithComponent returns a child Logger tagging every line with component=name.
// The child shares the parent's run log file; only the parent should Close it.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Close releases the run log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
