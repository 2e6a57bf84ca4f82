package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Options struct {
	Level    string
	FilePath string
	Timezone string
	// Stdout defaults to os.Stdout.
	Stdout io.Writer
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unrecognized log level: %q", level)
	}
}

// SetupLogger builds a JSON logger writing to stdout and, when FilePath is
// set, to a fresh log file. It also becomes the default logger. The returned
// closer releases the file.
func SetupLogger(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	tz := opts.Timezone
	if tz == "" {
		tz = "UTC"
	}
	location, err := time.LoadLocation(tz)
	if err != nil {
		return nil, nil, fmt.Errorf("load location %q: %w", tz, err)
	}

	var out io.Writer = os.Stdout
	if opts.Stdout != nil {
		out = opts.Stdout
	}

	var closer io.Closer = nopCloser{}
	if opts.FilePath != "" {
		logFile, err := openLogFile(opts.FilePath)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(out, logFile)
		closer = logFile
	}

	handlerOpts := &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				t := a.Value.Time().In(location)
				a.Value = slog.StringValue(t.Format(time.RFC3339))
			}
			return a
		},
		Level: level,
	}

	logger := slog.New(slog.NewJSONHandler(out, handlerOpts))
	slog.SetDefault(logger)
	return logger, closer, nil
}

func openLogFile(filePath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	err := os.Remove(filePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove old log file: %w", err)
	}

	logFile, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return logFile, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
