package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, or custom format
	Output     string // stdout, stderr, or file path
	File       string // optional persistent log file, written in addition to Output
}

// DefaultConfig returns a sensible default logging configuration
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stdout",
	}
}

// New builds a logger from the provided configuration. The returned close
// function releases any file opened for Output or File and is always non-nil.
func New(config LogConfig) (zerolog.Logger, func() error, error) {
	closeFn := func() error { return nil }

	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return zerolog.Nop(), closeFn, err
	}

	var files []*os.File
	closeFn = func() error {
		var firstErr error
		for _, f := range files {
			if err := f.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	// Configure console output
	var output io.Writer
	switch config.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		// Assume it's a file path
		file, err := openLogFile(config.Output)
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		files = append(files, file)
		output = file
	}

	// Configure format
	switch strings.ToLower(config.Format) {
	case "json":
		// JSON format is the default for zerolog
	default:
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: config.TimeFormat,
			NoColor:    config.Output != "stdout" && config.Output != "stderr" && config.Output != "",
		}
	}

	writers := []io.Writer{output}

	// The persistent log file is always JSON so it can be grepped after the run
	if config.File != "" {
		file, err := openLogFile(config.File)
		if err != nil {
			_ = closeFn()
			return zerolog.Nop(), func() error { return nil }, err
		}
		files = append(files, file)
		writers = append(writers, file)
	}

	var w io.Writer = writers[0]
	if len(writers) > 1 {
		w = zerolog.MultiLevelWriter(writers...)
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	log := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	return log, closeFn, nil
}

// NewWithWriter creates a logger writing JSON to w, mainly for tests
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// WithComponent returns a logger with a component field
func WithComponent(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithRunID returns a logger with a run ID field
func WithRunID(log zerolog.Logger, runID string) zerolog.Logger {
	return log.With().Str("run_id", runID).Logger()
}

// WithFields returns a logger with custom fields
func WithFields(log zerolog.Logger, fields map[string]interface{}) zerolog.Logger {
	ctx := log.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return ctx.Logger()
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
