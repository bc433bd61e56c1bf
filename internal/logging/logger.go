package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"buildmsa/internal/config"
)

// LogFileName is the per-output-directory log file.
const LogFileName = "buildmsa.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives human-oriented output. Defaults to stderr.
	Console io.Writer
	// FilePath, when set, also receives every record as JSON.
	FilePath string
}

// New constructs a slog logger using the provided options. The returned
// closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := levelVar.Level() <= slog.LevelDebug

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var primary slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		primary = newPrettyHandler(console, levelVar, addSource)
	case "json":
		primary = newJSONHandler(console, levelVar, addSource)
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	handlers := []slog.Handler{primary}
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, nil, err
		}
		closer = file
		handlers = append(handlers, newJSONHandler(file, levelVar, addSource))
	}

	return slog.New(newFanoutHandler(handlers...)), closer, nil
}

// NewFromConfig creates a logger honouring cfg.Logging that writes to
// console. A non-empty logDir adds the buildmsa.log file sink inside it.
func NewFromConfig(cfg *config.Config, console io.Writer, logDir string) (*slog.Logger, io.Closer, error) {
	opts := Options{Level: "info", Format: "console", Console: console}
	if cfg != nil {
		opts.Level = cfg.Logging.Level
		opts.Format = cfg.Logging.Format
	}
	if strings.TrimSpace(logDir) != "" {
		opts.FilePath = filepath.Join(logDir, LogFileName)
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
