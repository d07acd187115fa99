package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sessionlocator/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths lists sinks: "stdout", "stderr" or file paths. Empty means
	// stderr.
	OutputPaths []string
	// Writer, when set, replaces OutputPaths.
	Writer io.Writer
	// Development adds caller information at every level.
	Development bool
}

// New constructs a slog logger using the provided options. The returned
// function closes any log files New opened; it is never nil.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))

	w := opts.Writer
	closeSinks := func() error { return nil }
	if w == nil {
		var (
			files []*os.File
			err   error
		)
		if w, files, err = openSinks(opts.OutputPaths); err != nil {
			return nil, nil, err
		}
		closeSinks = func() error {
			var errs []error
			for _, f := range files {
				errs = append(errs, f.Close())
			}
			return errors.Join(errs...)
		}
	}
	addSource := opts.Development || level.Level() <= slog.LevelDebug

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		handler = newConsoleHandler(w, level, addSource)
	case "json":
		handler = newJSONHandler(w, level, addSource)
	default:
		_ = closeSinks()
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	return slog.New(handler), closeSinks, nil
}

// NewFromConfig creates a logger using application config defaults. Logs go
// to stderr so command output on stdout stays machine-readable. Callers close
// the log file with the returned function.
func NewFromConfig(cfg *config.Config) (*slog.Logger, func() error, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}

	sinks := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		sinks = append(sinks, filepath.Join(cfg.Paths.LogDir, "sessionlocator.log"))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: sinks,
	})
}

// parseLevel accepts debug, info, warn and error in any case; anything else
// is info.
func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// openSinks returns the combined writer and the files it opened.
func openSinks(paths []string) (io.Writer, []*os.File, error) {
	seen := make(map[string]bool, len(paths))
	writers := make([]io.Writer, 0, len(paths))
	var files []*os.File
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
			continue
		case "stderr":
			writers = append(writers, os.Stderr)
			continue
		}
		file, err := openSink(path)
		if err != nil {
			for _, f := range files {
				_ = f.Close()
			}
			return nil, nil, err
		}
		files = append(files, file)
		writers = append(writers, file)
	}

	switch len(writers) {
	case 0:
		return os.Stderr, files, nil
	case 1:
		return writers[0], files, nil
	default:
		return io.MultiWriter(writers...), files, nil
	}
}

func openSink(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
