package logi

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Config holds the logging configuration
type Config struct {
	// LogDir is the directory where log files will be stored
	// Default: /var/log/latency-metrics (or ./logs if not writable)
	LogDir string
	// LogFileName is the name of the log file
	// Default: app.log
	LogFileName string
	// Level is the minimum level: debug, info, warn or error
	// Default: info
	Level string
	// Stdout mirrors every line to standard output
	Stdout bool

	// Rotation, see lumberjack.Logger. Zero values use lumberjack defaults.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewLog creates or returns the singleton logger instance.
// It's safe for concurrent use across multiple goroutines.
// The logger writes JSON lines to a size-rotated file.
func NewLog(cfg *Config) (*slog.Logger, error) {
	var initErr error

	once.Do(func() {
		if cfg == nil {
			cfg = &Config{}
		}

		// Set defaults
		if cfg.LogDir == "" {
			// Try /var/log/latency-metrics first (works in Docker)
			// Fall back to ./logs if not writable
			cfg.LogDir = "/var/log/latency-metrics"
			if !isDirWritable(cfg.LogDir) {
				cfg.LogDir = "./logs"
			}
		}

		if cfg.LogFileName == "" {
			cfg.LogFileName = "app.log"
		}

		level, err := ParseLevel(cfg.Level)
		if err != nil {
			initErr = err
			return
		}

		// Create log directory if it doesn't exist
		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create log directory %s: %w", cfg.LogDir, err)
			return
		}

		logPath := filepath.Join(cfg.LogDir, cfg.LogFileName)

		var out io.Writer = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		if cfg.Stdout {
			out = io.MultiWriter(out, os.Stdout)
		}

		opts := &slog.HandlerOptions{
			Level: level,
			// Remove source info for max performance
			AddSource: false,
		}

		logger = slog.New(slog.NewJSONHandler(out, opts))

		// Log initialization
		logger.Info("logger initialized",
			"log_path", logPath,
			"level", level.String(),
		)
	})

	if initErr != nil {
		return nil, initErr
	}

	return logger, nil
}

// GetLogger returns the logger created by NewLog, or slog.Default() when
// NewLog has not been called (tests, tools).
func GetLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// ParseLevel maps a level name to slog.Level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// isDirWritable checks if a directory is writable
func isDirWritable(path string) bool {
	// Try to create the directory first
	if err := os.MkdirAll(path, 0755); err != nil {
		return false
	}

	// Try to create a temp file to verify write access
	testFile := filepath.Join(path, ".write_test")
	file, err := os.OpenFile(testFile, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false
	}
	file.Close()
	os.Remove(testFile)
	return true
}
