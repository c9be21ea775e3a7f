// Package logging configures zerolog loggers and carries them through context.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
}

// FileConfig controls the optional per-session log file.
type FileConfig struct {
	Enabled       bool
	Dir           string
	SessionID     string
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	Compress      bool
	WriteToStderr bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// New creates a new zerolog logger writing to stderr.
func New(cfg Config) zerolog.Logger {
	return newWithWriter(cfg, consoleOrJSON(cfg, os.Stderr))
}

// NewWithFile creates a logger that also writes to the session's log file
// and prunes the logs of sessions older than MaxAgeDays.
// The returned cleanup closes the file and must be called on shutdown.
func NewWithFile(cfg Config, fileCfg FileConfig) (zerolog.Logger, func(), error) {
	noop := func() {}
	if !fileCfg.Enabled || fileCfg.Dir == "" {
		if !fileCfg.WriteToStderr {
			return newWithWriter(cfg, io.Discard), noop, nil
		}
		return New(cfg), noop, nil
	}

	const logDirPerm = 0o755
	if err := os.MkdirAll(fileCfg.Dir, logDirPerm); err != nil {
		return New(cfg), noop, fmt.Errorf("create log directory: %w", err)
	}

	sessionID := fileCfg.SessionID
	if sessionID == "" {
		sessionID = GenerateSessionID()
	}

	sessionLog, err := OpenSessionLog(fileCfg.Dir, sessionID, RotationConfig{
		MaxSizeMB:  fileCfg.MaxSizeMB,
		MaxBackups: fileCfg.MaxBackups,
		MaxAgeDays: fileCfg.MaxAgeDays,
		Compress:   fileCfg.Compress,
	})
	if err != nil {
		return New(cfg), noop, err
	}

	var out io.Writer = sessionLog
	if fileCfg.WriteToStderr {
		out = zerolog.MultiLevelWriter(consoleOrJSON(cfg, os.Stderr), sessionLog)
	}

	logger := newWithWriter(cfg, out).With().Str("session", ShortSessionID(sessionID)).Logger()

	maxAge := time.Duration(fileCfg.MaxAgeDays) * 24 * time.Hour
	if n, err := PruneSessionLogs(fileCfg.Dir, sessionID, maxAge, time.Now()); err != nil {
		logger.Warn().Err(err).Msg("failed to prune old session logs")
	} else if n > 0 {
		logger.Debug().Int("sessions", n).Msg("pruned old session logs")
	}

	cleanup := func() {
		_ = sessionLog.Close()
	}
	return logger, cleanup, nil
}

// SessionLogPath returns the path of the log file for a session.
func SessionLogPath(dir, sessionID string) string {
	return filepath.Join(dir, SessionFilename(sessionID))
}

func newWithWriter(cfg Config, output io.Writer) zerolog.Logger {
	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

func consoleOrJSON(cfg Config, w io.Writer) io.Writer {
	if cfg.Format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: cfg.TimeFormat,
	}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewFromConfigValues builds a stderr logger from raw config strings.
func NewFromConfigValues(level, format string) zerolog.Logger {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	if format == "json" || format == "console" {
		cfg.Format = format
	}
	return New(cfg)
}

// NewFromEnv creates a logger based on environment variables
// WEBBRIDGE_LOG_LEVEL: trace, debug, info, warn, error (default: info)
// WEBBRIDGE_LOG_FORMAT: json, console (default: console)
func NewFromEnv() zerolog.Logger {
	return NewFromConfigValues(os.Getenv("WEBBRIDGE_LOG_LEVEL"), os.Getenv("WEBBRIDGE_LOG_FORMAT"))
}
