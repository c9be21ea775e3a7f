package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
)

var (
	validLogLevels  = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	validLogFormats = []string{"console", "json"}
)

// validateConfig performs comprehensive validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateWorkers(config)...)
	validationErrors = append(validationErrors, validateBridge(config)...)
	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateJournal(config)...)
	validationErrors = append(validationErrors, validateMetrics(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateWorkers(config *Config) []string {
	var validationErrors []string
	if config.Workers.MaxWorkers < 1 || config.Workers.MaxWorkers > 1024 {
		validationErrors = append(validationErrors, "workers.max_workers must be between 1 and 1024")
	}
	if config.Workers.IdleTimeoutSeconds < 1 {
		validationErrors = append(validationErrors, "workers.idle_timeout_seconds must be at least 1")
	}
	return validationErrors
}

func validateBridge(config *Config) []string {
	var validationErrors []string
	if config.Bridge.ReplyTimeoutMs < 0 {
		validationErrors = append(validationErrors, "bridge.reply_timeout_ms must be non-negative")
	}
	if config.Bridge.ShutdownTimeoutMs < 0 {
		validationErrors = append(validationErrors, "bridge.shutdown_timeout_ms must be non-negative")
	}
	return validationErrors
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	if !slices.Contains(validLogLevels, config.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level must be one of %s (got %q)", strings.Join(validLogLevels, ", "), config.Logging.Level))
	}
	if !slices.Contains(validLogFormats, config.Logging.Format) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.format must be one of %s (got %q)", strings.Join(validLogFormats, ", "), config.Logging.Format))
	}
	if config.Logging.MaxSizeMB < 1 {
		validationErrors = append(validationErrors, "logging.max_size_mb must be at least 1")
	}
	if config.Logging.MaxBackups < 0 {
		validationErrors = append(validationErrors, "logging.max_backups must be non-negative")
	}
	if config.Logging.MaxAgeDays < 0 {
		validationErrors = append(validationErrors, "logging.max_age_days must be non-negative")
	}
	return validationErrors
}

func validateJournal(config *Config) []string {
	var validationErrors []string
	if config.Journal.Enabled && strings.TrimSpace(config.Journal.Path) == "" {
		validationErrors = append(validationErrors, "journal.path cannot be empty when the journal is enabled")
	}
	if config.Journal.MaxEntries < 0 {
		validationErrors = append(validationErrors, "journal.max_entries must be non-negative")
	}
	return validationErrors
}

func validateMetrics(config *Config) []string {
	if !config.Metrics.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(config.Metrics.ListenAddress); err != nil {
		return []string{fmt.Sprintf("metrics.listen_address %q is not a host:port address", config.Metrics.ListenAddress)}
	}
	return nil
}
