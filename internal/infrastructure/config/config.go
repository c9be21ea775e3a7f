// Package config loads, validates and watches the webbridge TOML configuration.
package config

import "time"

// Config is the complete webbridge configuration.
type Config struct {
	Workers WorkersConfig `mapstructure:"workers" toml:"workers" json:"workers"`
	Bridge  BridgeConfig  `mapstructure:"bridge" toml:"bridge" json:"bridge"`
	Engine  EngineConfig  `mapstructure:"engine" toml:"engine" json:"engine"`
	Logging LoggingConfig `mapstructure:"logging" toml:"logging" json:"logging"`
	Journal JournalConfig `mapstructure:"journal" toml:"journal" json:"journal"`
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics" json:"metrics"`
}

// WorkersConfig sizes the asynchronous call pool.
type WorkersConfig struct {
	MaxWorkers         int `mapstructure:"max_workers" toml:"max_workers" json:"max_workers" jsonschema:"minimum=1,maximum=1024" jsonschema_description:"Maximum number of asynchronous calls running at once"`
	IdleTimeoutSeconds int `mapstructure:"idle_timeout_seconds" toml:"idle_timeout_seconds" json:"idle_timeout_seconds" jsonschema:"minimum=1" jsonschema_description:"Seconds an idle worker waits before exiting"`
}

// IdleTimeout returns the worker idle timeout.
func (w WorkersConfig) IdleTimeout() time.Duration {
	return time.Duration(w.IdleTimeoutSeconds) * time.Second
}

// BridgeConfig holds invocation protocol timeouts.
type BridgeConfig struct {
	ReplyTimeoutMs    int `mapstructure:"reply_timeout_ms" toml:"reply_timeout_ms" json:"reply_timeout_ms" jsonschema:"minimum=0" jsonschema_description:"Default client-side timeout of asynchronous calls, 0 disables it"`
	ShutdownTimeoutMs int `mapstructure:"shutdown_timeout_ms" toml:"shutdown_timeout_ms" json:"shutdown_timeout_ms" jsonschema:"minimum=0" jsonschema_description:"How long shutdown waits for running calls"`
}

// ReplyTimeout returns the client reply timeout.
func (b BridgeConfig) ReplyTimeout() time.Duration {
	return time.Duration(b.ReplyTimeoutMs) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown budget.
func (b BridgeConfig) ShutdownTimeout() time.Duration {
	return time.Duration(b.ShutdownTimeoutMs) * time.Millisecond
}

// EngineConfig configures the content engine.
type EngineConfig struct {
	DevMode       bool     `mapstructure:"dev_mode" toml:"dev_mode" json:"dev_mode" jsonschema_description:"Log script console output at info level"`
	InjectScripts []string `mapstructure:"inject_scripts" toml:"inject_scripts" json:"inject_scripts" jsonschema_description:"Script files run before every document"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,enum=fatal,enum=panic"`
	Format string `mapstructure:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json"`

	// File output configuration
	EnableFileLog bool   `mapstructure:"enable_file_log" toml:"enable_file_log" json:"enable_file_log"`
	LogDir        string `mapstructure:"log_dir" toml:"log_dir" json:"log_dir"`
	MaxSizeMB     int    `mapstructure:"max_size_mb" toml:"max_size_mb" json:"max_size_mb" jsonschema:"minimum=1"`
	MaxBackups    int    `mapstructure:"max_backups" toml:"max_backups" json:"max_backups" jsonschema:"minimum=0"`
	MaxAgeDays    int    `mapstructure:"max_age_days" toml:"max_age_days" json:"max_age_days" jsonschema:"minimum=0"`
	Compress      bool   `mapstructure:"compress" toml:"compress" json:"compress"`
}

// JournalConfig configures the sqlite call journal.
type JournalConfig struct {
	Enabled    bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	Path       string `mapstructure:"path" toml:"path" json:"path" jsonschema_description:"Database file, defaults to the XDG data directory"`
	MaxEntries int    `mapstructure:"max_entries" toml:"max_entries" json:"max_entries" jsonschema:"minimum=0" jsonschema_description:"Rows kept after pruning, 0 keeps everything"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled       bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	ListenAddress string `mapstructure:"listen_address" toml:"listen_address" json:"listen_address"`
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Engine.InjectScripts = append([]string(nil), c.Engine.InjectScripts...)
	return &out
}
