package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	configDir string
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithConfigDir reads config.toml from dir instead of the XDG config directory.
func WithConfigDir(dir string) Option {
	return func(m *Manager) {
		m.configDir = dir
	}
}

// NewManager creates a new configuration manager.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		viper:     viper.New(),
		callbacks: make([]func(*Config), 0),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.configDir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
		}
		m.configDir = configDir
	}

	v := m.viper
	v.SetConfigFile(filepath.Join(m.configDir, configFileName))
	v.SetConfigType("toml")

	// WEBBRIDGE_WORKERS_MAX_WORKERS, WEBBRIDGE_JOURNAL_PATH, ...
	v.SetEnvPrefix("WEBBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short forms shared with logging.NewFromEnv
	if err := v.BindEnv("logging.level", "WEBBRIDGE_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind WEBBRIDGE_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "WEBBRIDGE_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind WEBBRIDGE_LOG_FORMAT: %w", err)
	}

	return m, nil
}

// Load loads the configuration from file and environment variables. A
// default config file is written when none exists.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.configDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", m.configDir, err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.buildConfig()
	if err != nil {
		return err
	}
	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", m.ConfigFile(), err)
	}

	if createErr := WriteConfigOrdered(DefaultConfig(), m.ConfigFile()); createErr != nil {
		return fmt.Errorf(
			"failed to create default config at %s: %w\nTry creating the directory manually or check permissions",
			m.configDir,
			createErr,
		)
	}
	if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
		return fmt.Errorf(
			"failed to read newly created config file: %w\nThe config file was created but couldn't be read. Please check the file format",
			rereadErr,
		)
	}
	return nil
}

// buildConfig unmarshals, completes and validates the viper state.
// Must be called with m.mu held.
func (m *Manager) buildConfig() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.ConfigFile(),
			err,
		)
	}

	if err := fillPaths(config); err != nil {
		return nil, err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func fillPaths(config *Config) error {
	if config.Journal.Path == "" {
		path, err := GetJournalFile()
		if err != nil {
			return fmt.Errorf("failed to get journal path: %w", err)
		}
		config.Journal.Path = path
	}
	if config.Logging.LogDir == "" {
		dir, err := GetLogDir()
		if err != nil {
			return fmt.Errorf("failed to get log directory: %w", err)
		}
		config.Logging.LogDir = dir
	}
	return nil
}

func normalizeConfig(config *Config) {
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Level == "warning" {
		config.Logging.Level = "warn"
	}

	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	if config.Logging.Format == "" {
		config.Logging.Format = "console"
	}

	config.Metrics.ListenAddress = strings.TrimSpace(config.Metrics.ListenAddress)

	scripts := config.Engine.InjectScripts[:0]
	for _, s := range config.Engine.InjectScripts {
		if s = strings.TrimSpace(s); s != "" {
			scripts = append(scripts, s)
		}
	}
	config.Engine.InjectScripts = scripts
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	return m.config.Clone()
}

// ConfigFile returns the path of the configuration file.
func (m *Manager) ConfigFile() string {
	return filepath.Join(m.configDir, configFileName)
}

// ConfigDir returns the directory the configuration is read from.
func (m *Manager) ConfigDir() string {
	return m.configDir
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("workers.max_workers", defaults.Workers.MaxWorkers)
	m.viper.SetDefault("workers.idle_timeout_seconds", defaults.Workers.IdleTimeoutSeconds)

	m.viper.SetDefault("bridge.reply_timeout_ms", defaults.Bridge.ReplyTimeoutMs)
	m.viper.SetDefault("bridge.shutdown_timeout_ms", defaults.Bridge.ShutdownTimeoutMs)

	m.viper.SetDefault("engine.dev_mode", defaults.Engine.DevMode)
	m.viper.SetDefault("engine.inject_scripts", defaults.Engine.InjectScripts)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.enable_file_log", defaults.Logging.EnableFileLog)
	m.viper.SetDefault("logging.log_dir", defaults.Logging.LogDir)
	m.viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	m.viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	m.viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	m.viper.SetDefault("logging.compress", defaults.Logging.Compress)

	m.viper.SetDefault("journal.enabled", defaults.Journal.Enabled)
	m.viper.SetDefault("journal.path", defaults.Journal.Path)
	m.viper.SetDefault("journal.max_entries", defaults.Journal.MaxEntries)

	m.viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	m.viper.SetDefault("metrics.listen_address", defaults.Metrics.ListenAddress)
}
