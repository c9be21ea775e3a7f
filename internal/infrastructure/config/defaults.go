package config

const (
	dirPerm  = 0o755
	filePerm = 0o644

	defaultMaxWorkers         = 20
	defaultIdleTimeoutSeconds = 30
	defaultReplyTimeoutMs     = 30000
	defaultShutdownTimeoutMs  = 5000
	defaultLogMaxSizeMB       = 10
	defaultLogMaxBackups      = 5
	defaultLogMaxAgeDays      = 14
	defaultJournalMaxEntries  = 10000
	defaultMetricsAddress     = "127.0.0.1:9464"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers: WorkersConfig{
			MaxWorkers:         defaultMaxWorkers,
			IdleTimeoutSeconds: defaultIdleTimeoutSeconds,
		},
		Bridge: BridgeConfig{
			ReplyTimeoutMs:    defaultReplyTimeoutMs,
			ShutdownTimeoutMs: defaultShutdownTimeoutMs,
		},
		Engine: EngineConfig{
			DevMode:       false,
			InjectScripts: []string{},
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "console",
			EnableFileLog: false,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			MaxAgeDays:    defaultLogMaxAgeDays,
			Compress:      true,
		},
		Journal: JournalConfig{
			Enabled:    true,
			MaxEntries: defaultJournalMaxEntries,
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			ListenAddress: defaultMetricsAddress,
		},
	}
}
