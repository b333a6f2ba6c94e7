package config

import "time"

// ApplyDefaults sets default values for unspecified configuration fields
func ApplyDefaults(cfg *Config) {
	// LeoNTP defaults
	if cfg.LeoNTP.Port == 0 {
		cfg.LeoNTP.Port = 123
	}
	if cfg.LeoNTP.Timeout == 0 {
		cfg.LeoNTP.Timeout = 2500 * time.Millisecond
	}
	if cfg.LeoNTP.MinQueryInterval == 0 {
		cfg.LeoNTP.MinQueryInterval = 1 * time.Second
	}

	// InfluxDB defaults
	if cfg.InfluxDB.Port == 0 {
		cfg.InfluxDB.Port = 8086
	}
	if cfg.InfluxDB.ConnectTimeout == 0 {
		cfg.InfluxDB.ConnectTimeout = 3 * time.Second
	}
	if cfg.InfluxDB.WriteTimeout == 0 {
		cfg.InfluxDB.WriteTimeout = 3 * time.Second
	}
	if cfg.InfluxDB.ReadTimeout == 0 {
		cfg.InfluxDB.ReadTimeout = 5 * time.Second
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9560
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}

	// Logging defaults (stderr keeps stdout for the report)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 10
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "leontp"
	}
}

// DefaultConfig returns a configuration with all defaults applied
func DefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
