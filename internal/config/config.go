// Package config provides configuration loading with explicit naming
//
// Available functions:
//
//   LoadFromEnvVarsOnly()                     - Environment variables ONLY
//                                               Use: containers, cron jobs
//
//   LoadFromYamlFile(path)                    - YAML file ONLY (no env overrides)
//                                               Use: Local development, testing
//
//   LoadFromYamlWithEnvOverrides(path)        - YAML base + Environment overrides
//                                               Priority: Env Vars > YAML > Defaults
//
// Environment variables supported:
//
//   LEONTP:
//     - LEONTP_ADDRESS, LEONTP_PORT, LEONTP_TIMEOUT, LEONTP_MIN_QUERY_INTERVAL
//
//   INFLUXDB:
//     - INFLUXDB_HOST, INFLUXDB_PORT, INFLUXDB_TOKEN
//     - INFLUXDB_ORG, INFLUXDB_BUCKET
//
//   OPTIONS:
//     - SHOW_STATS, SEND_TO_INFLUXDB, CHECK_OFFSET, WATCH_INTERVAL
//
//   SERVER (watch mode only):
//     - EXPORTER_ADDRESS, EXPORTER_PORT
//     - SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT
//
//   LOGGING:
//     - LOG_LEVEL (trace|debug|info|warn|error|fatal|panic)
//     - LOG_FORMAT (json|console), LOG_OUTPUT (stdout|stderr|file)
//     - LOG_ENABLE_FILE, LOG_FILE_PATH
//
//   METRICS:
//     - METRICS_NAMESPACE, METRICS_SUBSYSTEM, METRICS_TEXTFILE_PATH
//
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/maximewewer/leontp-stats/pkg/logger"
)

// Config represents the complete application configuration
type Config struct {
	LeoNTP   LeoNTPConfig   `yaml:"leontp"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Options  OptionsConfig  `yaml:"options"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LeoNTPConfig identifies the device to query
type LeoNTPConfig struct {
	Address          string        `yaml:"address" validate:"required,hostname_rfc1123|ip"`
	Port             int           `yaml:"port" validate:"min=1,max=65535"`
	Timeout          time.Duration `yaml:"timeout"`
	MinQueryInterval time.Duration `yaml:"min_query_interval"`
}

// InfluxDBConfig contains the metrics sink settings
type InfluxDBConfig struct {
	Host           string        `yaml:"host" validate:"required,hostname_rfc1123|ip"`
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	Token          string        `yaml:"token" json:"-" validate:"required"`
	Org            string        `yaml:"org" validate:"required"`
	Bucket         string        `yaml:"bucket" validate:"required"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
}

// OptionsConfig selects what a run does with the status
type OptionsConfig struct {
	ShowStats      bool          `yaml:"show_stats"`
	SendToInfluxDB bool          `yaml:"send_to_influxdb"`
	CheckOffset    bool          `yaml:"check_offset"`
	WatchInterval  time.Duration `yaml:"watch_interval"`
}

// ServerConfig contains the HTTP server configuration used in watch mode
type ServerConfig struct {
	Address      string        `yaml:"address" validate:"required,ip|hostname_rfc1123"`
	Port         int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format     string `yaml:"format" validate:"oneof=json console"`
	Output     string `yaml:"output" validate:"oneof=stdout stderr file"`
	EnableFile bool   `yaml:"enable_file"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=1,max=1024"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0,max=100"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"min=0,max=3650"`
	Compress   bool   `yaml:"compress"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Namespace    string `yaml:"namespace" validate:"required"`
	Subsystem    string `yaml:"subsystem"`
	TextfilePath string `yaml:"textfile_path"`
}

// Watch reports whether the configuration asks for repeated queries
func (c *Config) Watch() bool {
	return c.Options.WatchInterval > 0
}

// Target returns the device address as "host:port"
func (c *Config) Target() string {
	return net.JoinHostPort(c.LeoNTP.Address, strconv.Itoa(c.LeoNTP.Port))
}

// LoadFromYamlFile reads configuration from a YAML file only (no env var overrides)
func LoadFromYamlFile(path string) (*Config, error) {
	cfg, err := readYamlFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration", err)
		return nil, fmt.Errorf("configuration validation failed for %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromYamlWithEnvOverrides loads base config from YAML, then overrides with environment variables.
// A missing file falls back to defaults; an unreadable or malformed one is an error.
// Priority: Environment Variables > YAML File > Defaults
func LoadFromYamlWithEnvOverrides(path string) (*Config, error) {
	cfg, err := readYamlFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("config", "Config file not found, using env vars and defaults")
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration after env overrides", err)
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFromEnvVarsOnly loads configuration from environment variables only (no YAML file)
// Priority: Environment Variables > Defaults
func LoadFromEnvVarsOnly() (*Config, error) {
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		logger.Error("config", "Invalid configuration from environment", err)
		return nil, fmt.Errorf("environment configuration validation failed: %w", err)
	}

	return cfg, nil
}

// readYamlFile decodes path over the defaults, so keys absent from the file
// keep their default value.
func readYamlFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		logger.Error("config", "Failed to parse config file", err)
		return nil, fmt.Errorf("%w: failed to parse YAML config file %s: %v", ErrInvalidConfig, path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to an existing config
func applyEnvOverrides(cfg *Config) {
	// ---------------------------------------------------------------------------
	// LEONTP - Device
	// ---------------------------------------------------------------------------
	envString("LEONTP_ADDRESS", &cfg.LeoNTP.Address)
	envInt("LEONTP_PORT", &cfg.LeoNTP.Port)
	envDuration("LEONTP_TIMEOUT", &cfg.LeoNTP.Timeout)
	envDuration("LEONTP_MIN_QUERY_INTERVAL", &cfg.LeoNTP.MinQueryInterval)

	// ---------------------------------------------------------------------------
	// INFLUXDB - Metrics sink
	// ---------------------------------------------------------------------------
	envString("INFLUXDB_HOST", &cfg.InfluxDB.Host)
	envInt("INFLUXDB_PORT", &cfg.InfluxDB.Port)
	envString("INFLUXDB_TOKEN", &cfg.InfluxDB.Token)
	envString("INFLUXDB_ORG", &cfg.InfluxDB.Org)
	envString("INFLUXDB_BUCKET", &cfg.InfluxDB.Bucket)

	// ---------------------------------------------------------------------------
	// OPTIONS - Run behaviour
	// ---------------------------------------------------------------------------
	envBool("SHOW_STATS", &cfg.Options.ShowStats)
	envBool("SEND_TO_INFLUXDB", &cfg.Options.SendToInfluxDB)
	envBool("CHECK_OFFSET", &cfg.Options.CheckOffset)
	envDuration("WATCH_INTERVAL", &cfg.Options.WatchInterval)

	// ---------------------------------------------------------------------------
	// SERVER - HTTP Server configuration
	// ---------------------------------------------------------------------------
	envString("EXPORTER_ADDRESS", &cfg.Server.Address)
	envInt("EXPORTER_PORT", &cfg.Server.Port)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)

	// ---------------------------------------------------------------------------
	// LOGGING - Logging configuration
	// ---------------------------------------------------------------------------
	envString("LOG_LEVEL", &cfg.Logging.Level)
	envString("LOG_FORMAT", &cfg.Logging.Format)
	envString("LOG_OUTPUT", &cfg.Logging.Output)
	envBool("LOG_ENABLE_FILE", &cfg.Logging.EnableFile)
	envString("LOG_FILE_PATH", &cfg.Logging.FilePath)

	// ---------------------------------------------------------------------------
	// METRICS - Prometheus metrics configuration
	// ---------------------------------------------------------------------------
	envString("METRICS_NAMESPACE", &cfg.Metrics.Namespace)
	envString("METRICS_SUBSYSTEM", &cfg.Metrics.Subsystem)
	envString("METRICS_TEXTFILE_PATH", &cfg.Metrics.TextfilePath)
}

// Unparseable values are ignored and the previous value kept.

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		} else {
			logger.Warnf("config", "Ignoring %s: %v", key, err)
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		} else {
			logger.Warnf("config", "Ignoring %s: %v", key, err)
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		} else {
			logger.Warnf("config", "Ignoring %s: %v", key, err)
		}
	}
}
