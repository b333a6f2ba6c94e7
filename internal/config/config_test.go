package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t testing.TB, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	return configFile
}

func TestLoadFromYamlFile_Success(t *testing.T) {
	configFile := writeConfig(t, `
leontp:
  address: "192.168.1.10"
  port: 123
  timeout: 2s

influxdb:
  host: "influx.lan"
  port: 8086
  token: "s3cr3t"
  org: "lab"
  bucket: "leontp"

options:
  show_stats: true
  send_to_influxdb: true

logging:
  level: "debug"
  format: "console"

metrics:
  namespace: "gps"
`)

	cfg, err := LoadFromYamlFile(configFile)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "192.168.1.10", cfg.LeoNTP.Address)
	assert.Equal(t, 123, cfg.LeoNTP.Port)
	assert.Equal(t, 2*time.Second, cfg.LeoNTP.Timeout)
	assert.Equal(t, "influx.lan", cfg.InfluxDB.Host)
	assert.Equal(t, "s3cr3t", cfg.InfluxDB.Token)
	assert.Equal(t, "lab", cfg.InfluxDB.Org)
	assert.Equal(t, "leontp", cfg.InfluxDB.Bucket)
	assert.True(t, cfg.Options.ShowStats)
	assert.True(t, cfg.Options.SendToInfluxDB)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "gps", cfg.Metrics.Namespace)

	// Keys absent from the file keep their defaults
	assert.Equal(t, 5*time.Second, cfg.InfluxDB.ReadTimeout)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.True(t, cfg.Logging.Compress)
	assert.False(t, cfg.Watch())
	assert.Equal(t, "192.168.1.10:123", cfg.Target())
}

func TestLoadFromYamlFile_FileNotFound(t *testing.T) {
	cfg, err := LoadFromYamlFile("/nonexistent/config.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromYamlFile_InvalidYAML(t *testing.T) {
	configFile := writeConfig(t, "leontp:\n  port: [\n    invalid")

	cfg, err := LoadFromYamlFile(configFile)

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoadFromYamlFile_InvalidConfig(t *testing.T) {
	configFile := writeConfig(t, `
leontp:
  address: "192.168.1.10"
  port: 99999
`)

	cfg, err := LoadFromYamlFile(configFile)

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "leontp.port")
}

func TestLoadFromYamlFile_MissingAddress(t *testing.T) {
	configFile := writeConfig(t, `
options:
  show_stats: true
`)

	_, err := LoadFromYamlFile(configFile)

	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "leontp.address is required")
}

func TestLoadFromYamlFile_InfluxOnlyCheckedWhenEnabled(t *testing.T) {
	disabled := writeConfig(t, `
leontp:
  address: "leontp.lan"
options:
  send_to_influxdb: false
`)
	_, err := LoadFromYamlFile(disabled)
	assert.NoError(t, err)

	enabled := writeConfig(t, `
leontp:
  address: "leontp.lan"
options:
  send_to_influxdb: true
`)
	_, err = LoadFromYamlFile(enabled)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "influxdb.host")
}

func TestLoadFromEnvVarsOnly_Defaults(t *testing.T) {
	t.Setenv("LEONTP_ADDRESS", "192.168.1.10")

	cfg, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 123, cfg.LeoNTP.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.LeoNTP.Timeout)
	assert.Equal(t, 8086, cfg.InfluxDB.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 9560, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "leontp", cfg.Metrics.Namespace)
}

func TestLoadFromEnvVarsOnly_MissingAddress(t *testing.T) {
	t.Setenv("LEONTP_ADDRESS", "")

	cfg, err := LoadFromEnvVarsOnly()

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFromEnvVarsOnly_WithOverrides(t *testing.T) {
	t.Setenv("LEONTP_ADDRESS", "10.0.0.5")
	t.Setenv("LEONTP_PORT", "1123")
	t.Setenv("LEONTP_TIMEOUT", "1s")
	t.Setenv("INFLUXDB_HOST", "influx")
	t.Setenv("INFLUXDB_TOKEN", "tok")
	t.Setenv("INFLUXDB_ORG", "my org")
	t.Setenv("INFLUXDB_BUCKET", "b")
	t.Setenv("SEND_TO_INFLUXDB", "true")
	t.Setenv("SHOW_STATS", "1")
	t.Setenv("CHECK_OFFSET", "true")
	t.Setenv("WATCH_INTERVAL", "30s")
	t.Setenv("EXPORTER_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_TEXTFILE_PATH", "/var/lib/node_exporter/leontp.prom")

	cfg, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "10.0.0.5:1123", cfg.Target())
	assert.Equal(t, time.Second, cfg.LeoNTP.Timeout)
	assert.Equal(t, "influx", cfg.InfluxDB.Host)
	assert.Equal(t, "my org", cfg.InfluxDB.Org)
	assert.True(t, cfg.Options.SendToInfluxDB)
	assert.True(t, cfg.Options.ShowStats)
	assert.True(t, cfg.Options.CheckOffset)
	assert.True(t, cfg.Watch())
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/var/lib/node_exporter/leontp.prom", cfg.Metrics.TextfilePath)
}

func TestLoadFromEnvVarsOnly_IgnoresUnparseableValues(t *testing.T) {
	t.Setenv("LEONTP_ADDRESS", "10.0.0.5")
	t.Setenv("LEONTP_PORT", "not-a-port")
	t.Setenv("SHOW_STATS", "maybe")
	t.Setenv("LEONTP_TIMEOUT", "soon")

	cfg, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	assert.Equal(t, 123, cfg.LeoNTP.Port)
	assert.False(t, cfg.Options.ShowStats)
	assert.Equal(t, 2500*time.Millisecond, cfg.LeoNTP.Timeout)
}

func TestLoadFromEnvVarsOnly_InvalidPort(t *testing.T) {
	t.Setenv("LEONTP_ADDRESS", "10.0.0.5")
	t.Setenv("LEONTP_PORT", "70000")

	cfg, err := LoadFromEnvVarsOnly()

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFromYamlWithEnvOverrides_Success(t *testing.T) {
	configFile := writeConfig(t, `
leontp:
  address: "192.168.1.10"
influxdb:
  host: "influx.lan"
  token: "from-file"
  org: "lab"
  bucket: "leontp"
logging:
  level: "info"
`)

	t.Setenv("INFLUXDB_TOKEN", "from-env")
	t.Setenv("SEND_TO_INFLUXDB", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromYamlWithEnvOverrides(configFile)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	// YAML values
	assert.Equal(t, "192.168.1.10", cfg.LeoNTP.Address)
	assert.Equal(t, "influx.lan", cfg.InfluxDB.Host)
	// Environment overrides
	assert.Equal(t, "from-env", cfg.InfluxDB.Token)
	assert.True(t, cfg.Options.SendToInfluxDB)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromYamlWithEnvOverrides_EnvCompletesFile(t *testing.T) {
	configFile := writeConfig(t, `
options:
  show_stats: true
`)
	t.Setenv("LEONTP_ADDRESS", "leontp.lan")

	cfg, err := LoadFromYamlWithEnvOverrides(configFile)

	require.NoError(t, err)
	assert.Equal(t, "leontp.lan", cfg.LeoNTP.Address)
	assert.True(t, cfg.Options.ShowStats)
}

func TestLoadFromYamlWithEnvOverrides_MissingFile(t *testing.T) {
	t.Setenv("LEONTP_ADDRESS", "leontp.lan")

	cfg, err := LoadFromYamlWithEnvOverrides(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "leontp.lan", cfg.LeoNTP.Address)
}

func TestLoadFromYamlWithEnvOverrides_MalformedFile(t *testing.T) {
	configFile := writeConfig(t, "leontp: [")
	t.Setenv("LEONTP_ADDRESS", "leontp.lan")

	cfg, err := LoadFromYamlWithEnvOverrides(configFile)

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func BenchmarkLoadFromYamlFile(b *testing.B) {
	configFile := writeConfig(b, `
leontp:
  address: "192.168.1.10"
  timeout: 2s
logging:
  level: "info"
`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = LoadFromYamlFile(configFile)
	}
}
