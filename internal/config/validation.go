package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig wraps every configuration error
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML key
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks if the configuration is valid. The influxdb section is only
// checked when pushing is enabled and the server section only in watch mode.
func Validate(cfg *Config) error {
	if err := validateLeoNTP(&cfg.LeoNTP); err != nil {
		return err
	}

	if err := validateOptions(&cfg.Options); err != nil {
		return err
	}

	if cfg.Options.SendToInfluxDB {
		if err := validateInfluxDB(&cfg.InfluxDB); err != nil {
			return err
		}
	}

	if cfg.Watch() {
		if err := validateServer(&cfg.Server); err != nil {
			return err
		}
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}

	if err := validateMetrics(&cfg.Metrics); err != nil {
		return err
	}

	return nil
}

func validateLeoNTP(cfg *LeoNTPConfig) error {
	if err := structErr("leontp", cfg); err != nil {
		return err
	}
	if err := durationBetween("leontp.timeout", cfg.Timeout, 100*time.Millisecond, 60*time.Second); err != nil {
		return err
	}
	if cfg.MinQueryInterval < 0 {
		return invalid("leontp.min_query_interval must not be negative")
	}
	return nil
}

func validateInfluxDB(cfg *InfluxDBConfig) error {
	if err := structErr("influxdb", cfg); err != nil {
		return err
	}
	if err := durationBetween("influxdb.connect_timeout", cfg.ConnectTimeout, 100*time.Millisecond, 60*time.Second); err != nil {
		return err
	}
	if err := durationBetween("influxdb.write_timeout", cfg.WriteTimeout, 100*time.Millisecond, 60*time.Second); err != nil {
		return err
	}
	return durationBetween("influxdb.read_timeout", cfg.ReadTimeout, 100*time.Millisecond, 60*time.Second)
}

func validateOptions(cfg *OptionsConfig) error {
	if cfg.WatchInterval < 0 {
		return invalid("options.watch_interval must not be negative")
	}
	if cfg.WatchInterval > 0 && cfg.WatchInterval < time.Second {
		return invalid("options.watch_interval must be at least 1s, got %s", cfg.WatchInterval)
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if err := structErr("server", cfg); err != nil {
		return err
	}
	if err := durationBetween("server.read_timeout", cfg.ReadTimeout, time.Second, 60*time.Second); err != nil {
		return err
	}
	return durationBetween("server.write_timeout", cfg.WriteTimeout, time.Second, 60*time.Second)
}

func validateLogging(cfg *LoggingConfig) error {
	if err := structErr("logging", cfg); err != nil {
		return err
	}
	if (cfg.EnableFile || cfg.Output == "file") && cfg.FilePath == "" {
		return invalid("logging.file_path is required when file logging is enabled")
	}
	return nil
}

func validateMetrics(cfg *MetricsConfig) error {
	return structErr("metrics", cfg)
}

// structErr runs the tag rules of one section and reports the first failure
func structErr(section string, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, section, err)
	}

	fe := verrs[0]
	field := section + "." + fe.Field()
	switch fe.Tag() {
	case "required":
		return invalid("%s is required", field)
	case "min", "max":
		return invalid("%s must satisfy %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	case "oneof":
		return invalid("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return invalid("%s is not a valid %s: %q", field, fe.Tag(), fe.Value())
	}
}

func durationBetween(field string, d, lo, hi time.Duration) error {
	if d < lo || d > hi {
		return invalid("%s must be between %s and %s, got %s", field, lo, hi, d)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
