package logger

import (
	"errors"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const redacted = "***REDACTED***"

var (
	// Logger is the process-wide logger. It writes JSON to stderr until
	// InitLogger replaces it, so stdout stays free for the console report.
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	// rolling is the open log file, if any
	rolling *lumberjack.Logger

	errMissingFilePath = errors.New("file logging requires a file path")

	secretKeyPattern  = regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token|api[_-]?key|auth)`)
	credentialPattern = regexp.MustCompile(`(?i)://([^:/@]+):([^@]+)@`)
	tokenValuePattern = regexp.MustCompile(`(?i)(Authorization:\s*Token\s+)\S+`)
)

// Config holds logger configuration
type Config struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console
	Output     string // stdout, stderr, file
	Component  string
	EnableFile bool // also write to FilePath
	FilePath   string

	// Rotation settings for FilePath
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// InitLogger replaces the global logger. Any log file opened by a previous
// call is closed first.
func InitLogger(cfg Config) error {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	writer, err := buildWriter(cfg)
	if err != nil {
		return err
	}

	Logger = zerolog.New(writer).With().Timestamp().Str("component", cfg.Component).Logger()
	log.Logger = Logger
	return nil
}

func buildWriter(cfg Config) (io.Writer, error) {
	toFile := cfg.EnableFile || cfg.Output == "file"

	var console io.Writer
	switch cfg.Output {
	case "file":
	case "stdout":
		console = os.Stdout
	default:
		console = os.Stderr
	}
	if console != nil && cfg.Format == "console" {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	}

	if !toFile {
		return console, nil
	}
	if cfg.FilePath == "" {
		return nil, errMissingFilePath
	}
	if err := Close(); err != nil {
		return nil, err
	}

	rolling = &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	if console == nil {
		return rolling, nil
	}
	return zerolog.MultiLevelWriter(console, rolling), nil
}

// Close releases the log file opened by InitLogger, if any
func Close() error {
	if rolling == nil {
		return nil
	}
	err := rolling.Close()
	rolling = nil
	return err
}

// parseLevel maps a configured level name to zerolog, defaulting to info
func parseLevel(level string) zerolog.Level {
	if strings.EqualFold(level, "warning") {
		return zerolog.WarnLevel
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel || l == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return l
}

// sanitizeFields returns a copy of fields with secret-looking keys redacted
// and credentials stripped from string values
func sanitizeFields(fields map[string]interface{}) map[string]interface{} {
	clean := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			clean[key] = sanitizeString(v)
		default:
			clean[key] = v
		}
		if secretKeyPattern.MatchString(key) {
			clean[key] = redacted
		}
	}
	return clean
}

// sanitizeString strips URL credentials and InfluxDB authorization tokens
func sanitizeString(s string) string {
	s = credentialPattern.ReplaceAllString(s, "://$1:***@")
	return tokenValuePattern.ReplaceAllString(s, "${1}***")
}

func event(level zerolog.Level, pkg string) *zerolog.Event {
	return Logger.WithLevel(level).Str("package", pkg)
}

func withFields(e *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range sanitizeFields(fields) {
		e = e.Interface(k, v)
	}
	return e
}

// Info logs an info message
func Info(pkg, message string) { event(zerolog.InfoLevel, pkg).Msg(message) }

// Infof logs a formatted info message
func Infof(pkg, format string, args ...interface{}) {
	event(zerolog.InfoLevel, pkg).Msgf(format, args...)
}

// Warn logs a warning message
func Warn(pkg, message string) { event(zerolog.WarnLevel, pkg).Msg(message) }

// Warnf logs a formatted warning message
func Warnf(pkg, format string, args ...interface{}) {
	event(zerolog.WarnLevel, pkg).Msgf(format, args...)
}

// Error logs an error message
func Error(pkg, message string, err error) {
	event(zerolog.ErrorLevel, pkg).Err(err).Msg(message)
}

// SafeDebug logs a debug message with sanitized fields
func SafeDebug(pkg, message string, fields map[string]interface{}) {
	withFields(event(zerolog.DebugLevel, pkg), fields).Msg(message)
}

// SafeInfo logs an info message with sanitized fields
func SafeInfo(pkg, message string, fields map[string]interface{}) {
	withFields(event(zerolog.InfoLevel, pkg), fields).Msg(message)
}

// SafeWarn logs a warning message with sanitized fields
func SafeWarn(pkg, message string, fields map[string]interface{}) {
	withFields(event(zerolog.WarnLevel, pkg), fields).Msg(message)
}

// SafeError logs an error message with sanitized fields. The error text is
// sanitized too, since transport errors may echo request headers.
func SafeError(pkg, message string, err error, fields map[string]interface{}) {
	e := event(zerolog.ErrorLevel, pkg)
	if err != nil {
		e = e.Str("error", sanitizeString(err.Error()))
	}
	withFields(e, fields).Msg(message)
}

// HTTP logs one request served by the watch-mode endpoint
func HTTP(method, path string, statusCode int, duration time.Duration, remoteAddr string) {
	event(zerolog.InfoLevel, "http").
		Str("method", method).
		Str("path", path).
		Int("status", statusCode).
		Dur("duration", duration).
		Str("remote_addr", sanitizeString(remoteAddr)).
		Msg("HTTP request")
}

// Query logs a device exchange
func Query(operation, target string, fields map[string]interface{}) {
	e := event(zerolog.DebugLevel, "leontp").
		Str("operation", operation).
		Str("target", target)
	withFields(e, fields).Msg("LeoNTP exchange")
}

// Push logs the outcome of a metrics push
func Push(sink string, duration time.Duration, success bool) {
	msg := "Metrics push failed"
	if success {
		msg = "Metrics pushed successfully"
	}
	event(zerolog.DebugLevel, "influx").
		Str("sink", sink).
		Dur("duration", duration).
		Bool("success", success).
		Msg(msg)
}

// Startup logs the version and effective configuration
func Startup(version, commit string, config interface{}) {
	event(zerolog.InfoLevel, "main").
		Str("version", version).
		Str("commit", commit).
		Interface("config", config).
		Msg("LeoNTP stats starting")
}

// Shutdown logs why the process is stopping
func Shutdown(reason string) {
	event(zerolog.InfoLevel, "main").Str("reason", reason).Msg("LeoNTP stats shutting down")
}
