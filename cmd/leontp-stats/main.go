package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/maximewewer/leontp-stats/internal/collector"
	"github.com/maximewewer/leontp-stats/internal/config"
	"github.com/maximewewer/leontp-stats/internal/server"
	"github.com/maximewewer/leontp-stats/pkg/logger"
	"github.com/maximewewer/leontp-stats/pkg/metrics"
)

var (
	// Build information, set with -ldflags
	version = "dev"
	commit  = "none"
)

// healthWindow is how many watch intervals may pass without a successful
// query before /health reports unhealthy
const healthWindow = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("leontp-stats", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configFile := flags.String("config", "", "Path to configuration file")
	showVersion := flags.Bool("version", false, "Show version information")
	once := flags.Bool("once", false, "Query once and exit, even when watch_interval is set")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "leontp-stats version %s (commit %s)\n", version, commit)
		return 0
	}

	// Load configuration (before logger is initialized)
	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if *once {
		cfg.Options.WatchInterval = 0
	}

	if err := logger.InitLogger(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Component:  "leontp-stats",
		EnableFile: cfg.Logging.EnableFile,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Close()

	logger.Startup(version, commit, map[string]interface{}{
		"go_version": runtime.Version(),
		"config":     cfg,
	})

	registry := metrics.NewRegistryWithConfig(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	if err := registry.Register(); err != nil {
		logger.Error("main", "Failed to register metrics", err)
		return 1
	}
	registry.GetMetrics().BuildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)

	status := collector.NewStatusCollector(cfg, collector.NewQuerier(cfg), registry.GetMetrics())
	publishers := collector.NewPublishers(cfg, registry, stdout, stderr)

	logger.SafeInfo("main", "Registered publishers", map[string]interface{}{
		"total":   publishers.Count(),
		"enabled": publishers.EnabledCount(),
		"target":  status.Target(),
	})
	if !cfg.Options.SendToInfluxDB {
		logger.Info("main", "InfluxDB push disabled by configuration")
	}

	if !cfg.Watch() {
		if err := runCycle(ctx, status, publishers, nil, stderr); err != nil {
			return 1
		}
		return 0
	}

	return watch(ctx, cfg, registry, status, publishers, stderr)
}

// loadConfig loads configuration based on whether a config file is specified
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		// Priority: Environment Variables > YAML File > Defaults
		return config.LoadFromYamlWithEnvOverrides(configFile)
	}
	// Priority: Environment Variables > Defaults
	return config.LoadFromEnvVarsOnly()
}

// runCycle queries the device once and publishes the reading. Only the query
// error is returned; publisher failures are reported and swallowed.
func runCycle(
	ctx context.Context,
	status *collector.StatusCollector,
	publishers *collector.Registry,
	health *server.Health,
	stderr io.Writer,
) error {
	cycle, err := collector.RunOnce(ctx, status, publishers)
	if health != nil {
		health.Record(time.Now(), err)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	if cycle.PublishErr != nil {
		logger.SafeWarn("main", "Reading published with errors", map[string]interface{}{
			"error": cycle.PublishErr.Error(),
		})
	}
	return nil
}

// watch repeats the cycle every watch_interval and serves the metrics
// endpoint until ctx is cancelled
func watch(
	ctx context.Context,
	cfg *config.Config,
	registry *metrics.Registry,
	status *collector.StatusCollector,
	publishers *collector.Registry,
	stderr io.Writer,
) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := registry.RegisterRuntime(); err != nil {
		logger.Error("main", "Failed to register runtime metrics", err)
		return 1
	}

	health := server.NewHealth(healthWindow * cfg.Options.WatchInterval)
	srv := server.New(cfg, registry.GetRegistry(), health)
	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- srv.Start(ctx)
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		runWatchLoop(ctx, cfg.Options.WatchInterval, func(ctx context.Context) {
			_ = runCycle(ctx, status, publishers, health, stderr)
		})
	}()

	code := 0
	select {
	case <-ctx.Done():
		logger.Info("main", "Received shutdown signal")
		cancel()
		if err := <-serverErrChan; err != nil {
			logger.Error("main", "Server shutdown error", err)
		}
	case err := <-serverErrChan:
		if err != nil {
			logger.Error("main", "Server error", err)
			code = 1
		}
		cancel()
	}

	<-loopDone
	logger.Shutdown("graceful")
	return code
}

// runWatchLoop runs cycle immediately, then on every tick until ctx is done.
// A failed cycle is not retried; the next tick is an independent attempt.
func runWatchLoop(ctx context.Context, interval time.Duration, cycle func(context.Context)) {
	cycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.SafeInfo("main", "Watch loop started", map[string]interface{}{
		"watch_interval": interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			logger.Info("main", "Watch loop stopped")
			return
		case <-ticker.C:
			cycle(ctx)
		}
	}
}
