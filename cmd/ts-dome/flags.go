package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath   string
	NATSURL      string
	PollInterval time.Duration
	MetricsPort  int
	LogLevel     string
	LogFormat    string
	ShowVersion  bool
	ShowHelp     bool
	Validate     bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("TSDOME_CONFIG", "configs/example.yaml"),
		"Path to controller connection config (env: TSDOME_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("TSDOME_CONFIG", "configs/example.yaml"),
		"Path to controller connection config (env: TSDOME_CONFIG)")

	flag.StringVar(&cfg.NATSURL, "nats-url",
		getEnv("TSDOME_NATS_URL", "nats://localhost:4222"),
		"NATS server URL (env: TSDOME_NATS_URL)")

	flag.DurationVar(&cfg.PollInterval, "poll-interval",
		getEnvDuration("TSDOME_POLL_INTERVAL", time.Second),
		"Telemetry poll interval (env: TSDOME_POLL_INTERVAL)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("TSDOME_METRICS_PORT", 9090),
		"Prometheus metrics port, 0 to disable (env: TSDOME_METRICS_PORT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("TSDOME_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: TSDOME_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("TSDOME_LOG_FORMAT", "json"),
		"Log format: json, text (env: TSDOME_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printDetailedHelp

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	if cfg.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval: %s", cfg.PollInterval)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Dome telemetry service

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run with custom config
  %s --config=/path/to/dome.yaml

  # Run with debug logging
  %s --log-level=debug --log-format=text

  # Run with environment variables
  export TSDOME_CONFIG=/etc/ts-dome/dome.yaml
  export TSDOME_NATS_URL=nats://nats:4222
  %s

  # Validate configuration only
  %s --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
