// Package main implements the dome telemetry service. It connects to
// a low-level dome controller over TCP, polls the louvre, monitoring
// and thermal subsystems for status, validates every document against
// the closed telemetry schemas and publishes the resulting envelopes
// to NATS.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/lsst-ts/ts-Dome/config"
	"github.com/lsst-ts/ts-Dome/controller"
	"github.com/lsst-ts/ts-Dome/metric"
	"github.com/lsst-ts/ts-Dome/poller"
	"github.com/lsst-ts/ts-Dome/publish"
	"github.com/lsst-ts/ts-Dome/schema"
	"github.com/lsst-ts/ts-Dome/telemetry"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ts-dome"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting dome telemetry service",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	registry := schema.NewRegistry()
	connCfg, err := config.LoadAndDecode(registry, cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid",
			"host", connCfg.Host,
			"port", connCfg.Port,
			"connection_timeout", connCfg.ConnectionTimeout,
			"read_timeout", connCfg.ReadTimeout)
		return nil
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	metricsRegistry := metric.NewMetricsRegistry()
	if cliCfg.MetricsPort > 0 {
		metricsServer := metric.NewServer(cliCfg.MetricsPort, "/metrics", metricsRegistry)
		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
		slog.Info("Metrics server started", "address", metricsServer.Address())
	}

	publisher, err := publish.Connect(cliCfg.NATSURL, appName, logger, metricsRegistry)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer func() { _ = publisher.Close() }()

	client := controller.NewClient(connCfg, logger, metricsRegistry)
	slog.Info("Connecting to controller", "address", connCfg.Address())
	if err := client.ConnectWithRetry(signalCtx); err != nil {
		return fmt.Errorf("connect to controller: %w", err)
	}
	defer func() { _ = client.Close() }()

	decoder := telemetry.NewDecoder(registry)
	p := poller.New(client, decoder, publisher, cliCfg.PollInterval, logger, metricsRegistry)

	slog.Info("Dome telemetry service started", "poll_interval", cliCfg.PollInterval)

	err = p.Run(signalCtx)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("poller stopped: %w", err)
	}

	slog.Info("Shutdown complete")
	return nil
}
