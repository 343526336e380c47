// Package main runs the mock dome controller as a standalone TCP
// server for local development and integration testing.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/lsst-ts/ts-Dome/mock"
	"github.com/lsst-ts/ts-Dome/schema"
)

func main() {
	var (
		host = flag.String("host", getEnv("MOCKDOME_HOST", "127.0.0.1"),
			"Listen host (env: MOCKDOME_HOST)")
		port = flag.Int("port", getEnvInt("MOCKDOME_PORT", schema.DefaultPort),
			"Listen port, 0 for an ephemeral port (env: MOCKDOME_PORT)")
		logLevel = flag.String("log-level", getEnv("MOCKDOME_LOG_LEVEL", "info"),
			"Log level: debug, info, warn, error (env: MOCKDOME_LOG_LEVEL)")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With("service", "mock-dome")
	slog.SetDefault(logger)

	ctrl := mock.NewController(logger)
	addr := fmt.Sprintf("%s:%d", *host, *port)
	if err := ctrl.Start(addr); err != nil {
		slog.Error("Failed to start mock controller", "error", err)
		os.Exit(1)
	}
	slog.Info("Mock dome controller running", "addr", ctrl.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("Shutting down")
	if err := ctrl.Stop(); err != nil {
		slog.Error("Failed to stop mock controller", "error", err)
		os.Exit(1)
	}
}

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
