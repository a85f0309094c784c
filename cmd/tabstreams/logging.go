package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/c360/tabstreams/config"
)

func setupLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     config.ParseLogLevel(level),
		AddSource: strings.EqualFold(level, "debug"),
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(
		"service", appName,
		"version", Version,
		"pid", os.Getpid(),
	)
}
