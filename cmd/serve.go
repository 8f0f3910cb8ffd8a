package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nextlevelbuilder/hostmcp/internal/config"
	"github.com/nextlevelbuilder/hostmcp/internal/server"
)

func runServe() error {
	// Structured logging goes to stderr; stdout carries the MCP transport.
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.New(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	if watchConfig {
		if err := cfg.Watch(context.Background()); err != nil {
			slog.Warn("config watching disabled", "error", err)
		}
	}

	slog.Info("starting hostmcp", "version", Version, "config", cfg.Path())
	if err := server.New(cfg, Version).ServeStdio(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
