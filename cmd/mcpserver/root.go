package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"mcpserver"
	"mcpserver/app"
)

var (
	flagHFToken       string
	flagLogLevel      string
	flagInvocationLog string
	flagImageProvider string
)

var rootCmd = &cobra.Command{
	Use:   "mcpserver",
	Short: "MCP server exposing greeting, calculator, time, geocoding, weather and image tools",
	Long: `mcpserver serves a fixed set of tools over the Model Context Protocol.

Configuration is read from the environment (HF_TOKEN, MCP_TRANSPORT, NOMINATIM_URL, ...).
Flags given on the command line take precedence over the environment.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if a.Config.Server.Transport == mcpserver.TransportHTTP {
			return serveHTTP(cmd.Context(), a, a.Config.Server.HTTPAddr)
		}
		return serveStdio(cmd.Context(), a)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagHFToken, "hf-token", "", "Hugging Face access token (overrides HF_TOKEN)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	pf.StringVar(&flagInvocationLog, "invocation-log", "", "write a JSON record of every tool call to this file at exit (no value: ./logs/<unix>.<server>.json)")
	pf.Lookup("invocation-log").NoOptDefVal = mcpserver.InvocationLogAuto
	pf.StringVar(&flagImageProvider, "image-provider", "", "image backend: huggingface, bedrock or mock (overrides IMAGE_PROVIDER)")
}

// setup loads configuration, applies flag overrides and wires the app. The
// returned cleanup flushes logs and shuts telemetry down.
func setup(ctx context.Context) (*app.App, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagLogLevel != "" {
		cfg.Server.LogLevel = flagLogLevel
	}
	if flagInvocationLog != "" {
		cfg.Server.InvocationLogPath = flagInvocationLog
	}
	if flagImageProvider != "" {
		cfg.Image.Provider = flagImageProvider
	}

	level, err := mcpserver.ParseLogLevel(cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	// stdout belongs to the stdio transport
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	logger, flush, err := newInvocationLogger(cfg.Server.InvocationLogPath, cfg.Server.Name)
	if err != nil {
		slog.Error("SETUP: Failed to create invocation logger", "error", err)
		return nil, nil, err
	}

	a, err := app.New(ctx, app.Options{
		Config:  cfg,
		HFToken: flagHFToken,
		Logger:  logger,
		Started: time.Now(),
	})
	if err != nil {
		slog.Error("SETUP: Failed to initialize server", "error", err)
		return nil, nil, errors.Join(err, flush())
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Shutdown(shutdownCtx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
		if err := flush(); err != nil {
			slog.Error("SETUP: Failed to flush invocation log", "error", err)
		}
	}
	return a, cleanup, nil
}

func newInvocationLogger(path, server string) (mcpserver.InvocationLogger, func() error, error) {
	if path == "" {
		return mcpserver.NewNoOpInvocationLogger(), func() error { return nil }, nil
	}
	if path == mcpserver.InvocationLogAuto {
		path = mcpserver.NewInvocationLogFilePath(server)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := mcpserver.NewFileInvocationLogger(logFile)
	flush := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, flush, nil
}
