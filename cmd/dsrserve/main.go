// Command dsrserve runs the SR render service configured from the
// environment (see package config).
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caio-sobreiro/dicomsr/config"
	"github.com/caio-sobreiro/dicomsr/server"
)

func main() {
	cfg := config.Load()
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	debug := flag.Bool("debug", false, "Log at debug level")
	flag.Parse()
	cfg.Addr = *addr

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := server.ListenAndServe(ctx, cfg.Addr,
		server.WithLogger(logger),
		server.WithReadTimeout(cfg.ReadTimeout),
		server.WithWriteTimeout(cfg.WriteTimeout),
		server.WithMaxUploadBytes(cfg.MaxUploadBytes),
		server.WithReadFlags(cfg.ReadFlags),
	)
	switch {
	case err == nil:
		logger.Info("Render server shutdown complete")
	case errors.Is(err, context.Canceled):
		logger.Info("Render server stopped", "reason", err.Error())
	default:
		logger.Error("Render server terminated unexpectedly", "error", err)
		os.Exit(1)
	}
}
