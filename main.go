package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.vokalia.id/voicecheck/config"
	"go.vokalia.id/voicecheck/internal/app"
)

var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	service, err := app.New(cfg)
	if err != nil {
		slog.Error("start service", "error", err)
		os.Exit(1)
	}
	defer service.Shutdown()

	slog.Info("voicecheck running", "version", version, "data", cfg.DataDir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down")
}
