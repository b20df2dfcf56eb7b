package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/quailbot/quail/bot"
	"github.com/quailbot/quail/internal/ircconn"
	"github.com/quailbot/quail/modules/defaults"
	"github.com/quailbot/quail/modules/test"
)

func main() {
	// Configure JSON logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	slog.Info("starting ircbotd", "version", bot.Version)

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create bot and load modules
	b := bot.New(*cfg)
	if errs := b.LoadModules([]*bot.Module{defaults.New(), test.New()}, bot.LoadAdd); len(errs) > 0 {
		for _, err := range errs {
			slog.Error("failed to load module", "error", err)
		}
		os.Exit(1)
	}

	// Start bot and connect
	b.Start()

	conn, err := ircconn.Dial(cfg.Server)
	if err != nil {
		slog.Error("failed to connect", "server", cfg.Server, "error", err)
		os.Exit(1)
	}
	if _, err := b.AttachServer(conn); err != nil {
		slog.Error("failed to attach server", "server", cfg.Server, "error", err)
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed bot shutdown")
	os.Exit(0)
}
