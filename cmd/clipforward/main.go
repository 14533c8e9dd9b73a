package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/TanaroSch/clipforward/internal/app"
	"github.com/TanaroSch/clipforward/internal/config"
	"github.com/TanaroSch/clipforward/internal/hotkey/legacy"
	"github.com/TanaroSch/clipforward/internal/logging"
)

// version is set at build time via -ldflags.
var version = "v0.1.0"

func main() {
	if len(os.Args) > 1 {
		os.Exit(app.RunCommand(os.Args[1:], version, os.Stdout, os.Stderr))
	}

	// The hotkey event loop needs the main thread on macOS.
	legacy.RunOnMainThread(run)
}

func run() {
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("Error loading config: %v", err)
	}

	log, err := logging.Setup(cfg.LogLevel, os.Stdout)
	if err != nil {
		logrus.Fatalf("Error configuring logging: %v", err)
	}

	entry := log.WithField("version", version)
	if cfg.GetConfigPath() != "" {
		entry.WithField("config", cfg.GetConfigPath()).Info("clipforward starting")
	} else {
		entry.Info("clipforward starting with built-in defaults")
	}

	backend, err := legacy.SelectBackend(log)
	if err != nil {
		log.Fatalf("Error initializing hotkeys: %v", err)
	}

	application, err := app.New(cfg, version, log, backend)
	if err != nil {
		log.Fatalf("Error initializing: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
