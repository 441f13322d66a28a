package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"rickmorty/viewer/internal/config"
	"rickmorty/viewer/internal/container"
	"rickmorty/viewer/internal/logging"
	"rickmorty/viewer/internal/version"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default ./config.yaml when present)")
	flag.Parse()

	log.Infof("Starting character viewer %s (commit=%s, built=%s, go=%s)...",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	log.Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	runErr := app.Run(ctx)
	if err := app.Close(); err != nil {
		log.Warnf("Cleanup failed: %v", err)
	}
	if runErr != nil {
		log.Errorf("Application exited with error: %v", runErr)
		os.Exit(1)
	}

	log.Info("Application finished successfully")
}
