package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/preston-bernstein/cricket-data-service/internal/config"
	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/server"
)

const (
	appVersion  = "dev"
	serviceName = "cricket-data-service"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: serviceName,
		Version: appVersion,
	})
	if envErr != nil && !os.IsNotExist(envErr) {
		logging.Warn(logger, "could not read .env", slog.Any("err", envErr))
	}
	if err != nil {
		logging.Error(logger, "invalid configuration", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.New(cfg, logger).Run(ctx, stop)
	return nil
}
