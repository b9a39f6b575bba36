package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/loggo"

	"service-mesh/internal/app"
	"service-mesh/internal/config"
	"service-mesh/internal/logging"
)

var logger = loggo.GetLogger("servicemesh.users")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(app.Users.Name)
	if err != nil {
		logger.Criticalf("config: %v", err)
		os.Exit(1)
	}
	if err := logging.Configure(cfg.LogLevel); err != nil {
		logger.Criticalf("logging: %v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx, cfg, app.Users); err != nil {
		logger.Criticalf("users service stopped with error: %v", err)
		os.Exit(1)
	}
	logger.Infof("shutdown complete")
}
