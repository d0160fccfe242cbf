package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammadpnp/outreach-import/internal/bootstrap"
	"github.com/mohammadpnp/outreach-import/internal/config"
	"github.com/mohammadpnp/outreach-import/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	container, err := bootstrap.NewContainer(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise dependencies")
	}
	defer container.Close()

	server := bootstrap.NewHTTPServer(container)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	container.Runner.Start(workerCtx)

	go func() {
		logger.WithField("addr", cfg.Address()).Info("http server listening")
		if err := server.Start(cfg.Address()); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("graceful shutdown failed")
	}
}
