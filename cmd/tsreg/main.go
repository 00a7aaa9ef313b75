// Command tsreg serves the time-series regression API.
//
//	tsreg -config config.yaml
//
// Every setting can also come from the environment; see package config.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ezoic/tsreg/config"
	"github.com/ezoic/tsreg/pipeline"
	"github.com/ezoic/tsreg/pkg/errors"
	"github.com/ezoic/tsreg/pkg/log"
	"github.com/ezoic/tsreg/server"
	"github.com/ezoic/tsreg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.LogError(err, "tsreg exited")
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Console {
		log.SetupConsoleLogger(cfg.LogLevel)
	} else {
		log.SetupLogger(cfg.LogLevel)
	}
	logger := log.GetLoggerWithName("main")
	logger.Info("Configuration loaded",
		"addr", cfg.Addr,
		"backend", cfg.Storage.Backend,
		"log_level", cfg.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout.Std())
	store, err := storage.Open(openCtx, cfg.StoreOptions())
	cancel()
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.LogError(err, "close store")
		}
	}()

	svc := pipeline.NewService(store, cfg.Renderer(), cfg.PipelineOptions())

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	api := server.New(svc, store, server.Options{
		AllowOrigins:   cfg.HTTP.AllowOrigins,
		MaxUploadBytes: cfg.HTTP.MaxUploadMB << 20,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout.Std())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	logger.Info("Server gracefully stopped")
	return nil
}
