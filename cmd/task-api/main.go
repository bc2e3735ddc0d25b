package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/manager"
	"taskboard/internal/server"
	"taskboard/internal/storage"
)

func main() {
	var envFile, configFile string

	cmd := &cobra.Command{
		Use:           "task-api",
		Short:         "Serve the task REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile, configFile)
			if err != nil {
				return err
			}
			logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env", "", "path to a .env file (default ./.env)")
	cmd.Flags().StringVar(&configFile, "config", "", "optional YAML config file (or CONFIG_FILE)")

	ctx := context.Background()
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error(ctx, err, "task-api stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	tm := manager.NewTaskManagerWithStorage(store)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewRouter(tm, server.Options{AllowedOrigins: cfg.AllowedOrigins()}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	logger.Info(ctx, "shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
