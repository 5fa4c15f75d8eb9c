package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/coursedeck/deliverables-api/config"
)

// ServiceOrchestrationConfig contains everything needed to run the enabled
// services until shutdown.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the enabled services and blocks until a
// shutdown signal arrives or a service fails. In-flight pipeline jobs are
// drained before it returns.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("invalid service configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server, serveErr := StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		group.Go(func() error {
			select {
			case err := <-serveErr:
				// A failed listener cancels the group so the other
				// services stop instead of idling without an API.
				return err
			case <-groupCtx.Done():
				return ShutdownHTTPServer(ShutdownConfig{
					Context: context.Background(),
					Server:  server,
					Logger:  logger,
				})
			}
		})
	}

	if enabled[config.ServiceModeReaper] {
		group.Go(func() error {
			logger.Info("starting stale-job reaper", "interval", cfg.Config.Reaper.Interval)
			return cfg.Services.Reaper.Run(groupCtx)
		})
	}

	runErr := group.Wait()

	// Drain pipeline goroutines so no job is abandoned mid-stage. Stage
	// timeouts bound how long this can take.
	if cfg.Services.Pipeline != nil {
		logger.Info("waiting for in-flight pipeline jobs")
		cfg.Services.Pipeline.Wait()
	}

	if cfg.Services.Observability.Metrics != nil {
		if cerr := cfg.Services.Observability.Metrics.Close(); cerr != nil {
			logger.Error("close metrics client failed", "error", cerr)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	logger.Info("shutdown complete")
	return nil
}
