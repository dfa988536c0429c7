// Package cli provides common CLI initialization utilities shared by
// cmd/rehabcenter, cmd/rehab-audit-worker and cmd/rehab-export.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rehabcenter/internal/amqp"
	"rehabcenter/internal/backend"
	"rehabcenter/internal/config"
	applog "rehabcenter/internal/log"
	"rehabcenter/internal/report"
)

// SetupLogger installs the default logger at the given LOG_LEVEL, writing to
// out. Unknown levels fall back to info.
func SetupLogger(level, component string, out io.Writer) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	logger := applog.New(applog.Config{Level: lvl, Component: component, Output: out})
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", "error", err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger, cfg *config.Config) *config.Config {
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Bootstrap loads .env and the environment, installs a logger writing to out
// and exits on invalid configuration.
func Bootstrap(component string, out io.Writer) (*applog.Logger, *config.Config) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, component, out)
	return logger, LoadAndValidateConfig(logger, cfg)
}

// Backends bundles everything the factory builds from configuration.
type Backends struct {
	*backend.BackendResult
	Config backend.Config
	Policy report.SparePolicy
}

// InitBackend opens the record store or exits the process on failure.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (Backends, backend.Factory) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	policy, err := report.ParseSparePolicy(cfg.SpareDuplicatePolicy)
	if err != nil {
		logger.Error("Invalid spare duplicate policy", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, bc)
	if err != nil {
		logger.Error("Failed to initialize record store", "error", err, "backend", bc.Type)
		os.Exit(1)
	}
	return Backends{BackendResult: res, Config: bc, Policy: policy}, factory
}

// InitAMQP connects to the broker when AMQP_URL is set. With required false a
// failed connection is logged and nil returned.
func InitAMQP(logger *applog.Logger, cfg *config.Config, required bool) *amqp.Client {
	logger = logger.WithComponent(applog.ComponentAMQP)
	if !cfg.EventsEnabled() {
		if required {
			logger.Error("AMQP_URL is required")
			os.Exit(1)
		}
		logger.Info("Record change events disabled, no AMQP_URL provided")
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		if required {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals or when parent
// is done, and a channel that is closed once cleanup has run or timed out.
func GracefulShutdown(parent context.Context, logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
			logger.Info("Shutting down", "reason", context.Cause(ctx))
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
