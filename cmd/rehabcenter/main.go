package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"rehabcenter/internal/cache"
	"rehabcenter/internal/cli"
	apphttp "rehabcenter/internal/http"
	applog "rehabcenter/internal/log"
	"rehabcenter/internal/metrics"
	"rehabcenter/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentApp, os.Stdout)
	ctx := context.Background()

	backends, factory := cli.InitBackend(ctx, logger, cfg)

	m := metrics.New()
	reportOpts := []services.ReportOption{services.WithMetrics(m)}

	// Events are best effort for the API: writes never wait on the broker.
	var events services.Fanout
	cacheManager := cache.NewManager()
	if cfg.StatsCacheTTL > 0 {
		statsCache := services.NewStatsCache(256, cfg.StatsCacheTTL)
		events = append(events, statsCache)
		cacheManager.Register(statsCache)
		cacheManager.StartCleanup(cfg.StatsCacheTTL)
		reportOpts = append(reportOpts, services.WithStatsCache(statsCache))
	}
	amqpClient := cli.InitAMQP(logger, cfg, false)
	if amqpClient != nil {
		events = append(events, amqpClient)
	}

	sink, err := factory.CreateArchive(ctx, backends.Config)
	if err != nil {
		logger.Error("Failed to initialize export archive", "error", err)
		os.Exit(1)
	}
	if sink != nil {
		reportOpts = append(reportOpts, services.WithArchive(sink))
	}

	mirror, err := factory.CreateMirror(ctx, backends.Config)
	if err != nil {
		// the mirror is optional; exports still work without it
		logger.Warn("Summary mirror disabled", "error", err)
	} else if mirror != nil {
		reportOpts = append(reportOpts, services.WithSummaryMirror(mirror))
	}

	records := services.NewRecordService(backends.Store, events)
	reports := services.NewReportService(backends.Store, backends.Policy, reportOpts...)
	srv := apphttp.NewServer(":"+cfg.Port, records, reports, backends.Store, m, apphttp.Options{})

	shutdownCtx, done := cli.GracefulShutdown(ctx, logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		if err := backends.Cleanup(); err != nil {
			logger.Warn("Failed to close record store", "error", err)
		}
	})

	logger.Info("Starting rehabcenter server",
		"port", cfg.Port,
		"backend", backends.Config.Type,
		"spare_policy", backends.Policy.String(),
		"events", amqpClient != nil,
		"stats_cache_ttl", cfg.StatsCacheTTL,
		"archive", sink != nil,
		"mirror", mirror != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
