package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"rehabcenter/internal/cli"
	applog "rehabcenter/internal/log"
	"rehabcenter/internal/metrics"
	"rehabcenter/internal/report"
	"rehabcenter/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap(applog.ComponentWorker, os.Stdout)
	logger.Info("Starting rehab-audit-worker")

	parent, abort := context.WithCancel(context.Background())
	defer abort()

	backends, _ := cli.InitBackend(parent, logger, cfg)
	amqpClient := cli.InitAMQP(logger, cfg, true)

	m := metrics.New()
	detector := report.NewDetector(backends.Store, backends.Policy)
	auditWorker := worker.NewAuditWorker(detector, m, worker.AuditWorkerConfig{Debounce: cfg.AuditDebounce})

	var metricsSrv *http.Server
	if cfg.WorkerMetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", m.Handler())
		metricsSrv = &http.Server{
			Addr:              ":" + cfg.WorkerMetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithComponent(applog.ComponentMetrics).Error("Metrics server error", "error", err)
			}
		}()
	}

	ctx, done := cli.GracefulShutdown(parent, logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		logger.Info("Shutting down worker...")
		if err := auditWorker.Stop(ctx); err != nil {
			logger.Warn("Audit worker stop failed", "error", err)
		}
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
		if err := backends.Cleanup(); err != nil {
			logger.Warn("Failed to close record store", "error", err)
		}
	})

	// the first audit runs on start and covers changes missed while offline
	if err := auditWorker.Start(ctx); err != nil {
		logger.Error("Failed to start audit worker", "error", err)
		abort()
		cli.WaitForShutdown(ctx, done)
		os.Exit(1)
	}

	go func() {
		if err := amqpClient.ConsumeRecordChanged(ctx, auditWorker.HandleRecordChanged); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			abort()
		}
	}()

	logger.Info("Audit worker ready",
		"queue", cfg.AMQPQueue,
		"debounce", cfg.AuditDebounce,
		"spare_policy", backends.Policy.String())

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
