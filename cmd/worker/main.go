package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rudradey/campus-companion/internal/bootstrap"
	"github.com/rudradey/campus-companion/internal/config"
	"github.com/rudradey/campus-companion/internal/observability/logging"
	"github.com/rudradey/campus-companion/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_error", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		logger.Info("worker_subscribed", "subject", cfg.NATSIngestSubject)
		err := app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
			defer cancel()

			workerMetrics.StartDocument()
			start := time.Now()
			processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
			workerMetrics.FinishDocument("worker", time.Since(start), processErr)
			return processErr
		})
		if err != nil {
			logger.Error("worker_ingest_subscribe_error", "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		logger.Info("worker_subscribed", "subject", cfg.NATSRetrainSubject)
		err := app.Queue.SubscribeRetrainRequested(ctx, func(handlerCtx context.Context) error {
			trainCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
			defer cancel()

			trainErr := app.TrainUC.Retrain(trainCtx)
			workerMetrics.FinishRetrain("worker", trainErr)
			return trainErr
		})
		if err != nil {
			logger.Error("worker_retrain_subscribe_error", "error", err)
		}
	}()

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
