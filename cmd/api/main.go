package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/rudradey/campus-companion/internal/adapters/http"
	"github.com/rudradey/campus-companion/internal/bootstrap"
	"github.com/rudradey/campus-companion/internal/config"
	"github.com/rudradey/campus-companion/internal/observability/logging"
	"github.com/rudradey/campus-companion/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.ChatUC,
		app.IngestUC,
		app.Repo,
		app.Queue,
		serverMetrics,
		logger,
		httpadapter.RouterOptions{
			ChatRateRPS:   cfg.ChatRateRPS,
			ChatRateBurst: cfg.ChatRateBurst,
		},
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The api holds its own in-memory ML model, so it re-fits on the
	// retrain broadcast alongside the workers.
	go func() {
		if err := app.Queue.SubscribeRetrainRequested(ctx, func(trainCtx context.Context) error {
			return app.TrainUC.Retrain(trainCtx)
		}); err != nil {
			logger.Error("api_retrain_subscribe_error", "error", err)
		}
	}()

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
