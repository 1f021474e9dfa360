// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/v-i-n-a-y-29/HackVeda/internal/api"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/alerting"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/camunda"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/database"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/generation"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/insight"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/observability"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/retrieval"

	as "github.com/v-i-n-a-y-29/HackVeda/internal/workers/fisheries/analyze-species"
	rmi "github.com/v-i-n-a-y-29/HackVeda/internal/workers/orchestration/route-marine-input"
	aob "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/analyze-overfishing-batch"
	boc "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/build-overfishing-chart"
	dof "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/detect-overfishing"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// workerHandler is the surface shared by every task handler.
type workerHandler interface {
	camunda.JobHandler
	GetTaskType() string
	IsEnabled() bool
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting marine worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability init failed, continuing without otel metrics", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()
	checks := map[string]api.ReadinessCheck{}

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	checks["zeebe"] = zeebe.HealthCheck
	zapLog.Info("Zeebe client connected successfully")

	// --- Retrieval backends. Only the configured ones are opened. ---
	var backends retrieval.Backends

	switch cfg.Retrieval.Backend {
	case config.BackendElasticsearch:
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		backends.Elasticsearch = esClient.Client
		checks["elasticsearch"] = func(context.Context) error { return esClient.Ping() }
		zapLog.Info("Elasticsearch connected successfully")

	case config.BackendPostgres:
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		backends.Postgres = pg.DB
		checks["postgres"] = pg.Ping
		zapLog.Info("PostgreSQL connected successfully")
	}

	if cfg.Retrieval.CacheEnabled {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, context lookups run uncached", zap.Error(err))
		} else {
			defer rc.Close()
			backends.Redis = rc.Client
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Insight pipeline. Backends are built on first use and reused. ---
	lookup := retrieval.NewLazyLookup(func() (retrieval.ContextLookup, error) {
		return retrieval.New(cfg.Retrieval, backends, logger.Named(log, "retrieval"))
	})
	generator := generation.NewLazyGenerator(func() (generation.TextGenerator, error) {
		return generation.New(ctx, cfg.APIs.GenAI)
	})
	augmenter := insight.NewAugmenter(lookup, generator, insight.Options{
		TopK:    cfg.Retrieval.TopK,
		Timeout: config.GetDuration(cfg.Analysis.ExternalTimeout),
	}, log)

	notifier, err := alerting.New(ctx, cfg.Alerts, logger.Named(log, "alerting"))
	if err != nil {
		zapLog.Warn("alerting init failed, overfishing alerts disabled", zap.Error(err))
		notifier = alerting.Noop{}
	}

	// --- Analyzers and handlers ---
	overfishing := dof.NewAnalyzer(dof.Dependencies{Augmenter: augmenter, Notifier: notifier, Logger: log})
	species := as.NewSpeciesAnalyzer(augmenter, log)

	detectHandler, err := dof.NewHandler(dof.HandlerOptions{AppConfig: cfg, Analyzer: overfishing, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create detect-overfishing handler", zap.Error(err))
	}
	batchHandler, err := aob.NewHandler(aob.HandlerOptions{AppConfig: cfg, Analyzer: overfishing, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create analyze-overfishing-batch handler", zap.Error(err))
	}
	chartHandler, err := boc.NewHandler(boc.HandlerOptions{AppConfig: cfg, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create build-overfishing-chart handler", zap.Error(err))
	}
	speciesHandler, err := as.NewHandler(as.HandlerOptions{AppConfig: cfg, Analyzer: species, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create analyze-species handler", zap.Error(err))
	}

	orchestrator := rmi.NewOrchestrator(rmi.Dependencies{
		Overfishing:   overfishing,
		Batch:         batchHandler,
		Species:       species,
		Observability: obs,
		Logger:        log,
	})
	routeHandler, err := rmi.NewHandler(rmi.HandlerOptions{AppConfig: cfg, Orchestrator: orchestrator, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create route-marine-input handler", zap.Error(err))
	}

	// --- Workers ---
	handlers := []workerHandler{routeHandler, detectHandler, batchHandler, chartHandler, speciesHandler}
	workers := make([]*camunda.CamundaWorker, 0, len(handlers))
	for _, h := range handlers {
		if !h.IsEnabled() {
			zapLog.Info("worker disabled", zap.String("taskType", h.GetTaskType()))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, h.GetTaskType())
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      h.GetTaskType(),
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, h, zapLog))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- API, health and metrics server ---
	server := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.NewServer(api.Options{
			Router: orchestrator,
			Checks: checks,
			Logger: log,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping API server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
