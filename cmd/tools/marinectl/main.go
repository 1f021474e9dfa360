// cmd/tools/marinectl/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/v-i-n-a-y-29/HackVeda/internal/api"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/alerting"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/database"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/generation"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/insight"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/retrieval"
	as "github.com/v-i-n-a-y-29/HackVeda/internal/workers/fisheries/analyze-species"
	rmi "github.com/v-i-n-a-y-29/HackVeda/internal/workers/orchestration/route-marine-input"
	aob "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/analyze-overfishing-batch"
	dof "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/detect-overfishing"
)

// app carries global flags and builds the router on demand, so commands that
// need no backend (chart, tasks) run without configuration.
type app struct {
	configFile string
	logLevel   string
	timeout    time.Duration

	newRouter func(ctx context.Context) (api.Router, func(), error)
}

func main() {
	a := &app{}
	a.newRouter = a.buildRouter

	if err := newRootCommand(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "marinectl",
		Short:        "Offline marine monitoring analysis",
		Long:         "Run overfishing detection, species insight and routing against the configured context lookup and generation backends.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 2*time.Minute, "Overall command timeout")

	root.AddCommand(
		telemetryCommand(a),
		batchCommand(a),
		speciesCommand(a),
		routeCommand(a),
		chartCommand(),
		tasksCommand(),
	)
	return root
}

// buildRouter wires the same analyzers the worker manager runs, without Zeebe.
func (a *app) buildRouter(ctx context.Context) (api.Router, func(), error) {
	cfg, err := config.LoadWithOptions(config.Options{ConfigFile: a.configFile, RequireBroker: false})
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewStructured(a.logLevel, "console")
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	var backends retrieval.Backends
	switch cfg.Retrieval.Backend {
	case config.BackendElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, nil, err
		}
		backends.Elasticsearch = es.Client
	case config.BackendPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = pg.Close() })
		backends.Postgres = pg.DB
	}
	if cfg.Retrieval.CacheEnabled {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = rc.Close() })
		backends.Redis = rc.Client
	}

	lookup := retrieval.NewLazyLookup(func() (retrieval.ContextLookup, error) {
		return retrieval.New(cfg.Retrieval, backends, log)
	})
	generator := generation.NewLazyGenerator(func() (generation.TextGenerator, error) {
		return generation.New(ctx, cfg.APIs.GenAI)
	})
	augmenter := insight.NewAugmenter(lookup, generator, insight.Options{
		TopK:    cfg.Retrieval.TopK,
		Timeout: config.GetDuration(cfg.Analysis.ExternalTimeout),
	}, log)

	notifier, err := alerting.New(ctx, cfg.Alerts, log)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("alerting: %w", err)
	}

	overfishing := dof.NewAnalyzer(dof.Dependencies{Augmenter: augmenter, Notifier: notifier, Logger: log})
	router := rmi.NewOrchestrator(rmi.Dependencies{
		Overfishing: overfishing,
		Batch:       aob.NewBatchAnalyzer(overfishing, cfg.Analysis.BatchConcurrency, log),
		Species:     as.NewSpeciesAnalyzer(augmenter, log),
		Logger:      log,
	})
	return router, cleanup, nil
}
