// internal/workers/fisheries/analyze-species/handler.go
package analyzespecies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/camunda"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/metrics"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
	"github.com/v-i-n-a-y-29/HackVeda/pkg/registry"
)

const TaskType = "analyze-species"

type Handler struct {
	config       *Config
	logger       logger.Logger
	analyzer     *SpeciesAnalyzer
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Analyzer     *SpeciesAnalyzer
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Analyzer == nil {
		return nil, fmt.Errorf("%s requires a species analyzer", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:       workerConfig,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		analyzer:     opts.Analyzer,
		errorHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	output := h.Execute(ctx, input)
	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	if input.Classification != nil {
		enriched := h.analyzer.ClassifyAndEnrich(ctx, *input.Classification)
		return &Output{Enriched: &enriched}
	}
	insight := h.analyzer.AnalyzeSpecies(ctx, input.Species)
	return &Output{Insight: &insight}
}

// parseInput treats a payload carrying confidence as classifier output and
// anything else as a species query.
func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := camunda.JobVariables(job, registry.InputSchema(TaskType))
	if err != nil {
		return nil, err
	}

	if _, ok := variables["confidence"]; ok {
		c, err := models.ClassificationFromMap(variables)
		if err != nil {
			return nil, err
		}
		return &Input{Classification: &c}, nil
	}

	species, _ := variables["species"].(string)
	species = strings.TrimSpace(species)
	if species == "" {
		return nil, errors.NewInvalidInputError("species is required")
	}
	return &Input{Species: species}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := "UNKNOWN_ERROR"
	if stdErr, ok := errors.AsStandard(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
