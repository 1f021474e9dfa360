// internal/workers/overfishing/analyze-overfishing-batch/handler.go
package analyzeoverfishingbatch

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/camunda"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/metrics"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/telemetry"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
	"github.com/v-i-n-a-y-29/HackVeda/pkg/registry"
)

const TaskType = "analyze-overfishing-batch"

type Handler struct {
	config       *Config
	logger       logger.Logger
	batch        *BatchAnalyzer
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Analyzer     ReadingAnalyzer
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Analyzer == nil {
		return nil, fmt.Errorf("%s requires an analyzer", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:       workerConfig,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		batch:        NewBatchAnalyzer(opts.Analyzer, workerConfig.Concurrency, log),
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

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

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

// Execute parses CSV input when present and analyzes the batch.
// Only malformed CSV fails.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	readings := input.Readings
	if input.CSV != "" {
		parsed, err := telemetry.ParseCSVString(input.CSV)
		if err != nil {
			return nil, err
		}
		readings = parsed
	}
	return &Output{Summary: h.batch.AnalyzeBatch(ctx, readings)}, nil
}

// AnalyzeBatch exposes the batch analyzer to in-process callers.
func (h *Handler) AnalyzeBatch(ctx context.Context, readings []models.TelemetryReading) models.BatchSummary {
	return h.batch.AnalyzeBatch(ctx, readings)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := camunda.JobVariables(job, registry.InputSchema(TaskType))
	if err != nil {
		return nil, err
	}

	readings, err := models.ReadingsFromList(variables["telemetry_list"])
	if err != nil {
		return nil, err
	}
	input := &Input{Readings: readings}
	if csvText, ok := variables["csv"].(string); ok {
		input.CSV = csvText
	}
	return input, nil
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
