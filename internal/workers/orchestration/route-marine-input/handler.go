// internal/workers/orchestration/route-marine-input/handler.go
package routemarineinput

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
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
	"github.com/v-i-n-a-y-29/HackVeda/pkg/registry"
)

const TaskType = "route-marine-input"

type Handler struct {
	config       *Config
	logger       logger.Logger
	orchestrator *Orchestrator
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Orchestrator *Orchestrator
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Orchestrator == nil {
		return nil, fmt.Errorf("%s requires an orchestrator", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:       workerConfig,
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
		orchestrator: opts.Orchestrator,
		errorHandler: errors.NewErrorHandler(log),
	}, nil
}

// Handle completes every decodable job, error envelopes included. Only an
// unreadable payload fails the job.
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
		code := "UNKNOWN_ERROR"
		if stdErr, ok := errors.AsStandard(err); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
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
	if input.InputType == "" {
		return &Output{Response: h.orchestrator.AutoRoute(ctx, input.Data)}
	}
	return &Output{Response: h.orchestrator.Route(ctx, input.InputType, input.Data)}
}

// parseInput reads {input_type?, data?}. Without a data object the remaining
// job variables are the payload.
func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := camunda.JobVariables(job, registry.InputSchema(TaskType))
	if err != nil {
		return nil, err
	}
	return InputFromMap(variables), nil
}

// InputFromMap splits a request body or job payload into type and data.
func InputFromMap(variables map[string]interface{}) *Input {
	input := &Input{}
	switch t := variables["input_type"].(type) {
	case nil:
	case string:
		input.InputType = models.InputType(t)
	default:
		input.InputType = models.InputType(fmt.Sprint(t))
	}

	if data, ok := variables["data"].(map[string]interface{}); ok {
		input.Data = data
		return input
	}

	input.Data = make(map[string]interface{}, len(variables))
	for k, v := range variables {
		if k == "input_type" {
			continue
		}
		input.Data[k] = v
	}
	return input
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

// Orchestrator exposes the router to in-process callers such as the HTTP API.
func (h *Handler) Orchestrator() *Orchestrator {
	return h.orchestrator
}
