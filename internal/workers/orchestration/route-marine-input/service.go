// internal/workers/orchestration/route-marine-input/service.go
package routemarineinput

import (
	"context"
	"fmt"
	"time"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/metrics"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/observability"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
)

type OverfishingAnalyzer interface {
	Analyze(ctx context.Context, r models.TelemetryReading) models.OverfishingVerdict
}

type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, readings []models.TelemetryReading) models.BatchSummary
}

type SpeciesAnalyzer interface {
	AnalyzeSpecies(ctx context.Context, species string) models.SpeciesInsight
	ClassifyAndEnrich(ctx context.Context, c models.ClassificationResult) models.EnrichedClassification
}

type Dependencies struct {
	Overfishing   OverfishingAnalyzer
	Batch         BatchAnalyzer
	Species       SpeciesAnalyzer
	Observability *observability.Observability
	Logger        logger.Logger
	// Now stamps responses; defaults to time.Now.
	Now func() time.Time
}

// Orchestrator resolves an input kind and dispatches to one analyzer. It
// holds no per-request state. Input problems come back as error envelopes.
type Orchestrator struct {
	overfishing OverfishingAnalyzer
	batch       BatchAnalyzer
	species     SpeciesAnalyzer
	obs         *observability.Observability
	logger      logger.Logger
	now         func() time.Time
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		overfishing: deps.Overfishing,
		batch:       deps.Batch,
		species:     deps.Species,
		obs:         deps.Observability,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:         now,
	}
}

// Route dispatches data to the analyzer serving inputType.
func (o *Orchestrator) Route(ctx context.Context, inputType models.InputType, data map[string]interface{}) models.RoutedResponse {
	start := time.Now()

	req, err := models.DecodeRequest(inputType, data)
	if err != nil {
		resp := o.errorEnvelope(inputType, err)
		o.obs.RecordAnalysis(ctx, string(inputType), "rejected", time.Since(start))
		return resp
	}

	resp := o.Dispatch(ctx, req)
	o.obs.RecordAnalysis(ctx, string(inputType), "ok", time.Since(start))
	return resp
}

// AutoRoute infers the input kind from the keys present in data and routes it.
func (o *Orchestrator) AutoRoute(ctx context.Context, data map[string]interface{}) models.RoutedResponse {
	keys := models.SortedKeys(data)

	inputType, ok := models.InferInputType(keys)
	if !ok {
		metrics.RoutingErrors.WithLabelValues("auto_detect_failed").Inc()
		o.logger.Info("could not infer input type", map[string]interface{}{"receivedKeys": keys})
		return models.RoutedResponse{
			Error:        autoDetectError,
			Hint:         models.AutoDetectHint,
			ReceivedKeys: keys,
			Timestamp:    models.Timestamp(o.now()),
		}
	}

	o.logger.Debug("input type inferred", map[string]interface{}{"inputType": string(inputType)})
	return o.Route(ctx, inputType, data)
}

// Dispatch runs the analyzer for an already decoded request.
func (o *Orchestrator) Dispatch(ctx context.Context, req models.RoutedRequest) models.RoutedResponse {
	agent := models.AgentFor(req.InputType)

	var analysis interface{}
	switch req.InputType {
	case models.InputImage:
		analysis = o.species.ClassifyAndEnrich(ctx, *req.Classification)
	case models.InputSpeciesQuery:
		analysis = o.species.AnalyzeSpecies(ctx, req.Species)
	case models.InputTelemetry:
		analysis = o.overfishing.Analyze(ctx, *req.Telemetry)
	case models.InputTelemetryBatch:
		analysis = o.batch.AnalyzeBatch(ctx, req.Batch)
	default:
		return o.errorEnvelope(req.InputType, errors.NewUnknownInputTypeError(string(req.InputType)))
	}

	metrics.RoutedRequests.WithLabelValues(string(agent), string(req.InputType)).Inc()
	o.logger.Info("request routed", map[string]interface{}{
		"agent":     string(agent),
		"inputType": string(req.InputType),
	})

	return models.RoutedResponse{
		Agent:     agent,
		InputType: req.InputType,
		Analysis:  analysis,
		Timestamp: models.Timestamp(o.now()),
	}
}

func (o *Orchestrator) errorEnvelope(inputType models.InputType, err error) models.RoutedResponse {
	resp := models.RoutedResponse{Timestamp: models.Timestamp(o.now())}

	stdErr, ok := errors.AsStandard(err)
	if !ok {
		stdErr = errors.NewInternalError(err)
	}
	metrics.RoutingErrors.WithLabelValues(string(stdErr.Code)).Inc()

	if stdErr.Code == errors.ErrCodeUnknownInputType {
		resp.Error = stdErr.Message
		resp.SupportedTypes = models.SupportedInputTypes()
		return resp
	}

	resp.InputType = inputType
	resp.Error = stdErr.Message
	if stdErr.Details != "" {
		resp.Error = fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details)
	}
	o.logger.Info("request rejected", map[string]interface{}{
		"inputType": string(inputType),
		"errorCode": string(stdErr.Code),
	})
	return resp
}
