package routemarineinput

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/retrieval"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
	analyzespecies "github.com/v-i-n-a-y-29/HackVeda/internal/workers/fisheries/analyze-species"
	analyzeoverfishingbatch "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/analyze-overfishing-batch"
	detectoverfishing "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/detect-overfishing"
)

// fakeAugmenter answers every query and counts calls per corpus.
type fakeAugmenter struct {
	calls map[retrieval.Corpus]int
}

func (f *fakeAugmenter) Augment(ctx context.Context, retrievalQuery string, corpus retrieval.Corpus, userQuery string) (string, error) {
	if f.calls == nil {
		f.calls = map[retrieval.Corpus]int{}
	}
	f.calls[corpus]++
	return "insight for " + string(corpus), nil
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newOrchestrator(t *testing.T) (*Orchestrator, *fakeAugmenter) {
	aug := &fakeAugmenter{}
	log := logger.NewTestLogger(t)
	overfishing := detectoverfishing.NewAnalyzer(detectoverfishing.Dependencies{Augmenter: aug, Logger: log})

	return NewOrchestrator(Dependencies{
		Overfishing: overfishing,
		Batch:       analyzeoverfishingbatch.NewBatchAnalyzer(overfishing, 2, log),
		Species:     analyzespecies.NewSpeciesAnalyzer(aug, log),
		Logger:      log,
		Now:         func() time.Time { return fixedNow },
	}), aug
}

func TestAutoRoute_TelemetryWinsOverSpecies(t *testing.T) {
	o, aug := newOrchestrator(t)

	resp := o.AutoRoute(context.Background(), map[string]interface{}{
		"stock_volume": 100.0,
		"catch_volume": 25.0,
		"species":      "Cod",
	})

	require.False(t, resp.IsError())
	assert.Equal(t, models.AgentOverfishing, resp.Agent)
	assert.Equal(t, models.InputTelemetry, resp.InputType)
	verdict, ok := resp.Analysis.(models.OverfishingVerdict)
	require.True(t, ok)
	assert.True(t, verdict.IsOverfishing)
	assert.Equal(t, 20.0, verdict.Threshold)
	assert.Equal(t, 1, aug.calls[retrieval.CorpusOverfishing])
	assert.Zero(t, aug.calls[retrieval.CorpusFisheries])
	assert.Equal(t, "2024-03-01T12:00:00Z", resp.Timestamp)
}

func TestAutoRoute_Rules(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]interface{}
		inputType models.InputType
		agent     models.Agent
	}{
		{
			name:      "batch",
			data:      map[string]interface{}{"telemetry_list": []interface{}{}},
			inputType: models.InputTelemetryBatch,
			agent:     models.AgentOverfishing,
		},
		{
			name:      "species query",
			data:      map[string]interface{}{"species": "Cod"},
			inputType: models.InputSpeciesQuery,
			agent:     models.AgentFisheries,
		},
		{
			name:      "image",
			data:      map[string]interface{}{"species": "Cod", "confidence": 31.0},
			inputType: models.InputImage,
			agent:     models.AgentFisheries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := newOrchestrator(t)
			resp := o.AutoRoute(context.Background(), tt.data)

			require.False(t, resp.IsError(), resp.Error)
			assert.Equal(t, tt.inputType, resp.InputType)
			assert.Equal(t, tt.agent, resp.Agent)
		})
	}
}

func TestAutoRoute_Unrecognised(t *testing.T) {
	o, aug := newOrchestrator(t)

	resp := o.AutoRoute(context.Background(), map[string]interface{}{"temperature": 14.2, "depth": 30.0})

	require.True(t, resp.IsError())
	assert.Equal(t, "Could not auto-detect input type", resp.Error)
	assert.Equal(t, models.AutoDetectHint, resp.Hint)
	assert.Equal(t, []string{"depth", "temperature"}, resp.ReceivedKeys)
	assert.Empty(t, aug.calls)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"error": "Could not auto-detect input type",
		"hint": "`+models.AutoDetectHint+`",
		"received_keys": ["depth", "temperature"],
		"timestamp": "2024-03-01T12:00:00Z"
	}`, string(raw))
}

func TestRoute_UnknownType(t *testing.T) {
	o, _ := newOrchestrator(t)

	resp := o.Route(context.Background(), "sonar", map[string]interface{}{})

	require.True(t, resp.IsError())
	assert.Equal(t, "Unknown input type: sonar", resp.Error)
	assert.Equal(t, models.SupportedInputTypes(), resp.SupportedTypes)
	assert.Empty(t, resp.Agent)
}

func TestRoute_InvalidPayloads(t *testing.T) {
	o, _ := newOrchestrator(t)

	resp := o.Route(context.Background(), models.InputTelemetry, map[string]interface{}{"stock_volume": 100.0})
	require.True(t, resp.IsError())
	assert.Equal(t, models.InputTelemetry, resp.InputType)
	assert.Contains(t, resp.Error, "catch_volume is required")

	resp = o.Route(context.Background(), models.InputSpeciesQuery, map[string]interface{}{"species": ""})
	require.True(t, resp.IsError())
	assert.Contains(t, resp.Error, "species is required")
}

func TestRoute_EmptyBatch(t *testing.T) {
	o, aug := newOrchestrator(t)

	resp := o.Route(context.Background(), models.InputTelemetryBatch, map[string]interface{}{})

	require.False(t, resp.IsError())
	summary, ok := resp.Analysis.(models.BatchSummary)
	require.True(t, ok)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.OverfishingRatio)
	assert.Empty(t, summary.Results)
	assert.Empty(t, aug.calls)
}

func TestRoute_ImageGate(t *testing.T) {
	o, aug := newOrchestrator(t)

	resp := o.Route(context.Background(), models.InputImage, map[string]interface{}{"species": "Cod", "confidence": 30.0})
	enriched := resp.Analysis.(models.EnrichedClassification)
	assert.Equal(t, models.DataSourceNone, enriched.BiologicalData.DataSource)
	assert.Zero(t, aug.calls[retrieval.CorpusFisheries])

	resp = o.Route(context.Background(), models.InputImage, map[string]interface{}{"species": "Cod", "confidence": 31.0})
	enriched = resp.Analysis.(models.EnrichedClassification)
	assert.Equal(t, models.DataSourceFisheries, enriched.BiologicalData.DataSource)
	assert.Equal(t, 1, aug.calls[retrieval.CorpusFisheries])
}

func TestInputFromMap(t *testing.T) {
	in := InputFromMap(map[string]interface{}{
		"input_type": "telemetry",
		"data":       map[string]interface{}{"stock_volume": 1.0, "catch_volume": 0.1},
	})
	assert.Equal(t, models.InputTelemetry, in.InputType)
	assert.Len(t, in.Data, 2)

	in = InputFromMap(map[string]interface{}{"species": "Cod"})
	assert.Empty(t, in.InputType)
	assert.Equal(t, map[string]interface{}{"species": "Cod"}, in.Data)

	in = InputFromMap(map[string]interface{}{"input_type": 5.0, "species": "Cod"})
	assert.Equal(t, models.InputType("5"), in.InputType)
	assert.NotContains(t, in.Data, "input_type")
}

func TestRoute_NonStringInputType(t *testing.T) {
	o, _ := newOrchestrator(t)

	for _, raw := range []interface{}{5.0, true} {
		in := InputFromMap(map[string]interface{}{"input_type": raw, "stock_volume": 1000.0, "catch_volume": 100.0})
		resp := o.Route(context.Background(), in.InputType, in.Data)
		require.True(t, resp.IsError())
		assert.Equal(t, "Unknown input type: "+fmt.Sprint(raw), resp.Error)
		assert.Equal(t, models.SupportedInputTypes(), resp.SupportedTypes)
	}
}

func TestHandler_Execute(t *testing.T) {
	o, _ := newOrchestrator(t)
	h, err := NewHandler(HandlerOptions{Orchestrator: o, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)

	input, err := h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       1,
		Variables: `{"date": "2024-02", "stock_volume": 1000, "catch_volume": 200}`,
	}})
	require.NoError(t, err)

	out := h.Execute(context.Background(), input)
	require.False(t, out.Response.IsError())
	verdict := out.Response.Analysis.(models.OverfishingVerdict)
	assert.Equal(t, models.StatusHealthy, verdict.Status)
	assert.False(t, verdict.IsOverfishing)

	_, err = h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2, Variables: `[1,2]`}})
	assert.True(t, errors.IsInputError(err))

	input, err = h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:       3,
		Variables: `{"input_type": 7, "data": {"species": "Cod"}}`,
	}})
	require.NoError(t, err)
	out = h.Execute(context.Background(), input)
	assert.Equal(t, "Unknown input type: 7", out.Response.Error)
	assert.NotEmpty(t, out.Response.SupportedTypes)
}
