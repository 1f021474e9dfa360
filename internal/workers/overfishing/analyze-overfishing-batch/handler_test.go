package analyzeoverfishingbatch

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
	detectoverfishing "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/detect-overfishing"
)

// deterministicAnalyzer evaluates readings without external calls and
// records the peak number of concurrent calls.
type deterministicAnalyzer struct {
	active int32
	peak   int32
	delay  time.Duration
}

func (d *deterministicAnalyzer) Analyze(ctx context.Context, r models.TelemetryReading) models.OverfishingVerdict {
	n := atomic.AddInt32(&d.active, 1)
	defer atomic.AddInt32(&d.active, -1)
	for {
		p := atomic.LoadInt32(&d.peak)
		if n <= p || atomic.CompareAndSwapInt32(&d.peak, p, n) {
			break
		}
	}
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	return detectoverfishing.Evaluate(r)
}

func randomReadings(n int, seed int64) []models.TelemetryReading {
	rng := rand.New(rand.NewSource(seed))
	out := make([]models.TelemetryReading, n)
	for i := range out {
		out[i] = models.TelemetryReading{
			Date:        fmt.Sprintf("reading-%03d", i),
			StockVolume: float64(rng.Intn(10000)),
			CatchVolume: float64(rng.Intn(3000)),
		}
	}
	return out
}

func TestAnalyzeBatch_EmptyInput(t *testing.T) {
	b := NewBatchAnalyzer(&deterministicAnalyzer{}, 4, logger.NewTestLogger(t))

	s := b.AnalyzeBatch(context.Background(), nil)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.OverfishingCount)
	assert.Equal(t, 0, s.HealthyCount)
	assert.Equal(t, 0.0, s.OverfishingRatio)
	assert.NotNil(t, s.Results)
	assert.Empty(t, s.Results)
}

func TestAnalyzeBatch_CountsAndOrder(t *testing.T) {
	for _, concurrency := range []int{1, 3, 16} {
		readings := randomReadings(57, int64(concurrency))
		b := NewBatchAnalyzer(&deterministicAnalyzer{}, concurrency, nil)

		s := b.AnalyzeBatch(context.Background(), readings)

		require.Len(t, s.Results, len(readings))
		assert.Equal(t, s.Total, len(s.Results))
		assert.Equal(t, s.Total, s.OverfishingCount+s.HealthyCount)
		for i, r := range readings {
			assert.Equal(t, r.Date, s.Results[i].Date)
			assert.Equal(t, r.StockVolume, s.Results[i].StockVolume)
			assert.Equal(t, r.CatchVolume, s.Results[i].CatchVolume)
		}
	}
}

func TestAnalyzeBatch_BoundedConcurrency(t *testing.T) {
	a := &deterministicAnalyzer{delay: 5 * time.Millisecond}
	NewBatchAnalyzer(a, 3, nil).AnalyzeBatch(context.Background(), randomReadings(20, 1))

	assert.LessOrEqual(t, atomic.LoadInt32(&a.peak), int32(3))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&a.peak), int32(1))
}

func TestSummarize_Ratio(t *testing.T) {
	s := Summarize([]models.OverfishingVerdict{
		{IsOverfishing: true},
		{IsOverfishing: false},
		{IsOverfishing: false},
	})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.OverfishingCount)
	assert.Equal(t, 2, s.HealthyCount)
	assert.Equal(t, 0.33, s.OverfishingRatio)
}

func newTestHandler(t *testing.T) *Handler {
	h, err := NewHandler(HandlerOptions{
		Analyzer: &deterministicAnalyzer{},
		Logger:   logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestHandler_ExecuteFromCSV(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		Readings: []models.TelemetryReading{{Date: "ignored", StockVolume: 1, CatchVolume: 1}},
		CSV:      "Date, Stock_Volume, Catch_Volume\n2024-01,1000,250\n2024-02,1000,200\n",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.OverfishingCount)
	assert.Equal(t, 0.5, out.Summary.OverfishingRatio)
	assert.Equal(t, "2024-01", out.Summary.Results[0].Date)

	_, err = h.Execute(context.Background(), &Input{CSV: "when,stock\n2024-01,10\n"})
	se, ok := errors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCSVColumnsMissing, se.Code)
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t)

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: `{"telemetry_list": [
		{"date": "2024-01", "stock_volume": 1000, "catch_volume": 250},
		{"stock_volume": 1000, "catch_volume": 200}
	]}`}}
	input, err := h.parseInput(job)
	require.NoError(t, err)
	require.Len(t, input.Readings, 2)
	assert.Equal(t, models.UnknownDate, input.Readings[1].Date)

	input, err = h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2, Variables: `{}`}})
	require.NoError(t, err)
	assert.Empty(t, input.Readings)

	_, err = h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 3, Variables: `{"telemetry_list": [{"stock_volume": 10}]}`}})
	assert.True(t, errors.IsInputError(err))
}

func BenchmarkBatchAnalyzer_AnalyzeBatch(b *testing.B) {
	batch := NewBatchAnalyzer(&deterministicAnalyzer{}, 4, logger.NewNoOpLogger())

	readings := randomReadings(500, 7)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch.AnalyzeBatch(context.Background(), readings)
	}
}
