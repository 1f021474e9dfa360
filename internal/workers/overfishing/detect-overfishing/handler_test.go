package detectoverfishing

import (
	"context"
	stderrors "errors"
	"math/rand"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/alerting"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/retrieval"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockAugmenter struct {
	mock.Mock
}

func (m *MockAugmenter) Augment(ctx context.Context, retrievalQuery string, corpus retrieval.Corpus, userQuery string) (string, error) {
	args := m.Called(ctx, retrievalQuery, corpus, userQuery)
	return args.String(0), args.Error(1)
}

type recordingNotifier struct {
	alerts []alerting.Alert
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, alert alerting.Alert) error {
	n.alerts = append(n.alerts, alert)
	return n.err
}

func newAnalyzer(t *testing.T, aug Augmenter, n alerting.Notifier) *Analyzer {
	return NewAnalyzer(Dependencies{Augmenter: aug, Notifier: n, Logger: logger.NewTestLogger(t)})
}

// ==========================
// Deterministic verdict
// ==========================

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		reading       models.TelemetryReading
		threshold     float64
		pct           float64
		isOverfishing bool
		status        string
	}{
		{
			name:          "catch above 20 percent",
			reading:       models.TelemetryReading{Date: "2024-01", StockVolume: 1000, CatchVolume: 250},
			threshold:     200.0,
			pct:           25.0,
			isOverfishing: true,
			status:        models.StatusOverfishing,
		},
		{
			name:          "catch exactly at 20 percent is healthy",
			reading:       models.TelemetryReading{Date: "2024-02", StockVolume: 1000, CatchVolume: 200},
			threshold:     200.0,
			pct:           20.0,
			isOverfishing: false,
			status:        models.StatusHealthy,
		},
		{
			name:          "zero stock with zero catch",
			reading:       models.TelemetryReading{Date: "2024-03", StockVolume: 0, CatchVolume: 0},
			threshold:     0,
			pct:           0,
			isOverfishing: false,
			status:        models.StatusHealthy,
		},
		{
			name:          "zero stock with any catch",
			reading:       models.TelemetryReading{Date: "2024-04", StockVolume: 0, CatchVolume: 5},
			threshold:     0,
			pct:           0,
			isOverfishing: true,
			status:        models.StatusOverfishing,
		},
		{
			name:          "percentage rounds to two decimals",
			reading:       models.TelemetryReading{Date: "2023-04", StockVolume: 21032, CatchVolume: 5740},
			threshold:     4206.4,
			pct:           27.29,
			isOverfishing: true,
			status:        models.StatusOverfishing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.reading)
			assert.Equal(t, tt.reading.Date, v.Date)
			assert.InDelta(t, tt.threshold, v.Threshold, 1e-9)
			assert.Equal(t, tt.pct, v.CatchPercentage)
			assert.Equal(t, tt.isOverfishing, v.IsOverfishing)
			assert.Equal(t, tt.status, v.Status)
			if tt.isOverfishing {
				assert.Empty(t, v.Message)
			} else {
				assert.Equal(t, models.HealthyMessage, v.Message)
			}
		})
	}
}

func TestEvaluate_StrictThresholdProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		stock := float64(rng.Intn(100000))
		catch := float64(rng.Intn(40000))
		if i%10 == 0 {
			catch = stock * 0.2
		}

		v := Evaluate(models.TelemetryReading{StockVolume: stock, CatchVolume: catch})
		assert.Equal(t, catch > 0.2*stock, v.IsOverfishing, "stock=%v catch=%v", stock, catch)
	}
}

// ==========================
// Augmentation
// ==========================

func TestAnalyze_HealthySkipsExternalCalls(t *testing.T) {
	aug := &MockAugmenter{}
	notifier := &recordingNotifier{}

	v := newAnalyzer(t, aug, notifier).Analyze(context.Background(),
		models.TelemetryReading{Date: "2024-02", StockVolume: 1000, CatchVolume: 200})

	assert.False(t, v.IsOverfishing)
	assert.Empty(t, v.Narrative)
	assert.Empty(t, v.Recommendations)
	assert.Empty(t, notifier.alerts)
	aug.AssertNotCalled(t, "Augment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_OverfishingAttachesGuidance(t *testing.T) {
	reading := models.TelemetryReading{Date: "2024-01", StockVolume: 1000, CatchVolume: 250}
	aug := &MockAugmenter{}
	aug.On("Augment", mock.Anything, PolicyQuery, retrieval.CorpusOverfishing, mock.MatchedBy(func(prompt string) bool {
		return assert.Contains(t, prompt, "On date 2024-01, a fishery recorded a Stock Volume of 1000 and a Catch Volume of 250.") &&
			assert.Contains(t, prompt, "The Catch Volume was 25% of the total stock") &&
			assert.Contains(t, prompt, "margin of 50 units")
	})).Return("Penalties include licence suspension.", nil)
	notifier := &recordingNotifier{}

	v := newAnalyzer(t, aug, notifier).Analyze(context.Background(), reading)

	assert.True(t, v.IsOverfishing)
	assert.Equal(t, models.StatusOverfishing, v.Status)
	assert.Equal(t, "Penalties include licence suspension.", v.Narrative)
	assert.Equal(t, []string{
		"Reduce catch volume by at least 50 units immediately",
		"Review FAO sustainable fishing guidelines for current stock levels",
		"Implement catch monitoring systems",
		"Consider alternative species",
	}, v.Recommendations)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, "2024-01", notifier.alerts[0].Date)
	aug.AssertExpectations(t)
}

func TestAnalyze_LookupFailureFallsBack(t *testing.T) {
	reading := models.TelemetryReading{Date: "2024-01", StockVolume: 1000, CatchVolume: 250}
	aug := &MockAugmenter{}
	aug.On("Augment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.NewContextLookupFailedError("overfishing", stderrors.New("connection refused")))

	v := newAnalyzer(t, aug, nil).Analyze(context.Background(), reading)

	assert.True(t, v.IsOverfishing)
	assert.Equal(t, 200.0, v.Threshold)
	assert.Equal(t, 25.0, v.CatchPercentage)
	assert.Equal(t, models.StatusOverfishing, v.Status)
	assert.Contains(t, v.Narrative, "Error retrieving policy insights: ")
	assert.Contains(t, v.Narrative, "connection refused")
	assert.Equal(t, FallbackRecommendations(), v.Recommendations)
	assert.NotEmpty(t, v.Recommendations)
}

func TestAnalyze_AlertFailureDoesNotChangeVerdict(t *testing.T) {
	aug := &MockAugmenter{}
	aug.On("Augment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("guidance", nil)
	notifier := &recordingNotifier{err: errors.NewAlertPublishFailedError("sns", stderrors.New("throttled"))}

	v := newAnalyzer(t, aug, notifier).Analyze(context.Background(),
		models.TelemetryReading{Date: "2024-05", StockVolume: 100, CatchVolume: 90})

	assert.Equal(t, "guidance", v.Narrative)
	assert.Len(t, v.Recommendations, 4)
	assert.Len(t, notifier.alerts, 1)
}

func TestRecommendations_RoundsExcessUp(t *testing.T) {
	recs := Recommendations(models.TelemetryReading{StockVolume: 1000, CatchVolume: 200.5})
	assert.Equal(t, "Reduce catch volume by at least 1 units immediately", recs[0])

	recs = Recommendations(models.TelemetryReading{StockVolume: 21032, CatchVolume: 5740})
	assert.Equal(t, "Reduce catch volume by at least 1534 units immediately", recs[0])

	r := models.TelemetryReading{StockVolume: 1000, CatchVolume: 200.004}
	require.True(t, Evaluate(r).IsOverfishing)
	assert.Equal(t, "Reduce catch volume by at least 1 units immediately", Recommendations(r)[0])

	r = models.TelemetryReading{StockVolume: 1, CatchVolume: 0.2004}
	require.True(t, Evaluate(r).IsOverfishing)
	assert.Equal(t, "Reduce catch volume by at least 1 units immediately", Recommendations(r)[0])

	recs = Recommendations(models.TelemetryReading{StockVolume: 1000, CatchVolume: 203})
	assert.Equal(t, "Reduce catch volume by at least 3 units immediately", recs[0])
}

// ==========================
// Handler
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	h, err := NewHandler(HandlerOptions{
		AppConfig: &config.Config{},
		Analyzer:  newAnalyzer(t, &MockAugmenter{}, nil),
		Logger:    logger.NewTestLogger(t),
	})
	require.NoError(t, err)

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: `{"stock_volume": 1000, "catch_volume": 200}`}}
	input, err := h.parseInput(job)
	require.NoError(t, err)
	assert.Equal(t, models.UnknownDate, input.Reading.Date)

	out := h.Execute(context.Background(), input)
	assert.Equal(t, models.StatusHealthy, out.Verdict.Status)

	job = entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2, Variables: `{"stock_volume": -5, "catch_volume": 1}`}}
	_, err = h.parseInput(job)
	assert.True(t, errors.IsInputError(err))
}

func TestNewHandler_Config(t *testing.T) {
	_, err := NewHandler(HandlerOptions{})
	assert.Error(t, err)

	h, err := NewHandler(HandlerOptions{
		AppConfig: &config.Config{Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: false, MaxJobsActive: 2, Timeout: 5000},
		}},
		Analyzer: newAnalyzer(t, &MockAugmenter{}, nil),
	})
	require.NoError(t, err)
	assert.False(t, h.IsEnabled())
	assert.Equal(t, 2, h.GetConfig().MaxJobsActive)
	assert.Equal(t, TaskType, h.GetTaskType())
}
