package analyzespecies

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/retrieval"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
)

type MockAugmenter struct {
	mock.Mock
}

func (m *MockAugmenter) Augment(ctx context.Context, retrievalQuery string, corpus retrieval.Corpus, userQuery string) (string, error) {
	args := m.Called(ctx, retrievalQuery, corpus, userQuery)
	return args.String(0), args.Error(1)
}

func TestSpeciesQuery(t *testing.T) {
	assert.Equal(t,
		"What is the conservation status, habitat, key biological characteristics, and ecological importance of Cod? "+
			"Include information about their distribution, behavior, and any threats they face.",
		SpeciesQuery("Cod"))
}

func TestAnalyzeSpecies(t *testing.T) {
	aug := &MockAugmenter{}
	aug.On("Augment", mock.Anything, SpeciesQuery("Cod"), retrieval.CorpusFisheries, SpeciesQuery("Cod")).
		Return("Atlantic cod is listed as vulnerable.", nil)

	insight := NewSpeciesAnalyzer(aug, logger.NewTestLogger(t)).AnalyzeSpecies(context.Background(), "Cod")

	assert.Equal(t, models.SpeciesInsight{
		Species:        "Cod",
		BiologicalInfo: "Atlantic cod is listed as vulnerable.",
		DataSource:     models.DataSourceFisheries,
	}, insight)
	aug.AssertExpectations(t)
}

func TestAnalyzeSpecies_Failure(t *testing.T) {
	aug := &MockAugmenter{}
	aug.On("Augment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.NewGenerationFailedError(stderrors.New("quota exhausted")))

	insight := NewSpeciesAnalyzer(aug, nil).AnalyzeSpecies(context.Background(), "Tuna")

	assert.Equal(t, "Tuna", insight.Species)
	assert.Equal(t, models.DataSourceError, insight.DataSource)
	assert.Contains(t, insight.BiologicalInfo, "Error retrieving species information: ")
	assert.Contains(t, insight.BiologicalInfo, "quota exhausted")
}

func TestClassifyAndEnrich_Gate(t *testing.T) {
	tests := []struct {
		name       string
		species    string
		confidence float64
		lookup     bool
	}{
		{"at gate", "Cod", 30, false},
		{"just above gate", "Cod", 31, true},
		{"unknown sentinel", models.SpeciesUnknown, 99, false},
		{"error sentinel", models.SpeciesError, 99, false},
		{"empty species", "", 99, false},
		{"high confidence", "Haddock", 87.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aug := &MockAugmenter{}
			aug.On("Augment", mock.Anything, mock.Anything, retrieval.CorpusFisheries, mock.Anything).Return("biology", nil)

			out := NewSpeciesAnalyzer(aug, nil).ClassifyAndEnrich(context.Background(), models.ClassificationResult{
				Species:    tt.species,
				Confidence: tt.confidence,
			})

			assert.Equal(t, tt.species, out.Classification.Species)
			assert.NotNil(t, out.Classification.TopPredictions)
			assert.Equal(t, tt.species, out.BiologicalData.Species)
			if tt.lookup {
				assert.Equal(t, models.DataSourceFisheries, out.BiologicalData.DataSource)
				aug.AssertNumberOfCalls(t, "Augment", 1)
			} else {
				assert.Equal(t, models.DataSourceNone, out.BiologicalData.DataSource)
				assert.Equal(t, "Species not identified with sufficient confidence for biological lookup.", out.BiologicalData.BiologicalInfo)
				aug.AssertNotCalled(t, "Augment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHandler_ParseInput(t *testing.T) {
	h, err := NewHandler(HandlerOptions{
		Analyzer: NewSpeciesAnalyzer(&MockAugmenter{}, nil),
		Logger:   logger.NewTestLogger(t),
	})
	require.NoError(t, err)

	input, err := h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: `{"species": " Cod "}`}})
	require.NoError(t, err)
	assert.Equal(t, "Cod", input.Species)
	assert.Nil(t, input.Classification)

	input, err = h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2, Variables: `{"confidence": 12}`}})
	require.NoError(t, err)
	require.NotNil(t, input.Classification)
	assert.Equal(t, models.SpeciesUnknown, input.Classification.Species)

	out := h.Execute(context.Background(), input)
	require.NotNil(t, out.Enriched)
	assert.Nil(t, out.Insight)
	assert.Equal(t, models.DataSourceNone, out.Enriched.BiologicalData.DataSource)

	_, err = h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 3, Variables: `{}`}})
	assert.True(t, errors.IsInputError(err))

	_, err = h.parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 4, Variables: `{"species": "Cod", "confidence": 140}`}})
	assert.True(t, errors.IsInputError(err))
}
