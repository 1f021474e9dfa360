// internal/workers/fisheries/analyze-species/service.go
package analyzespecies

import (
	"context"
	"fmt"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/retrieval"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
)

type Augmenter interface {
	Augment(ctx context.Context, retrievalQuery string, corpus retrieval.Corpus, userQuery string) (string, error)
}

// SpeciesQuery is the biology and conservation question asked about a species.
func SpeciesQuery(species string) string {
	return fmt.Sprintf("What is the conservation status, habitat, key biological characteristics, "+
		"and ecological importance of %s? Include information about their distribution, "+
		"behavior, and any threats they face.", species)
}

// PassesGate reports whether a classification is trustworthy enough to look up.
func PassesGate(c models.ClassificationResult) bool {
	switch c.Species {
	case "", models.SpeciesUnknown, models.SpeciesError:
		return false
	}
	return c.Confidence > ConfidenceGate
}

type SpeciesAnalyzer struct {
	augmenter Augmenter
	logger    logger.Logger
}

func NewSpeciesAnalyzer(augmenter Augmenter, log logger.Logger) *SpeciesAnalyzer {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &SpeciesAnalyzer{
		augmenter: augmenter,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// AnalyzeSpecies looks up biology context for species. Failures are reported
// in the insight with data source "error".
func (s *SpeciesAnalyzer) AnalyzeSpecies(ctx context.Context, species string) models.SpeciesInsight {
	query := SpeciesQuery(species)
	info, err := s.augmenter.Augment(ctx, query, retrieval.CorpusFisheries, query)
	if err != nil {
		s.logger.Warn("species lookup failed", map[string]interface{}{
			"species": species,
			"error":   err,
		})
		return models.SpeciesInsight{
			Species:        species,
			BiologicalInfo: speciesErrorPrefix + err.Error(),
			DataSource:     models.DataSourceError,
		}
	}

	return models.SpeciesInsight{
		Species:        species,
		BiologicalInfo: info,
		DataSource:     models.DataSourceFisheries,
	}
}

// ClassifyAndEnrich attaches biology context to a classifier result that
// passes the confidence gate.
func (s *SpeciesAnalyzer) ClassifyAndEnrich(ctx context.Context, c models.ClassificationResult) models.EnrichedClassification {
	if c.TopPredictions == nil {
		c.TopPredictions = map[string]float64{}
	}
	out := models.EnrichedClassification{Classification: c}

	if !PassesGate(c) {
		s.logger.Debug("classification below confidence gate", map[string]interface{}{
			"species":    c.Species,
			"confidence": c.Confidence,
		})
		out.BiologicalData = models.SpeciesInsight{
			Species:        c.Species,
			BiologicalInfo: insufficientInfo,
			DataSource:     models.DataSourceNone,
		}
		return out
	}

	out.BiologicalData = s.AnalyzeSpecies(ctx, c.Species)
	return out
}
