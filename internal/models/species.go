// internal/models/species.go
package models

import (
	"fmt"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
)

const (
	DataSourceFisheries = "fisheries_biology_collection"
	DataSourceNone      = "none"
	DataSourceError     = "error"

	// Classifier sentinels for a failed or empty identification.
	SpeciesUnknown = "Unknown"
	SpeciesError   = "Error"
)

type ClassificationResult struct {
	Species        string             `json:"species"`
	Confidence     float64            `json:"confidence"`
	TopPredictions map[string]float64 `json:"top_predictions"`
}

type SpeciesInsight struct {
	Species        string `json:"species"`
	BiologicalInfo string `json:"biological_info"`
	DataSource     string `json:"data_source"`
}

type EnrichedClassification struct {
	Classification ClassificationResult `json:"classification"`
	BiologicalData SpeciesInsight       `json:"biological_data"`
}

// ClassificationFromMap decodes classifier output. Missing species and
// confidence fall back to "Unknown" and 0, which the confidence gate rejects.
func ClassificationFromMap(m map[string]interface{}) (ClassificationResult, error) {
	c := ClassificationResult{
		Species:        SpeciesUnknown,
		TopPredictions: map[string]float64{},
	}

	if raw, ok := m["species"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return ClassificationResult{}, errors.NewInvalidInputError("species must be a string")
		}
		c.Species = s
	}

	if raw, ok := m["confidence"]; ok && raw != nil {
		v, ok := ToFloat(raw)
		if !ok {
			return ClassificationResult{}, errors.NewInvalidInputError("confidence must be a number")
		}
		if v < 0 || v > 100 {
			return ClassificationResult{}, errors.NewInvalidInputError("confidence must be within [0, 100]")
		}
		c.Confidence = v
	}

	if raw, ok := m["top_predictions"]; ok && raw != nil {
		preds, ok := raw.(map[string]interface{})
		if !ok {
			return ClassificationResult{}, errors.NewInvalidInputError("top_predictions must be an object")
		}
		for name, score := range preds {
			v, ok := ToFloat(score)
			if !ok {
				return ClassificationResult{}, errors.NewInvalidInputError(fmt.Sprintf("top_predictions[%s] must be a number", name))
			}
			c.TopPredictions[name] = v
		}
	}

	return c, nil
}
