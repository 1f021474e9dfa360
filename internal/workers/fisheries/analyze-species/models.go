// internal/workers/fisheries/analyze-species/models.go
package analyzespecies

import "github.com/v-i-n-a-y-29/HackVeda/internal/models"

// Input holds either a classifier result (image route) or a bare species name.
type Input struct {
	Species        string
	Classification *models.ClassificationResult
}

// Output carries Insight for species queries and Enriched for classifier results.
type Output struct {
	Insight  *models.SpeciesInsight          `json:"insight,omitempty"`
	Enriched *models.EnrichedClassification `json:"enriched,omitempty"`
}

// ConfidenceGate is the classifier confidence a result must exceed before a lookup runs.
const ConfidenceGate = 30.0

const (
	speciesErrorPrefix = "Error retrieving species information: "
	insufficientInfo   = "Species not identified with sufficient confidence for biological lookup."
)
