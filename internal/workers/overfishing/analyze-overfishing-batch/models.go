// internal/workers/overfishing/analyze-overfishing-batch/models.go
package analyzeoverfishingbatch

import "github.com/v-i-n-a-y-29/HackVeda/internal/models"

// Input carries readings either as a decoded list or as CSV text. CSV wins
// when both are present.
type Input struct {
	Readings []models.TelemetryReading
	CSV      string
}

type Output struct {
	Summary models.BatchSummary `json:"summary"`
}
