// internal/workers/overfishing/detect-overfishing/models.go
package detectoverfishing

import "github.com/v-i-n-a-y-29/HackVeda/internal/models"

type Input struct {
	Reading models.TelemetryReading
}

type Output struct {
	Verdict models.OverfishingVerdict `json:"verdict"`
}

// PolicyQuery is the retrieval query for every overfishing case. It is kept
// free of scenario numbers so it matches the policy corpus broadly.
const PolicyQuery = "overfishing legal consequences penalties sustainable limits catch quotas FAO code of conduct"

const policyErrorPrefix = "Error retrieving policy insights: "
