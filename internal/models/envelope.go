// internal/models/envelope.go
package models

import (
	"encoding/json"
	"time"
)

type InputType string

const (
	InputImage          InputType = "image"
	InputSpeciesQuery   InputType = "species_query"
	InputTelemetry      InputType = "telemetry"
	InputTelemetryBatch InputType = "telemetry_batch"
)

// SupportedInputTypes lists the explicit routing targets in documentation order.
func SupportedInputTypes() []InputType {
	return []InputType{InputImage, InputSpeciesQuery, InputTelemetry, InputTelemetryBatch}
}

func (t InputType) Valid() bool {
	for _, s := range SupportedInputTypes() {
		if t == s {
			return true
		}
	}
	return false
}

type Agent string

const (
	AgentFisheries   Agent = "FisheriesAgent"
	AgentOverfishing Agent = "OverfishingAgent"
)

// AgentFor names the analysis agent that serves t.
func AgentFor(t InputType) Agent {
	switch t {
	case InputTelemetry, InputTelemetryBatch:
		return AgentOverfishing
	default:
		return AgentFisheries
	}
}

const AutoDetectHint = "Expected fields: (stock_volume, catch_volume) for telemetry, or (species, confidence) for image classification"

// RoutedResponse is the uniform envelope returned for every routed request.
// A non-empty Error marks an error envelope; Agent and Analysis are then unset.
type RoutedResponse struct {
	Agent     Agent       `json:"agent,omitempty"`
	InputType InputType   `json:"input_type,omitempty"`
	Analysis  interface{} `json:"analysis,omitempty"`
	Timestamp string      `json:"timestamp"`

	Error          string      `json:"error,omitempty"`
	SupportedTypes []InputType `json:"supported_types,omitempty"`
	Hint           string      `json:"hint,omitempty"`
	ReceivedKeys   []string    `json:"received_keys,omitempty"`
}

func (r RoutedResponse) IsError() bool {
	return r.Error != ""
}

// MarshalJSON keeps received_keys present, even when empty, on auto-detect failures.
func (r RoutedResponse) MarshalJSON() ([]byte, error) {
	if !r.IsError() {
		return json.Marshal(map[string]interface{}{
			"agent":      r.Agent,
			"input_type": r.InputType,
			"analysis":   r.Analysis,
			"timestamp":  r.Timestamp,
		})
	}

	out := map[string]interface{}{
		"error":     r.Error,
		"timestamp": r.Timestamp,
	}
	if r.InputType != "" {
		out["input_type"] = r.InputType
	}
	if r.SupportedTypes != nil {
		out["supported_types"] = r.SupportedTypes
	}
	if r.Hint != "" {
		keys := r.ReceivedKeys
		if keys == nil {
			keys = []string{}
		}
		out["hint"] = r.Hint
		out["received_keys"] = keys
	}
	return json.Marshal(out)
}

// Timestamp formats t as ISO-8601 with sub-second precision.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
