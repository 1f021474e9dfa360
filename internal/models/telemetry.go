// internal/models/telemetry.go
package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
)

// OverfishingThresholdRatio is the share of stock a catch may reach before it counts as overfishing.
const OverfishingThresholdRatio = 0.2

const (
	StatusOverfishing = "OVERFISHING DETECTED"
	StatusHealthy     = "HEALTHY FISHING"

	HealthyMessage = "Fishing levels are within sustainable limits."

	// UnknownDate is used when a reading carries no date.
	UnknownDate = "Unknown"
)

type TelemetryReading struct {
	Date        string  `json:"date"`
	StockVolume float64 `json:"stock_volume"`
	CatchVolume float64 `json:"catch_volume"`
}

type OverfishingVerdict struct {
	Date            string   `json:"date"`
	StockVolume     float64  `json:"stock_volume"`
	CatchVolume     float64  `json:"catch_volume"`
	Threshold       float64  `json:"threshold"`
	CatchPercentage float64  `json:"catch_percentage"`
	IsOverfishing   bool     `json:"is_overfishing"`
	Status          string   `json:"status"`
	Message         string   `json:"message,omitempty"`
	Narrative       string   `json:"narrative,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

type BatchSummary struct {
	Total            int                  `json:"total"`
	OverfishingCount int                  `json:"overfishing_count"`
	HealthyCount     int                  `json:"healthy_count"`
	OverfishingRatio float64              `json:"overfishing_ratio"`
	Results          []OverfishingVerdict `json:"results"`
}

// Round2 rounds half-to-even at two decimals. The float is expanded to its
// binary value first, so 2.675 (stored as 2.67499...) rounds to 2.67.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloatWithExponent(v, -20).RoundBank(2).Float64()
	return f
}

// ReadingFromMap decodes a reading from loosely typed request data.
// stock_volume and catch_volume are required, non-negative numbers; date defaults to "Unknown".
func ReadingFromMap(m map[string]interface{}) (TelemetryReading, error) {
	r := TelemetryReading{Date: UnknownDate}

	if d, ok := m["date"]; ok && d != nil {
		switch v := d.(type) {
		case string:
			if v != "" {
				r.Date = v
			}
		default:
			r.Date = fmt.Sprint(v)
		}
	}

	var err error
	if r.StockVolume, err = requiredVolume(m, "stock_volume"); err != nil {
		return TelemetryReading{}, err
	}
	if r.CatchVolume, err = requiredVolume(m, "catch_volume"); err != nil {
		return TelemetryReading{}, err
	}
	return r, nil
}

// ReadingsFromList decodes telemetry_list items, reporting the first bad index.
func ReadingsFromList(raw interface{}) ([]TelemetryReading, error) {
	if raw == nil {
		return []TelemetryReading{}, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.NewInvalidInputError("telemetry_list must be an array of readings")
	}

	readings := make([]TelemetryReading, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("telemetry_list[%d] must be an object", i))
		}
		r, err := ReadingFromMap(m)
		if err != nil {
			se, _ := errors.AsStandard(err)
			return nil, errors.NewInvalidInputError(fmt.Sprintf("telemetry_list[%d]: %s", i, se.Details))
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func requiredVolume(m map[string]interface{}, key string) (float64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, errors.NewInvalidInputError(fmt.Sprintf("%s is required", key))
	}
	v, ok := ToFloat(raw)
	if !ok {
		return 0, errors.NewInvalidInputError(fmt.Sprintf("%s must be a number", key))
	}
	if v < 0 {
		return 0, errors.NewInvalidInputError(fmt.Sprintf("%s must be >= 0", key))
	}
	return v, nil
}

// ToFloat accepts the numeric shapes produced by encoding/json and by Go callers.
func ToFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
