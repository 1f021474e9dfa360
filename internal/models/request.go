// internal/models/request.go
package models

import (
	"sort"
	"strings"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
)

// RoutedRequest is the decoded, typed form of an inbound request.
// Exactly one payload field is set, selected by InputType.
type RoutedRequest struct {
	InputType      InputType
	Telemetry      *TelemetryReading
	Batch          []TelemetryReading
	Species        string
	Classification *ClassificationResult
}

type inferenceRule struct {
	target  InputType
	matches func(has func(string) bool) bool
}

// inferenceRules are evaluated in order; the first match wins.
var inferenceRules = []inferenceRule{
	{InputTelemetry, func(has func(string) bool) bool { return has("stock_volume") && has("catch_volume") }},
	{InputTelemetryBatch, func(has func(string) bool) bool { return has("telemetry_list") }},
	{InputSpeciesQuery, func(has func(string) bool) bool { return has("species") && !has("confidence") }},
	{InputImage, func(has func(string) bool) bool { return has("species") && has("confidence") }},
}

// InferInputType resolves the input kind from the set of keys present.
func InferInputType(keys []string) (InputType, bool) {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	has := func(k string) bool {
		_, ok := set[k]
		return ok
	}

	for _, rule := range inferenceRules {
		if rule.matches(has) {
			return rule.target, true
		}
	}
	return "", false
}

// SortedKeys returns the keys of data in lexical order.
func SortedKeys(data map[string]interface{}) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DecodeRequest builds the typed request for an explicit input type.
// Unknown types and malformed payloads are INVALID_INPUT or UNKNOWN_INPUT_TYPE errors.
func DecodeRequest(t InputType, data map[string]interface{}) (RoutedRequest, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	req := RoutedRequest{InputType: t}

	switch t {
	case InputTelemetry:
		r, err := ReadingFromMap(data)
		if err != nil {
			return RoutedRequest{}, err
		}
		req.Telemetry = &r

	case InputTelemetryBatch:
		readings, err := ReadingsFromList(data["telemetry_list"])
		if err != nil {
			return RoutedRequest{}, err
		}
		req.Batch = readings

	case InputSpeciesQuery:
		s, _ := data["species"].(string)
		s = strings.TrimSpace(s)
		if s == "" {
			return RoutedRequest{}, errors.NewInvalidInputError("species is required for species_query")
		}
		req.Species = s

	case InputImage:
		c, err := ClassificationFromMap(data)
		if err != nil {
			return RoutedRequest{}, err
		}
		req.Classification = &c

	default:
		return RoutedRequest{}, errors.NewUnknownInputTypeError(string(t))
	}

	return req, nil
}
