package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		input    bool
		external bool
		config   bool
		category string
	}{
		{"invalid input", NewInvalidInputError("stock_volume is required"), true, false, false, "input"},
		{"unknown type", NewUnknownInputTypeError("sonar"), true, false, false, "input"},
		{"auto detect", NewAutoDetectFailedError([]string{"foo"}), true, false, false, "input"},
		{"empty telemetry", NewEmptyTelemetryError(), true, false, false, "input"},
		{"lookup failed", NewContextLookupFailedError("overfishing", fmt.Errorf("connection refused")), false, true, false, "external_service"},
		{"generation timeout", NewGenerationTimeoutError(), false, true, false, "external_service"},
		{"configuration", NewConfigurationError("apis.genai.api_key is required"), false, false, true, "configuration"},
		{"internal", NewInternalError(fmt.Errorf("boom")), false, false, false, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.input, IsInputError(tt.err))
			assert.Equal(t, tt.external, IsExternalServiceError(tt.err))
			assert.Equal(t, tt.config, IsConfigurationError(tt.err))

			se, ok := AsStandard(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.category, GetErrorCategory(se.Code))
		})
	}
}

func TestAsStandard_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("route: %w", NewUnknownInputTypeError("sonar"))

	se, ok := AsStandard(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeUnknownInputType, se.Code)
	assert.Equal(t, "Unknown input type: sonar", se.Message)

	_, ok = AsStandard(stderrors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsInputError(nil))
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewInvalidInputError("catch_volume must be >= 0"))
	assert.Equal(t, "INVALID_MARINE_INPUT", bpmn.Code)
	assert.False(t, bpmn.Retryable)
	assert.Zero(t, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "INVALID_MARINE_INPUT", vars["errorCode"])
	assert.Equal(t, "INVALID_INPUT", vars["originalErrorCode"])

	bpmn = ConvertToBPMNError(NewGenerationFailedError(fmt.Errorf("503")))
	assert.Equal(t, "GENERATION_FAILED", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeContextLookupFailed))
	assert.Equal(t, 1, GetRetryCount(ErrCodeGenerationTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeInvalidInput))
	assert.Equal(t, 0, GetRetryCount(ErrCodeConfigurationInvalid))
}

func TestStandardError_Format(t *testing.T) {
	err := NewCSVColumnsMissingError([]string{"date", "stock_volume", "catch_volume"}, []string{"date"})
	assert.Equal(t, "CSV_COLUMNS_MISSING: CSV must contain columns: [date stock_volume catch_volume] (found: [date])", err.Error())

	err = NewEmptyTelemetryError().WithMetadata("source", "csv")
	assert.Equal(t, "csv", err.Metadata["source"])
	assert.Equal(t, "EMPTY_TELEMETRY: Telemetry list is empty", err.Error())
}
