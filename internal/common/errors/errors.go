// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Input errors: surfaced to the caller as data, never retried.
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeUnknownInputType  ErrorCode = "UNKNOWN_INPUT_TYPE"
	ErrCodeAutoDetectFailed  ErrorCode = "AUTO_DETECT_FAILED"
	ErrCodeEmptyTelemetry    ErrorCode = "EMPTY_TELEMETRY"
	ErrCodeCSVColumnsMissing ErrorCode = "CSV_COLUMNS_MISSING"

	// External service errors: absorbed by the analyzers.
	ErrCodeContextLookupFailed ErrorCode = "CONTEXT_LOOKUP_FAILED"
	ErrCodeGenerationFailed    ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout   ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeAlertPublishFailed  ErrorCode = "ALERT_PUBLISH_FAILED"
	ErrCodeExternalService     ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout             ErrorCode = "TIMEOUT"

	// Configuration errors: fatal at startup only.
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMetadata returns the error with key set in its metadata map.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// --- Input errors ---

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownInputTypeError(inputType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownInputType,
		Message:   fmt.Sprintf("Unknown input type: %s", inputType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAutoDetectFailedError(receivedKeys []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAutoDetectFailed,
		Message:   "Could not auto-detect input type",
		Details:   fmt.Sprintf("received keys: [%s]", strings.Join(receivedKeys, ", ")),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewEmptyTelemetryError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyTelemetry,
		Message:   "Telemetry list is empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCSVColumnsMissingError(required, found []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCSVColumnsMissing,
		Message:   fmt.Sprintf("CSV must contain columns: %v", required),
		Details:   fmt.Sprintf("found: %v", found),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// --- External service errors ---

func NewContextLookupFailedError(corpus string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextLookupFailed,
		Message:   fmt.Sprintf("Context lookup against corpus '%s' failed", corpus),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Text generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Text generation timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewAlertPublishFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertPublishFailed,
		Message:   fmt.Sprintf("Alert publish via %s failed", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timed out", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// --- Configuration errors ---

func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// --- Classification ---

var inputCodes = map[ErrorCode]bool{
	ErrCodeInvalidInput:      true,
	ErrCodeUnknownInputType:  true,
	ErrCodeAutoDetectFailed:  true,
	ErrCodeEmptyTelemetry:    true,
	ErrCodeCSVColumnsMissing: true,
}

var externalCodes = map[ErrorCode]bool{
	ErrCodeContextLookupFailed: true,
	ErrCodeGenerationFailed:    true,
	ErrCodeGenerationTimeout:   true,
	ErrCodeAlertPublishFailed:  true,
	ErrCodeExternalService:     true,
	ErrCodeTimeout:             true,
}

// AsStandard unwraps err into a StandardError if one is in its chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func IsInputError(err error) bool {
	stdErr, ok := AsStandard(err)
	return ok && inputCodes[stdErr.Code]
}

func IsExternalServiceError(err error) bool {
	stdErr, ok := AsStandard(err)
	return ok && externalCodes[stdErr.Code]
}

func IsConfigurationError(err error) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == ErrCodeConfigurationInvalid
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeContextLookupFailed,
		ErrCodeGenerationFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeGenerationTimeout,
		ErrCodeTimeout:
		return 1

	default:
		return 0 // input and configuration errors never retry
	}
}

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:      "INVALID_MARINE_INPUT",
	ErrCodeUnknownInputType:  "INVALID_MARINE_INPUT",
	ErrCodeAutoDetectFailed:  "INVALID_MARINE_INPUT",
	ErrCodeEmptyTelemetry:    "INVALID_MARINE_INPUT",
	ErrCodeCSVColumnsMissing: "INVALID_MARINE_INPUT",
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func GetErrorCategory(code ErrorCode) string {
	switch {
	case inputCodes[code]:
		return "input"
	case externalCodes[code]:
		return "external_service"
	case code == ErrCodeConfigurationInvalid:
		return "configuration"
	default:
		return "internal"
	}
}
