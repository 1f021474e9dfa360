// internal/workers/orchestration/route-marine-input/models.go
package routemarineinput

import "github.com/v-i-n-a-y-29/HackVeda/internal/models"

// Input is an explicit input type plus payload. An empty InputType requests auto-detection.
type Input struct {
	InputType models.InputType
	Data      map[string]interface{}
}

type Output struct {
	Response models.RoutedResponse `json:"response"`
}

const autoDetectError = "Could not auto-detect input type"
