// internal/common/generation/http.go
package generation

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	commonhttp "github.com/v-i-n-a-y-29/HackVeda/internal/common/http"
)

// HTTPGenerator posts prompts to a generation service at <base_url>/api/ai/generate.
type HTTPGenerator struct {
	client       *commonhttp.Client
	endpoint     string
	apiKey       string
	model        string
	systemPrompt string
	maxTokens    int
	temperature  float64
}

type HTTPConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Retries      int
	HTTPClient   *http.Client
}

func NewHTTPGenerator(cfg HTTPConfig) *HTTPGenerator {
	opts := []commonhttp.Option{commonhttp.WithRetries(cfg.Retries)}
	if cfg.HTTPClient != nil {
		opts = append(opts, commonhttp.WithHTTPClient(cfg.HTTPClient))
	}
	system := cfg.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	return &HTTPGenerator{
		client:       commonhttp.NewClient(0, opts...),
		endpoint:     strings.TrimRight(cfg.BaseURL, "/") + "/api/ai/generate",
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		systemPrompt: system,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
	}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	headers := map[string]string{}
	if g.apiKey != "" {
		headers["Authorization"] = "Bearer " + g.apiKey
	}

	var out generateResponse
	err := g.client.PostJSON(ctx, g.endpoint, headers, generateRequest{
		Prompt:      prompt,
		System:      g.systemPrompt,
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}, &out)
	if err != nil {
		return "", &GenerationError{Provider: "http", Reason: classifyHTTPErr(ctx, err), Err: err}
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", &GenerationError{Provider: "http", Reason: ReasonEmpty}
	}
	return text, nil
}

func classifyHTTPErr(ctx context.Context, err error) Reason {
	var se *commonhttp.StatusError
	if stderrors.As(err, &se) {
		if se.StatusCode == http.StatusTooManyRequests {
			return ReasonQuota
		}
		return ReasonStatus
	}
	return classifyContextErr(ctx, err, ReasonNetwork)
}

// WithTimeout bounds a single generation call.
func WithTimeout(g TextGenerator, d time.Duration) TextGenerator {
	if d <= 0 {
		return g
	}
	return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return g.Generate(ctx, prompt)
	})
}
