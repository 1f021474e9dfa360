// internal/common/generation/factory.go
package generation

import (
	"context"
	"fmt"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
)

// New builds the generator selected by apis.genai.provider.
func New(ctx context.Context, cfg config.GenAIConfig) (TextGenerator, error) {
	var gen TextGenerator

	switch cfg.Provider {
	case config.ProviderHTTP, "":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("genai base_url is required for the http provider")
		}
		gen = NewHTTPGenerator(HTTPConfig{
			BaseURL:      cfg.BaseURL,
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			SystemPrompt: cfg.SystemPrompt,
			MaxTokens:    cfg.MaxTokens,
			Temperature:  cfg.Temperature,
			Retries:      cfg.Retries,
		})
	case config.ProviderGemini:
		g, err := NewGeminiGenerator(ctx, GeminiConfig{
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			SystemPrompt: cfg.SystemPrompt,
			MaxTokens:    cfg.MaxTokens,
			Temperature:  cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, fmt.Errorf("unsupported genai provider %q", cfg.Provider)
	}

	return WithTimeout(gen, config.GetDuration(cfg.Timeout)), nil
}
