package generation

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
)

func TestHTTPGenerator_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultSystemPrompt, req.System)
		assert.Equal(t, "Context:\nx\n\nUser Query: y", req.Prompt)
		assert.Equal(t, 512, req.MaxTokens)

		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  Atlantic cod are demersal.  "})
	}))
	defer srv.Close()

	gen := NewHTTPGenerator(HTTPConfig{BaseURL: srv.URL + "/", APIKey: "secret", MaxTokens: 512})
	got, err := gen.Generate(context.Background(), "Context:\nx\n\nUser Query: y")

	require.NoError(t, err)
	assert.Equal(t, "Atlantic cod are demersal.", got)
}

func TestHTTPGenerator_FailureReasons(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Reason
	}{
		{"quota", http.StatusTooManyRequests, `{}`, ReasonQuota},
		{"bad request", http.StatusBadRequest, `{}`, ReasonStatus},
		{"empty text", http.StatusOK, `{"text":"   "}`, ReasonEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPGenerator(HTTPConfig{BaseURL: srv.URL}).Generate(context.Background(), "p")

			var ge *GenerationError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.want, ge.Reason)
			assert.Equal(t, "http", ge.Provider)
		})
	}
}

func TestWithTimeout_ReportsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	gen := WithTimeout(NewHTTPGenerator(HTTPConfig{BaseURL: srv.URL}), 20*time.Millisecond)
	_, err := gen.Generate(context.Background(), "p")

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.True(t, ge.Timeout())
}

func TestLazyGenerator(t *testing.T) {
	var builds int32
	lazy := NewLazyGenerator(func() (TextGenerator, error) {
		atomic.AddInt32(&builds, 1)
		return GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			return "ok:" + prompt, nil
		}), nil
	})

	for i := 0; i < 3; i++ {
		got, err := lazy.Generate(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "ok:p", got)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))

	broken := NewLazyGenerator(func() (TextGenerator, error) { return nil, stderrors.New("no key") })
	_, err := broken.Generate(context.Background(), "p")
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, ReasonConfig, ge.Reason)
}

func TestNew_ProviderSelection(t *testing.T) {
	_, err := New(context.Background(), config.GenAIConfig{Provider: config.ProviderHTTP})
	assert.Error(t, err)

	_, err = New(context.Background(), config.GenAIConfig{Provider: config.ProviderGemini})
	assert.ErrorContains(t, err, "API key")

	_, err = New(context.Background(), config.GenAIConfig{Provider: "bedrock"})
	assert.ErrorContains(t, err, "unsupported")

	gen, err := New(context.Background(), config.GenAIConfig{Provider: config.ProviderHTTP, BaseURL: "http://localhost:1", Timeout: 1000})
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestGeminiGenerator_Construct(t *testing.T) {
	gen, err := NewGeminiGenerator(context.Background(), GeminiConfig{APIKey: "test-key", MaxTokens: 256, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", gen.model)
	assert.Equal(t, int32(256), gen.config.MaxOutputTokens)
	require.NotNil(t, gen.config.SystemInstruction)
}

func TestClassifyGeminiErr(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ReasonQuota, classifyGeminiErr(ctx, stderrors.New("Error 429, Status: RESOURCE_EXHAUSTED")))
	assert.Equal(t, ReasonTimeout, classifyGeminiErr(ctx, context.DeadlineExceeded))
	assert.Equal(t, ReasonNetwork, classifyGeminiErr(ctx, stderrors.New("dial tcp: connection refused")))
}
