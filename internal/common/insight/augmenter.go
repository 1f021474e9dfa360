// internal/common/insight/augmenter.go
package insight

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/generation"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/metrics"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/observability"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/retrieval"
)

const (
	serviceLookup     = "context_lookup"
	serviceGeneration = "generation"
)

// ComposePrompt lays retrieved context ahead of the user query.
func ComposePrompt(contextText, query string) string {
	return fmt.Sprintf("Context:\n%s\n\nUser Query: %s", contextText, query)
}

// Augmenter runs one context lookup followed by one generation call.
type Augmenter struct {
	lookup  retrieval.ContextLookup
	gen     generation.TextGenerator
	topK    int
	timeout time.Duration
	logger  logger.Logger
}

type Options struct {
	TopK int
	// Timeout bounds each external call separately. Zero leaves the caller's deadline alone.
	Timeout time.Duration
}

func NewAugmenter(lookup retrieval.ContextLookup, gen generation.TextGenerator, opts Options, log logger.Logger) *Augmenter {
	if opts.TopK <= 0 {
		opts.TopK = retrieval.DefaultTopK
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Augmenter{
		lookup:  lookup,
		gen:     gen,
		topK:    opts.TopK,
		timeout: opts.Timeout,
		logger:  logger.Named(log, "insight"),
	}
}

// Augment searches corpus with retrievalQuery and asks the generator to answer
// userQuery against what was found. Failures come back as external service
// StandardErrors so callers can pick their own fallback.
func (a *Augmenter) Augment(ctx context.Context, retrievalQuery string, corpus retrieval.Corpus, userQuery string) (string, error) {
	contextText, err := a.search(ctx, retrievalQuery, corpus)
	if err != nil {
		return "", errors.NewContextLookupFailedError(string(corpus), err)
	}

	text, err := a.generate(ctx, ComposePrompt(contextText, userQuery))
	if err != nil {
		var ge *generation.GenerationError
		if stderrors.As(err, &ge) && ge.Timeout() {
			return "", errors.NewGenerationTimeoutError()
		}
		return "", errors.NewGenerationFailedError(err)
	}
	return text, nil
}

func (a *Augmenter) search(ctx context.Context, query string, corpus retrieval.Corpus) (result string, err error) {
	ctx, span := observability.StartSpan(ctx, "insight.context_lookup",
		attribute.String("corpus", string(corpus)),
		attribute.Int("top_k", a.topK),
	)
	start := time.Now()
	defer func() {
		metrics.ExternalCallDuration.WithLabelValues(serviceLookup).Observe(time.Since(start).Seconds())
		observability.EndSpan(span, err)
	}()

	ctx, cancel := a.bound(ctx)
	defer cancel()

	result, err = a.lookup.Search(ctx, query, corpus, a.topK)
	if err != nil {
		metrics.ExternalCallFailures.WithLabelValues(serviceLookup).Inc()
		a.logger.Warn("context lookup failed", map[string]interface{}{
			"corpus": string(corpus),
			"error":  err,
		})
		return "", err
	}
	if result == "" {
		a.logger.Debug("context lookup returned no passages", map[string]interface{}{"corpus": string(corpus)})
	}
	return result, nil
}

func (a *Augmenter) generate(ctx context.Context, prompt string) (text string, err error) {
	ctx, span := observability.StartSpan(ctx, "insight.generate",
		attribute.Int("prompt_length", len(prompt)),
	)
	start := time.Now()
	defer func() {
		metrics.ExternalCallDuration.WithLabelValues(serviceGeneration).Observe(time.Since(start).Seconds())
		observability.EndSpan(span, err)
	}()

	ctx, cancel := a.bound(ctx)
	defer cancel()

	text, err = a.gen.Generate(ctx, prompt)
	if err != nil {
		metrics.ExternalCallFailures.WithLabelValues(serviceGeneration).Inc()
		a.logger.Warn("generation failed", map[string]interface{}{"error": err})
		return "", err
	}
	return text, nil
}

func (a *Augmenter) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}
