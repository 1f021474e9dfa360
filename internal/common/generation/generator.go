// internal/common/generation/generator.go
package generation

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
)

// DefaultSystemPrompt frames every generation request.
const DefaultSystemPrompt = "You are a Marine Expert. Use the provided scientific context to answer queries."

// TextGenerator turns a fully composed prompt into free text.
// Failures are always *GenerationError.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Reason string

const (
	ReasonTimeout Reason = "timeout"
	ReasonQuota   Reason = "quota"
	ReasonNetwork Reason = "network"
	ReasonStatus  Reason = "status"
	ReasonEmpty   Reason = "empty"
	ReasonConfig  Reason = "config"
)

type GenerationError struct {
	Provider string
	Reason   Reason
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s generation failed (%s)", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s generation failed (%s): %v", e.Provider, e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Timeout() bool {
	return e.Reason == ReasonTimeout
}

// classifyContextErr maps context expiry to a timeout, everything else to fallback.
func classifyContextErr(ctx context.Context, err error, fallback Reason) Reason {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return fallback
}

// GeneratorFunc adapts a function to TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// LazyGenerator builds its client on first use and reuses it for the life of the process.
type LazyGenerator struct {
	get func() (TextGenerator, error)
}

func NewLazyGenerator(build func() (TextGenerator, error)) *LazyGenerator {
	return &LazyGenerator{get: sync.OnceValues(build)}
}

func (l *LazyGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	gen, err := l.get()
	if err != nil {
		return "", &GenerationError{Provider: "lazy", Reason: ReasonConfig, Err: err}
	}
	return gen.Generate(ctx, prompt)
}
