// internal/common/retrieval/lookup.go
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Corpus names a partition of reference text.
type Corpus string

const (
	CorpusFisheries   Corpus = "fisheries"
	CorpusOverfishing Corpus = "overfishing"

	DefaultTopK = 3
)

// ContextLookup returns up to k passages relevant to query, newline-joined.
// No match yields "" and a nil error; errors mean the backend failed.
type ContextLookup interface {
	Search(ctx context.Context, query string, corpus Corpus, k int) (string, error)
}

// LookupFunc adapts a function to ContextLookup.
type LookupFunc func(ctx context.Context, query string, corpus Corpus, k int) (string, error)

func (f LookupFunc) Search(ctx context.Context, query string, corpus Corpus, k int) (string, error) {
	return f(ctx, query, corpus, k)
}

// Logger is the subset of the structured logger used by lookups.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// LazyLookup builds its backend on first use and reuses it for the life of
// the process. A failed build is remembered and reported on every call.
type LazyLookup struct {
	get func() (ContextLookup, error)
}

func NewLazyLookup(build func() (ContextLookup, error)) *LazyLookup {
	return &LazyLookup{get: sync.OnceValues(build)}
}

func (l *LazyLookup) Search(ctx context.Context, query string, corpus Corpus, k int) (string, error) {
	backend, err := l.get()
	if err != nil {
		return "", fmt.Errorf("context lookup unavailable: %w", err)
	}
	return backend.Search(ctx, query, corpus, k)
}

// indexFor resolves a corpus to its configured index or partition name.
func indexFor(corpora map[string]string, corpus Corpus) (string, error) {
	name, ok := corpora[string(corpus)]
	if !ok || name == "" {
		return "", fmt.Errorf("no index configured for corpus %q", corpus)
	}
	return name, nil
}

func joinPassages(passages []string) string {
	kept := make([]string, 0, len(passages))
	for _, p := range passages {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func normalizeK(k int) int {
	if k < 1 {
		return DefaultTopK
	}
	return k
}
