// internal/common/retrieval/factory.go
package retrieval

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/config"
)

// Backends carries the connected clients a lookup may be built on.
type Backends struct {
	Elasticsearch *elasticsearch.Client
	Postgres      *sql.DB
	Redis         *redis.Client
}

// New builds the configured lookup, wrapped in the Redis cache when enabled.
func New(cfg config.RetrievalConfig, b Backends, log Logger) (ContextLookup, error) {
	var lookup ContextLookup

	switch cfg.Backend {
	case config.BackendElasticsearch:
		if b.Elasticsearch == nil {
			return nil, fmt.Errorf("elasticsearch backend selected but no client is connected")
		}
		lookup = NewElasticsearchLookup(b.Elasticsearch, cfg.Corpora, log)
	case config.BackendPostgres:
		if b.Postgres == nil {
			return nil, fmt.Errorf("postgres backend selected but no connection is open")
		}
		lookup = NewPostgresLookup(b.Postgres, cfg.Corpora, log)
	default:
		return nil, fmt.Errorf("unsupported retrieval backend %q", cfg.Backend)
	}

	if cfg.CacheEnabled && b.Redis != nil {
		lookup = NewCachedLookup(lookup, b.Redis, time.Duration(cfg.CacheTTL)*time.Second, log)
	}
	return lookup, nil
}
