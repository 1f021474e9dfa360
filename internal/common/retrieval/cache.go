// internal/common/retrieval/cache.go
package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/metrics"
)

// CachedLookup memoizes search results in Redis. Redis failures are logged
// and fall through to the wrapped lookup.
type CachedLookup struct {
	next   ContextLookup
	redis  *redis.Client
	ttl    time.Duration
	logger Logger
}

func NewCachedLookup(next ContextLookup, rdb *redis.Client, ttl time.Duration, log Logger) *CachedLookup {
	return &CachedLookup{next: next, redis: rdb, ttl: ttl, logger: log}
}

// CacheKey is marine:context:<corpus>:<k>:<sha256(query)>.
func CacheKey(query string, corpus Corpus, k int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("marine:context:%s:%d:%s", corpus, k, hex.EncodeToString(sum[:]))
}

func (c *CachedLookup) Search(ctx context.Context, query string, corpus Corpus, k int) (string, error) {
	k = normalizeK(k)
	key := CacheKey(query, corpus, k)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		metrics.LookupCache.WithLabelValues("hit").Inc()
		return val, nil
	case stderrors.Is(err, redis.Nil):
		metrics.LookupCache.WithLabelValues("miss").Inc()
	default:
		metrics.LookupCache.WithLabelValues("error").Inc()
		c.logger.Warn("context cache read failed", map[string]interface{}{
			"corpus": string(corpus),
			"error":  err.Error(),
		})
	}

	result, err := c.next.Search(ctx, query, corpus, k)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, result, c.ttl).Err(); err != nil {
		c.logger.Warn("context cache write failed", map[string]interface{}{
			"corpus": string(corpus),
			"error":  err.Error(),
		})
	}
	return result, nil
}
