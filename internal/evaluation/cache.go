package evaluation

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/metrics"
)

const (
	cacheKeyPrefix = "artemis:eval:"
	orderListKey   = "artemis:eval:order"
)

// Cache is the bounded key->report map of spec §4.1: key is the
// lowercased username, TTL is configurable (default 30 minutes), and
// eviction on overflow is insertion-order (Open Question (ii) decided
// against strict LRU, since re-scoring access recency on every cache
// hit is an extra round trip this core's Redis usage doesn't otherwise
// need). The insertion queue lives in a Redis LIST alongside the
// per-key TTL'd values, reusing the same client the teacher wires for
// whole-object cache GET/SET.
type Cache struct {
	redis      *redis.Client
	ttl        time.Duration
	maxEntries int
}

func NewCache(client *redis.Client, ttl time.Duration, maxEntries int) *Cache {
	return &Cache{redis: client, ttl: ttl, maxEntries: maxEntries}
}

func cacheKey(username string) string {
	return cacheKeyPrefix + strings.ToLower(username)
}

func (c *Cache) Get(ctx context.Context, username string) (*domain.EvaluationReport, bool) {
	raw, err := c.redis.Get(ctx, cacheKey(username)).Bytes()
	if err != nil {
		metrics.EvaluationCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	var report domain.EvaluationReport
	if err := json.Unmarshal(raw, &report); err != nil {
		metrics.EvaluationCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.EvaluationCacheHits.WithLabelValues("hit").Inc()
	return &report, true
}

// Set stores the report and evicts the oldest insertion once the
// bound is exceeded.
func (c *Cache) Set(ctx context.Context, username string, report *domain.EvaluationReport) error {
	key := cacheKey(username)
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	pipe := c.redis.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.LRem(ctx, orderListKey, 0, key)
	pipe.RPush(ctx, orderListKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return c.evictOverflow(ctx)
}

func (c *Cache) evictOverflow(ctx context.Context) error {
	length, err := c.redis.LLen(ctx, orderListKey).Result()
	if err != nil {
		return err
	}
	for length > int64(c.maxEntries) {
		oldest, err := c.redis.LPop(ctx, orderListKey).Result()
		if err != nil {
			break
		}
		c.redis.Del(ctx, oldest)
		length--
	}
	return nil
}
