package flights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultCacheTTL keeps search responses fresh enough for price tracking
// while absorbing bursts of identical queries against the provider's rate
// limits.
const DefaultCacheTTL = 10 * time.Minute

// cachingClient decorates a Client with a redis-backed response cache. Cache
// failures are logged and fall through to the wrapped client; redis is never
// load-bearing.
type cachingClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
}

// WithCache wraps client with a redis response cache. A nil redis client
// returns the wrapped client unchanged.
func WithCache(client Client, rdb *redis.Client, ttl time.Duration) Client {
	if rdb == nil {
		return client
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &cachingClient{inner: client, rdb: rdb, ttl: ttl}
}

func (c *cachingClient) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	key := cacheKey(req)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached SearchResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		log.Warn().Str("key", key).Msg("discarding corrupt cached search result")
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("search cache read failed")
	}

	result, err := c.inner.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("search cache write failed")
		}
	}
	return result, nil
}

func cacheKey(req SearchRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("flights:search:%s", hex.EncodeToString(sum[:8]))
}
