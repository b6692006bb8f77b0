package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homecyclehelp/booking-client/pkg/logging"
)

const cacheKeyPrefix = "hch:suggest:"

// RedisSuggestionCache caches autocomplete results in Redis with a short TTL.
// Every operation is best-effort; Redis being down degrades to uncached lookups.
type RedisSuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisSuggestionCache constructs a suggestion cache over an existing Redis client.
func NewRedisSuggestionCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisSuggestionCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisSuggestionCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(query string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached suggestions for a query, if present.
func (c *RedisSuggestionCache) Get(ctx context.Context, query string) ([]Suggestion, bool) {
	raw, err := c.client.Get(ctx, cacheKey(query)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("suggestion cache read failed", "error", err)
		return nil, false
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		c.logger.Debug("suggestion cache entry corrupt", "key", cacheKey(query), "error", err)
		return nil, false
	}
	return suggestions, true
}

// Set stores suggestions for a query. Failures are logged and dropped.
func (c *RedisSuggestionCache) Set(ctx context.Context, query string, suggestions []Suggestion) {
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(query), payload, c.ttl).Err(); err != nil {
		c.logger.Debug("suggestion cache write failed", "error", err)
	}
}
