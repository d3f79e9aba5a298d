// Package cache memoizes Query engine results behind Redis, per §4.4's note
// that GetNodePermissions/CanAccessResource are cacheable. Caching is purely
// an optimization: every exported method degrades to "cache miss" when no
// Redis address is configured or the client call fails, never changing the
// answer a caller gets, only how often it's recomputed.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alevsk/iamgraph/internal/logger"
)

// DefaultTTL bounds how long a cached query result survives an unrelated
// graph rebuild that the cache has no way to be invalidated by.
const DefaultTTL = 5 * time.Minute

// Cache wraps a Redis client. A nil *Cache (as returned when cache.redis_addr
// is unset) makes every method a no-op miss, so callers never need to branch
// on whether caching is enabled.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Open connects to addr. An empty addr returns (nil, nil): caching is
// disabled, not an error, per §6.4.
func Open(addr string) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("cache: redis unreachable, continuing uncached")
		return nil, nil
	}

	return &Cache{client: client, ttl: DefaultTTL}, nil
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// GetPermissions returns the cached permission set for (graphVersion, nodeID),
// or ok=false on a miss or when caching is disabled.
func (c *Cache) GetPermissions(ctx context.Context, graphVersion, nodeID string) (map[string][]string, bool) {
	if c == nil {
		return nil, false
	}
	var out map[string][]string
	if !c.getJSON(ctx, permissionsKey(graphVersion, nodeID), &out) {
		return nil, false
	}
	return out, true
}

// SetPermissions caches perms for (graphVersion, nodeID).
func (c *Cache) SetPermissions(ctx context.Context, graphVersion, nodeID string, perms map[string][]string) {
	if c == nil {
		return
	}
	c.setJSON(ctx, permissionsKey(graphVersion, nodeID), perms)
}

// GetAccess returns the cached reachability verdict for
// (graphVersion, principalID, resourceID), or ok=false on a miss.
func (c *Cache) GetAccess(ctx context.Context, graphVersion, principalID, resourceID string) (reachable, ok bool) {
	if c == nil {
		return false, false
	}
	val, err := c.client.Get(ctx, accessKey(graphVersion, principalID, resourceID)).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

// SetAccess caches a reachability verdict.
func (c *Cache) SetAccess(ctx context.Context, graphVersion, principalID, resourceID string, reachable bool) {
	if c == nil {
		return
	}
	val := "0"
	if reachable {
		val = "1"
	}
	if err := c.client.Set(ctx, accessKey(graphVersion, principalID, resourceID), val, c.ttl).Err(); err != nil {
		logger.Debug().Err(err).Msg("cache: failed to set access verdict")
	}
}

func (c *Cache) getJSON(ctx context.Context, key string, dst interface{}) bool {
	body, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("cache: corrupt cached value, treating as a miss")
		return false
	}
	return true
}

func (c *Cache) setJSON(ctx context.Context, key string, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		logger.Debug().Err(err).Str("key", key).Msg("cache: failed to set value")
	}
}

func permissionsKey(graphVersion, nodeID string) string {
	return "iamgraph:perms:" + graphVersion + ":" + nodeID
}

func accessKey(graphVersion, principalID, resourceID string) string {
	return "iamgraph:access:" + graphVersion + ":" + principalID + ":" + resourceID
}
