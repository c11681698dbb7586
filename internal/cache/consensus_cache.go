package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/consilium-ai/consilium-go/internal/models"
)

// ConsensusCacheStats tracks cache performance counters.
type ConsensusCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// ConsensusCache keeps the latest consensus decision per target-asset set in
// Redis so repeated reads skip a full analysis run. Keys are derived from
// the sorted asset list, so the same assets in any order share one entry.
type ConsensusCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *ConsensusCacheStats
	prefix string
}

func NewConsensusCache(redisClient *redis.Client, ttl time.Duration) *ConsensusCache {
	return &ConsensusCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &ConsensusCacheStats{},
		prefix: "consensus:",
	}
}

// Get returns the cached decision for the asset set, or false on a miss.
// Redis failures count as misses; the caller just recomputes.
func (c *ConsensusCache) Get(ctx context.Context, targetAssets []string) (*models.ConsensusDecision, bool) {
	data, err := c.redis.Get(ctx, c.key(targetAssets)).Result()
	if err != nil {
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}

	var decision models.ConsensusDecision
	if err := json.Unmarshal([]byte(data), &decision); err != nil {
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	return &decision, true
}

// Set stores a decision under the asset set's key with the configured TTL.
func (c *ConsensusCache) Set(ctx context.Context, targetAssets []string, decision *models.ConsensusDecision) error {
	data, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to encode consensus decision: %w", err)
	}

	if err := c.redis.Set(ctx, c.key(targetAssets), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache consensus decision: %w", err)
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
	return nil
}

// Stats returns a snapshot of the cache counters.
func (c *ConsensusCache) Stats() ConsensusCacheStats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return ConsensusCacheStats{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Sets:   c.stats.Sets,
	}
}

func (c *ConsensusCache) key(targetAssets []string) string {
	if len(targetAssets) == 0 {
		return c.prefix + "default"
	}
	assets := append([]string(nil), targetAssets...)
	sort.Strings(assets)
	return c.prefix + strings.Join(assets, ",")
}
