package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/utakatalp/league-predictor/internal/league"
)

const keyFormat = "stats:snapshot:%s" // stats:snapshot:9f3c...

// RedisStatsCache stores aggregated team stats per match snapshot.
// Aggregation is a pure function of the snapshot, so entries never go stale;
// the TTL only bounds memory.
type RedisStatsCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStatsCache creates a cache on the given client.
func NewRedisStatsCache(redisClient *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{redis: redisClient, ttl: ttl}
}

// Fingerprint hashes the parts of a match snapshot that feed the aggregation.
func Fingerprint(matches []league.MatchRecord) string {
	d := xxhash.New()
	for _, m := range matches {
		// unit separators keep ("ab","c") and ("a","bc") apart
		d.WriteString(m.Home)
		d.WriteString("\x1f")
		d.WriteString(m.Away)
		d.WriteString("\x1f")
		d.WriteString(m.Score)
		d.WriteString("\x1e")
	}
	return strconv.FormatUint(d.Sum64(), 16) + "-" + strconv.Itoa(len(matches))
}

// Load returns the cached stats for a fingerprint. ok is false on a miss.
func (c *RedisStatsCache) Load(ctx context.Context, fingerprint string) (league.StatsMap, bool, error) {
	key := buildKey(fingerprint)

	pipe := c.redis.Pipeline()
	existsCmd := pipe.Exists(ctx, key)
	allCmd := pipe.HGetAll(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("redis load %s: %w", key, err)
	}
	if existsCmd.Val() == 0 {
		return nil, false, nil
	}

	stats := make(league.StatsMap, len(allCmd.Val()))
	for team, raw := range allCmd.Val() {
		if team == emptyMarker {
			continue
		}
		var ts league.TeamStats
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			return nil, false, fmt.Errorf("unmarshal cached stats for %q: %w", team, err)
		}
		stats[team] = ts
	}
	return stats, true, nil
}

// emptyMarker lets an empty aggregation be cached as an existing hash.
const emptyMarker = "\x00empty"

// Save writes the stats for a fingerprint in one pipeline.
func (c *RedisStatsCache) Save(ctx context.Context, fingerprint string, stats league.StatsMap) error {
	key := buildKey(fingerprint)

	values := make(map[string]any, len(stats)+1)
	values[emptyMarker] = "1"
	for team, ts := range stats {
		data, err := json.Marshal(ts)
		if err != nil {
			return fmt.Errorf("marshal stats for %q: %w", team, err)
		}
		values[team] = data
	}

	pipe := c.redis.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, values)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec: %w", err)
	}
	return nil
}

func buildKey(fingerprint string) string {
	return fmt.Sprintf(keyFormat, fingerprint)
}
