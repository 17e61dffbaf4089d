package recs

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/metrics"
)

const redisMetadataPrefix = "recs:movie:"

// RedisMetadataCache stores enhanced movies in Redis so replicas share one
// metadata pool. Falls back silently on Redis errors.
type RedisMetadataCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMetadataCache(client *redis.Client, ttl time.Duration) *RedisMetadataCache {
	if ttl <= 0 {
		ttl = defaultMetadataTTL
	}
	return &RedisMetadataCache{client: client, ttl: ttl}
}

func (r *RedisMetadataCache) Get(ctx context.Context, key string) (domain.Movie, bool) {
	data, err := r.client.Get(ctx, redisMetadataPrefix+key).Bytes()
	if err != nil {
		metrics.CacheMissesTotal.Inc()
		return domain.Movie{}, false
	}
	var movie domain.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		metrics.CacheMissesTotal.Inc()
		return domain.Movie{}, false
	}
	metrics.CacheHitsTotal.Inc()
	return movie, true
}

func (r *RedisMetadataCache) Set(ctx context.Context, key string, movie domain.Movie) {
	data, err := json.Marshal(movie)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, redisMetadataPrefix+key, data, r.ttl).Err()
}

func (r *RedisMetadataCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
