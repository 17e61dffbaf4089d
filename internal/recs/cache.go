package recs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"triplefeature/recsservice/internal/domain"
	"triplefeature/recsservice/internal/metrics"
)

const (
	defaultMetadataTTL        = 24 * time.Hour
	defaultMetadataMaxEntries = 1000
)

// MetadataCache stores fully enhanced movies so repeated recommendations skip
// the TMDB round trips.
type MetadataCache interface {
	Get(ctx context.Context, key string) (domain.Movie, bool)
	Set(ctx context.Context, key string, movie domain.Movie)
}

// metadataCacheKey identifies a movie by folded title and year.
func metadataCacheKey(title string, year domain.Year) string {
	return titleKey(title) + "|" + strings.TrimSpace(string(year))
}

type memoryCacheEntry struct {
	movie     domain.Movie
	updatedAt time.Time
	expiresAt time.Time
}

type memoryMetadataCache struct {
	mu         sync.Mutex
	entries    map[string]*memoryCacheEntry
	ttl        time.Duration
	maxEntries int
}

func newMemoryMetadataCache(ttl time.Duration, maxEntries int) *memoryMetadataCache {
	if ttl <= 0 {
		ttl = defaultMetadataTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultMetadataMaxEntries
	}
	return &memoryMetadataCache{
		entries:    make(map[string]*memoryCacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// NewMemoryMetadataCache builds the default in-process cache.
func NewMemoryMetadataCache(ttl time.Duration, maxEntries int) MetadataCache {
	return newMemoryMetadataCache(ttl, maxEntries)
}

func (c *memoryMetadataCache) Get(_ context.Context, key string) (domain.Movie, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		metrics.CacheMissesTotal.Inc()
		return domain.Movie{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		metrics.CacheMissesTotal.Inc()
		return domain.Movie{}, false
	}
	metrics.CacheHitsTotal.Inc()
	return entry.movie, true
}

func (c *memoryMetadataCache) Set(_ context.Context, key string, movie domain.Movie) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &memoryCacheEntry{
		movie:     movie,
		updatedAt: now,
		expiresAt: now.Add(c.ttl),
	}
	c.trimLocked(now)
}

func (c *memoryMetadataCache) trimLocked(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.maxEntries {
		return
	}

	type pair struct {
		key   string
		entry *memoryCacheEntry
	}
	items := make([]pair, 0, len(c.entries))
	for key, entry := range c.entries {
		items = append(items, pair{key: key, entry: entry})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].entry.updatedAt.Before(items[j].entry.updatedAt)
	})
	for i := 0; i < len(items)-c.maxEntries; i++ {
		delete(c.entries, items[i].key)
	}
}
