package querycache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/metrics"
	"github.com/google/uuid"
)

const (
	KeyEntries         = "leaderboard:entries"
	keyRecentPrefix    = "leaderboard:recent:"
	KeyBookmarksPrefix = "bookmarks:"
	keySelectionPrefix = "selections:"
)

func RecentKey(page int) string {
	return keyRecentPrefix + strconv.Itoa(page)
}

// RecentPrefix matches every cached page of the recent-entries listing.
func RecentPrefix() string {
	return keyRecentPrefix
}

func BookmarksKey(userID uuid.UUID) string {
	return KeyBookmarksPrefix + userID.String()
}

func SelectionsKey(userID uuid.UUID) string {
	return keySelectionPrefix + userID.String()
}

// Store is the byte-level backend behind a Cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Cache memoizes query results by key. Every invalidation advances a
// generation counter; a load that was in flight across an invalidation does
// not store its result, so a read issued after a completed write never sees
// data cached from before it.
type Cache struct {
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	generation uint64
}

func New(store Store, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

// Fetch returns the cached value for key, or calls load and caches its result.
// Store failures degrade to an uncached load.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "component", "querycache", "key", key, "error", err)
	}
	if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.metrics.CacheHit()
			return cached, nil
		}
		c.logger.Warn("discarding undecodable cache value", "component", "querycache", "key", key)
	}
	c.metrics.CacheMiss()

	gen := c.currentGeneration()
	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", "component", "querycache", "key", key, "error", err)
		return value, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return value, nil
	}
	if err := c.store.Set(ctx, key, encoded, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "component", "querycache", "key", key, "error", err)
	}
	return value, nil
}

// Invalidate drops the given keys and stops in-flight loads from repopulating them.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.store.Delete(ctx, keys...)
}

func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.store.DeletePrefix(ctx, prefix)
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
