package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/query"
	pkgredis "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/redis"
)

const keyPrefix = "rankcore:search:"

// Store is the key-value backend; *pkgredis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache caches search results. The index is immutable, so entries only
// go stale when the service restarts with a different corpus; the key
// includes a corpus generation for that reason.
type QueryCache struct {
	store      Store
	ttl        time.Duration
	generation string
	group      singleflight.Group
	logger     *slog.Logger
	hits       atomic.Int64
	misses     atomic.Int64
}

func New(store Store, ttl time.Duration, generation string) *QueryCache {
	return &QueryCache{
		store:      store,
		ttl:        ttl,
		generation: generation,
		logger:     slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, q string, limit int) (*query.SearchResult, bool) {
	key := c.buildKey(q, limit)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result query.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", q, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, q string, limit int, result *query.SearchResult) {
	key := c.buildKey(q, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute serves from cache, or runs computeFn once per key across
// concurrent callers and stores its result.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	q string,
	limit int,
	computeFn func() (*query.SearchResult, error),
) (*query.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, q, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(q, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, q, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*query.SearchResult), false, nil
}

func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey normalises the query with the index tokenizer. Term order is kept
// because proximity scoring depends on it.
func (c *QueryCache) buildKey(q string, limit int) string {
	normalized := strings.Join(tokenizer.Terms(q), " ")
	raw := fmt.Sprintf("%s|%s|limit=%d", c.generation, normalized, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
