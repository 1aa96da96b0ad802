package socrata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/domain"
	"github.com/couchcryptid/nyc-coffee-inspections/internal/observability"
)

// CachedSource wraps a RecordSource with an in-memory LRU cache whose
// entries expire after a fixed TTL. Identical queries running at the same
// time share one upstream call. Returned slices are shared between callers
// and must not be modified.
type CachedSource struct {
	inner   domain.RecordSource
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	group   singleflight.Group

	mu    sync.Mutex
	cache *lru.Cache
}

type cacheEntry struct {
	raws    []domain.RawRecord
	expires time.Time
}

// NewCachedSource creates a cache decorator around a record source.
func NewCachedSource(inner domain.RecordSource, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSource{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		cache:   lru.New(maxEntries),
	}
}

func (c *CachedSource) Fetch(ctx context.Context, q domain.Query) ([]domain.RawRecord, error) {
	key := fmt.Sprintf("%d|%s", q.Limit, q.Name)
	if raws, ok := c.get(key); ok {
		c.metrics.SourceCache.WithLabelValues("hit").Inc()
		return raws, nil
	}

	// The upstream call outlives any single caller so that one cancelled
	// request does not fail every caller sharing it.
	ch := c.group.DoChan(key, func() (any, error) {
		raws, err := c.inner.Fetch(context.WithoutCancel(ctx), q)
		if err != nil {
			return nil, err
		}
		// Empty results stay uncached so a newly inspected shop shows up
		// on the next lookup.
		if len(raws) > 0 {
			c.put(key, raws)
		}
		return raws, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.metrics.SourceCache.WithLabelValues("shared").Inc()
		} else {
			c.metrics.SourceCache.WithLabelValues("miss").Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.RawRecord), nil
	}
}

func (c *CachedSource) get(key string) ([]domain.RawRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(cacheEntry)
	if !c.clock.Now().Before(e.expires) {
		c.cache.Remove(key)
		return nil, false
	}
	return e.raws, true
}

func (c *CachedSource) put(key string, raws []domain.RawRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, cacheEntry{raws: raws, expires: c.clock.Now().Add(c.ttl)})
}

// Len reports the number of cached queries, expired entries included.
func (c *CachedSource) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
