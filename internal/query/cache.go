package query

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/starford/notehub/internal/models"
)

// DefaultTTL is how long a page stays fresh.
const DefaultTTL = 5 * time.Minute

// DefaultCapacity bounds the number of cached pages; the least recently used
// page is evicted first.
const DefaultCapacity = 256

// Fetcher loads one page from the notes API.
type Fetcher interface {
	FetchNotes(ctx context.Context, req models.PageRequest) (*models.PageResult, error)
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for fetch and invalidation records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// WithCapacity overrides DefaultCapacity.
func WithCapacity(n uint64) Option {
	return func(c *Cache) {
		c.capacity = n
	}
}

// Cache is a key-based page cache with in-flight de-duplication.
//
// Fetch performs at most one request per key at a time: concurrent callers
// for the same key wait on the same call. Invalidate bumps an epoch, so a
// fetch that started before the invalidation is neither cached nor joined by
// later callers.
type Cache struct {
	fetcher  Fetcher
	perPage  int
	ttl      time.Duration
	capacity uint64
	logger   *slog.Logger

	group singleflight.Group
	pages *ttlcache.Cache[Key, *models.PageResult]

	// mu orders stores against invalidations.
	mu    sync.Mutex
	epoch uint64
}

// NewCache creates a cache over fetcher. perPage is the fixed page size sent
// with every request; ttl <= 0 means DefaultTTL.
func NewCache(fetcher Fetcher, perPage int, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		fetcher:  fetcher,
		perPage:  perPage,
		ttl:      ttl,
		capacity: DefaultCapacity,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	// A hit must not extend the page's lifetime: freshness counts from the
	// fetch.
	c.pages = ttlcache.New(
		ttlcache.WithTTL[Key, *models.PageResult](c.ttl),
		ttlcache.WithCapacity[Key, *models.PageResult](c.capacity),
		ttlcache.WithDisableTouchOnHit[Key, *models.PageResult](),
	)
	return c
}

// Peek returns the cached, unexpired result for k.
func (c *Cache) Peek(k Key) (*models.PageResult, bool) {
	item := c.pages.Get(k)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Fetch returns the cached result for k or fetches it.
func (c *Cache) Fetch(ctx context.Context, k Key) (*models.PageResult, error) {
	if res, ok := c.Peek(k); ok {
		return res, nil
	}
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	ch := c.group.DoChan(flightKey(k, epoch), func() (any, error) {
		// The shared call outlives any single caller's context.
		fctx := context.WithoutCancel(ctx)
		start := time.Now()
		res, err := c.fetcher.FetchNotes(fctx, models.PageRequest{
			Page:    k.Page,
			PerPage: c.perPage,
			Search:  k.Search,
		})
		if err != nil {
			c.logger.Warn("fetch failed",
				slog.String("key", k.String()),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		c.mu.Lock()
		stored := c.epoch == epoch
		if stored {
			c.pages.Set(k, res, ttlcache.DefaultTTL)
		}
		c.mu.Unlock()

		c.logger.Debug("fetched",
			slog.String("key", k.String()),
			slog.Int("notes", len(res.Notes)),
			slog.Int("total_pages", res.TotalPages),
			slog.Bool("cached", stored),
			slog.Duration("took", time.Since(start)),
		)
		return res, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*models.PageResult), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops every entry matching p and returns how many were dropped.
// Fetches already in flight finish but their results are not cached.
func (c *Cache) Invalidate(p Prefix) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	n := 0
	for _, k := range c.pages.Keys() {
		if p.Matches(k) {
			c.pages.Delete(k)
			n++
		}
	}
	c.logger.Debug("invalidated", slog.String("prefix", p.String()), slog.Int("dropped", n))
	return n
}
