// Package query caches backend reads with stale-while-revalidate semantics.
package query

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/katyella/kconsole/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the value for a key
type Fetcher func(ctx context.Context) (any, error)

// Result is what Fetch hands back. Err carries the last background failure
// when an older value is still being served.
type Result struct {
	Value     any
	Err       error
	FetchedAt time.Time
	Stale     bool
}

type entry struct {
	value      any
	hasValue   bool
	err        error
	fetchedAt  time.Time
	lastAccess time.Time
	invalid    bool
}

// Option configures a Cache
type Option func(*Cache)

// WithStaleTime sets how long a value is served without revalidation
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithCacheTime sets how long an unused entry survives Sweep
func WithCacheTime(d time.Duration) Option {
	return func(c *Cache) { c.cacheTime = d }
}

// WithLoadTimeout bounds a shared backend load. Loads run detached from
// the caller that started them, so this is their only deadline.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) { c.loadTimeout = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithOnUpdate registers a callback run after a background revalidation
// stores a new value or error
func WithOnUpdate(fn func(key string)) Option {
	return func(c *Cache) { c.onUpdate = fn }
}

// Cache is a keyed response cache. Concurrent loads of the same key are
// collapsed into one backend call.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	wg      sync.WaitGroup

	staleTime   time.Duration
	cacheTime   time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	onUpdate    func(key string)
}

// New creates a cache with the given options
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:     make(map[string]*entry),
		staleTime:   constants.DefaultStaleTime,
		cacheTime:   constants.DefaultCacheTime,
		loadTimeout: constants.DefaultRequestTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the cache key of a list or object read
func Key(cluster, resource, namespace, extra string) string {
	return Prefix(cluster, resource) + namespace + "?" + extra
}

// Prefix matches every key for resource in cluster
func Prefix(cluster, resource string) string {
	return cluster + "/" + resource + "/"
}

// Fetch returns the cached value for key. Fresh values are returned as is,
// stale values are returned immediately while a refresh runs in the
// background, and missing values are loaded synchronously.
func (c *Cache) Fetch(ctx context.Context, key string, fetch Fetcher) (Result, error) {
	c.mu.Lock()
	now := c.now()
	e, ok := c.entries[key]
	if ok {
		e.lastAccess = now
	}
	if ok && e.hasValue {
		res := Result{Value: e.value, Err: e.err, FetchedAt: e.fetchedAt}
		if !e.invalid && now.Sub(e.fetchedAt) < c.staleTime {
			c.mu.Unlock()
			metrics.CacheEvent(metrics.CacheHit)
			return res, nil
		}
		c.mu.Unlock()
		metrics.CacheEvent(metrics.CacheStale)
		res.Stale = true
		c.revalidate(ctx, key, fetch)
		return res, nil
	}
	c.mu.Unlock()

	metrics.CacheEvent(metrics.CacheMiss)
	// Other callers may share this load, so one caller giving up must not
	// cancel it.
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(ctx, key, fetch)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return Result{Value: r.Val, FetchedAt: c.fetchedAt(key)}, nil
	}
}

func (c *Cache) revalidate(ctx context.Context, key string, fetch Fetcher) {
	c.wg.Add(1)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(ctx, key, fetch)
	})
	go func() {
		defer c.wg.Done()
		r := <-ch
		if r.Err != nil {
			log.Debug().Err(r.Err).Str("key", key).Msg("Background refresh failed")
		}
		if c.onUpdate != nil {
			c.onUpdate(key)
		}
	}()
}

func (c *Cache) load(ctx context.Context, key string, fetch Fetcher) (any, error) {
	ctx = context.WithoutCancel(ctx)
	if c.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.loadTimeout)
		defer cancel()
	}
	value, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.lastAccess = now
	if err != nil {
		// The last good value stays
		e.err = err
		return nil, err
	}
	e.value = value
	e.hasValue = true
	e.err = nil
	e.invalid = false
	e.fetchedAt = now
	return value, nil
}

func (c *Cache) fetchedAt(key string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.fetchedAt
	}
	return time.Time{}
}

// Peek returns the cached value without loading or touching it
func (c *Cache) Peek(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.hasValue {
		return Result{}, false
	}
	stale := e.invalid || c.now().Sub(e.fetchedAt) >= c.staleTime
	return Result{Value: e.value, Err: e.err, FetchedAt: e.fetchedAt, Stale: stale}, true
}

// Set stores value as freshly fetched
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.entries[key] = &entry{
		value:      value,
		hasValue:   true,
		fetchedAt:  now,
		lastAccess: now,
	}
}

// Invalidate marks every entry whose key starts with prefix as stale and
// returns how many were marked
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			e.invalid = true
			n++
		}
	}
	return n
}

// Remove drops entries whose key starts with prefix
func (c *Cache) Remove(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Sweep evicts entries not accessed within the cache time
func (c *Cache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if now.Sub(e.lastAccess) > c.cacheTime {
			delete(c.entries, key)
			metrics.CacheEvent(metrics.CacheEvict)
			n++
		}
	}
	return n
}

// Keys returns the cached keys, sorted
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Wait blocks until background revalidations have finished
func (c *Cache) Wait() {
	c.wg.Wait()
}
