package scene

import (
	"context"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheCapacity bounds the geometries kept for non-default params.
const DefaultCacheCapacity = 32

// GeometryCache builds each geometry once and hands out the same pointer
// afterwards. Concurrent requests for a key that is still building wait for
// the single in-flight build. Callers must treat returned geometry as
// read-only.
//
// Each kind's default params and anything passed to Warm are pinned. Other
// params share a bounded LRU, so arbitrary seeds cannot grow the cache.
type GeometryCache struct {
	group  singleflight.Group
	mu     sync.RWMutex
	pinned map[string]*Geometry
	keep   map[string]bool
	recent *lru.Cache[string, *Geometry]
	builds atomic.Int64
	log    *zap.Logger
}

// CacheOption configures a GeometryCache.
type CacheOption func(*GeometryCache)

// WithCapacity sets how many non-pinned geometries are kept.
func WithCapacity(n int) CacheOption {
	return func(c *GeometryCache) {
		if n > 0 {
			c.recent, _ = lru.New[string, *Geometry](n)
		}
	}
}

// NewGeometryCache creates an empty cache.
func NewGeometryCache(logger *zap.Logger, opts ...CacheOption) *GeometryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	recent, _ := lru.New[string, *Geometry](DefaultCacheCapacity)
	c := &GeometryCache{
		pinned: make(map[string]*Geometry),
		keep:   make(map[string]bool),
		recent: recent,
		log:    logger,
	}
	for _, k := range Kinds() {
		c.keep[DefaultParams(k).Key()] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *GeometryCache) lookup(key string) (*Geometry, bool) {
	c.mu.RLock()
	g, ok := c.pinned[key]
	c.mu.RUnlock()
	if ok {
		return g, true
	}
	return c.recent.Get(key)
}

// Get returns the geometry for p, building it on first use.
func (c *GeometryCache) Get(p Params) (*Geometry, error) {
	key := p.Key()
	if g, ok := c.lookup(key); ok {
		return g, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if g, ok := c.lookup(key); ok {
			return g, nil
		}

		g, err := Build(p)
		if err != nil {
			return nil, err
		}
		c.builds.Add(1)
		c.log.Debug("geometry built", zap.String("key", key), zap.Int("vertices", g.VertexCount()))

		c.mu.Lock()
		pin := c.keep[key]
		if pin {
			c.pinned[key] = g
		}
		c.mu.Unlock()
		if !pin {
			c.recent.Add(key, g)
		}
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Geometry), nil
}

// Warm pins and builds every geometry in params concurrently.
func (c *GeometryCache) Warm(ctx context.Context, params []Params) error {
	c.mu.Lock()
	for _, p := range params {
		key := p.Key()
		c.keep[key] = true
		if g, ok := c.recent.Peek(key); ok {
			c.pinned[key] = g
			c.recent.Remove(key)
		}
	}
	c.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range params {
		p := p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := c.Get(p)
			return err
		})
	}
	return g.Wait()
}

// Builds reports how many geometries have been generated.
func (c *GeometryCache) Builds() int64 {
	return c.builds.Load()
}

// Len reports how many geometries are cached.
func (c *GeometryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pinned) + c.recent.Len()
}
