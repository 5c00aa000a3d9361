package gazetteer

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/nws-text-ingest/internal/cache"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// Provider is both lookups the parsers need.
type Provider interface {
	nws.LocationProvider
	nws.UGCProvider
}

// Cached wraps a Provider with in-memory LRU caches. Misses are not
// cached so identifiers added to the gazetteer later are picked up.
type Cached struct {
	inner    Provider
	stations *cache.LRU[string, nws.Location]
	ugcs     *cache.LRU[string, nws.UGC]
	lookups  *prometheus.CounterVec // labels: kind, result
}

// NewCached creates a cache decorator around a provider. lookups may be nil.
func NewCached(inner Provider, maxEntries int, lookups *prometheus.CounterVec) *Cached {
	return &Cached{
		inner:    inner,
		stations: cache.NewLRU[string, nws.Location](maxEntries),
		ugcs:     cache.NewLRU[string, nws.UGC](maxEntries),
		lookups:  lookups,
	}
}

func (c *Cached) Lookup(id string) (nws.Location, bool) {
	if loc, ok := c.stations.Get(id); ok {
		c.observe("station", "hit")
		return loc, true
	}
	c.observe("station", "miss")
	loc, ok := c.inner.Lookup(id)
	if ok {
		c.stations.Put(id, loc)
	}
	return loc, ok
}

func (c *Cached) LookupUGC(code string) (nws.UGC, bool) {
	if u, ok := c.ugcs.Get(code); ok {
		c.observe("ugc", "hit")
		return u, true
	}
	c.observe("ugc", "miss")
	u, ok := c.inner.LookupUGC(code)
	if ok {
		c.ugcs.Put(code, u)
	}
	return u, ok
}

func (c *Cached) observe(kind, result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(kind, result).Inc()
	}
}
