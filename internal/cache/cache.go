package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
)

// Config controls TTL tiering. Spots on the popular list get the short TTL
// because the scheduler also refreshes them more frequently.
type Config struct {
	DefaultTTL   time.Duration
	PopularTTL   time.Duration
	PopularSpots []string
}

// entry is one cached day of hourly data. Entries are immutable once
// stored; a refresh replaces the whole entry.
type entry struct {
	data      []forecast.HourDetail
	timestamp time.Time
	expires   time.Time
}

// Stats summarizes cache occupancy by expiry state.
type Stats struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
	Valid   int `json:"valid"`
}

// WeatherCache is an in-memory, time-keyed cache mapping (spot, date) to one
// day of canonical hourly records. Expired entries are evicted lazily on
// read; there is no background sweep. Concurrent refreshes of the same key
// are not coalesced: last Set wins.
type WeatherCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	cfg     Config
	popular map[string]bool

	now func() time.Time
	log *logrus.Logger
}

// New creates a WeatherCache with the given tiering config.
func New(cfg Config, log *logrus.Logger) *WeatherCache {
	popular := make(map[string]bool, len(cfg.PopularSpots))
	for _, id := range cfg.PopularSpots {
		popular[id] = true
	}
	return &WeatherCache{
		entries: make(map[string]entry),
		cfg:     cfg,
		popular: popular,
		now:     time.Now,
		log:     log,
	}
}

func key(spotID, date string) string {
	return spotID + "_" + date
}

func (c *WeatherCache) ttl(spotID string) time.Duration {
	if c.popular[spotID] {
		return c.cfg.PopularTTL
	}
	return c.cfg.DefaultTTL
}

// Get returns the cached hours for a spot and day, or false on a miss.
// An expired entry counts as a miss and is removed.
func (c *WeatherCache) Get(spotID, date string) ([]forecast.HourDetail, bool) {
	k := key(spotID, date)

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()

	if !ok {
		c.log.WithField("key", k).Debug("cache miss")
		return nil, false
	}

	if c.now().After(e.expires) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, ok := c.entries[k]; ok && c.now().After(cur.expires) {
			delete(c.entries, k)
		}
		c.mu.Unlock()
		c.log.WithField("key", k).Debug("cache expired")
		return nil, false
	}

	c.log.WithFields(logrus.Fields{
		"key": k,
		"age": c.now().Sub(e.timestamp).Round(time.Minute).String(),
	}).Debug("cache hit")
	return e.data, true
}

// Set stores a fresh entry for a spot and day with the tiered TTL.
func (c *WeatherCache) Set(spotID, date string, data []forecast.HourDetail) {
	k := key(spotID, date)
	ttl := c.ttl(spotID)
	now := c.now()

	c.mu.Lock()
	c.entries[k] = entry{
		data:      data,
		timestamp: now,
		expires:   now.Add(ttl),
	}
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"key": k, "ttl": ttl.String()}).Debug("cached")
}

// LastUpdated reports when the entry for a spot and day was stored.
func (c *WeatherCache) LastUpdated(spotID, date string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key(spotID, date)]
	if !ok {
		return time.Time{}, false
	}
	return e.timestamp, true
}

// IsExpired reports whether the entry for a spot and day is absent or past
// its TTL, without evicting it.
func (c *WeatherCache) IsExpired(spotID, date string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key(spotID, date)]
	return !ok || c.now().After(e.expires)
}

// Clear drops all entries. Operational use only.
func (c *WeatherCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.log.Info("cache cleared")
}

// GetStats counts entries by expiry state without evicting anything.
func (c *WeatherCache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	stats := Stats{Total: len(c.entries)}
	for _, e := range c.entries {
		if now.After(e.expires) {
			stats.Expired++
		} else {
			stats.Valid++
		}
	}
	return stats
}

// SetClock overrides the time source. Test hook.
func (c *WeatherCache) SetClock(now func() time.Time) {
	c.now = now
}
