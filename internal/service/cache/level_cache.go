package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// LevelEntry is one remembered reference-level price.
type LevelEntry struct {
	Price        float64   `json:"price"`
	Timestamp    time.Time `json:"timestamp"`
	LastAccessed time.Time `json:"last_accessed"`
}

type snapshot struct {
	Instrument string                `json:"instrument"`
	Levels     map[string]LevelEntry `json:"cached_levels"`
}

// LevelCache remembers the last observed price per reference level so a
// later analysis can fill levels its own window cannot resolve. Entries
// expire per level family (see Fresh). Snapshots are stored as one JSON
// blob per instrument in the underlying BytesCache, so updates are
// read-modify-write; the mutex serializes them within this process only.
type LevelCache struct {
	mu    sync.Mutex
	store BytesCache
}

func NewLevelCache(store BytesCache) *LevelCache {
	return &LevelCache{store: store}
}

func (c *LevelCache) key(instrument string) string {
	return "levelcache:" + instrument
}

func (c *LevelCache) load(instrument string) snapshot {
	b, ok, err := c.store.GetBytes(c.key(instrument))
	if err != nil || !ok {
		return snapshot{Instrument: instrument, Levels: map[string]LevelEntry{}}
	}
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil || s.Levels == nil {
		return snapshot{Instrument: instrument, Levels: map[string]LevelEntry{}}
	}
	return s
}

func (c *LevelCache) save(s snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal level cache: %w", err)
	}
	// Entries carry their own freshness rules; the blob itself only
	// needs a housekeeping bound.
	return c.store.SetBytes(c.key(s.Instrument), b, 30*24*time.Hour)
}

// Update records the resolved level prices from an analysis run.
func (c *LevelCache) Update(instrument string, levels map[string]float64, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.load(instrument)
	for name, price := range levels {
		s.Levels[name] = LevelEntry{Price: price, Timestamp: at, LastAccessed: at}
	}
	return c.save(s)
}

// FreshPrices returns the cached prices still valid at now, touching
// their last-accessed marks.
func (c *LevelCache) FreshPrices(instrument string, now time.Time) map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.load(instrument)
	out := make(map[string]float64, len(s.Levels))
	touched := false
	for name, e := range s.Levels {
		if !Fresh(name, e.Timestamp, now) {
			continue
		}
		out[name] = e.Price
		e.LastAccessed = now
		s.Levels[name] = e
		touched = true
	}
	if touched {
		_ = c.save(s)
	}
	return out
}

// Cleanup drops entries not accessed within the threshold and returns
// how many were removed.
func (c *LevelCache) Cleanup(instrument string, now time.Time, threshold time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.load(instrument)
	cutoff := now.Add(-threshold)
	removed := 0
	for name, e := range s.Levels {
		if e.LastAccessed.Before(cutoff) {
			delete(s.Levels, name)
			removed++
		}
	}
	if removed > 0 {
		_ = c.save(s)
	}
	return removed
}

// Clear drops every entry for an instrument and returns the count removed.
func (c *LevelCache) Clear(instrument string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.load(instrument)
	n := len(s.Levels)
	if n > 0 {
		_ = c.save(snapshot{Instrument: instrument, Levels: map[string]LevelEntry{}})
	}
	return n
}
