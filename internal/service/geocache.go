package service

import (
	"fmt"
	"sync"
	"time"
)

const (
	// geocodeCacheTTL matches the upstream lookup's tolerance for a stale
	// place name.
	geocodeCacheTTL = 10 * time.Minute

	// geocodeKeyPrecision conflates coordinates within roughly 11 meters so
	// nearby samples share an entry.
	geocodeKeyPrecision = 4
)

// GeocodeCache memoizes coordinate-to-place-name lookups. Entries expire
// lazily after geocodeCacheTTL and are superseded on the next Put, never
// purged. There is no size eviction: the key space is bounded by how far
// active users actually move, but a long-running process that tracks many
// users will grow this map without bound.
type GeocodeCache interface {
	Get(latitude, longitude float64) (string, bool)
	Put(latitude, longitude float64, placeName string)
	Clear()
	Size() int
}

type geocodeEntry struct {
	placeName string
	cachedAt  time.Time
}

type geocodeCache struct {
	entries map[string]geocodeEntry
	mutex   sync.RWMutex
	now     func() time.Time
}

func NewGeocodeCache() GeocodeCache {
	return &geocodeCache{
		entries: make(map[string]geocodeEntry),
		now:     time.Now,
	}
}

func geocodeKey(latitude, longitude float64) string {
	return fmt.Sprintf("%.*f,%.*f", geocodeKeyPrecision, latitude, geocodeKeyPrecision, longitude)
}

func (c *geocodeCache) Get(latitude, longitude float64) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[geocodeKey(latitude, longitude)]
	if !exists || c.now().Sub(entry.cachedAt) > geocodeCacheTTL {
		return "", false
	}
	return entry.placeName, true
}

func (c *geocodeCache) Put(latitude, longitude float64, placeName string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[geocodeKey(latitude, longitude)] = geocodeEntry{
		placeName: placeName,
		cachedAt:  c.now(),
	}
}

func (c *geocodeCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]geocodeEntry)
}

func (c *geocodeCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}
