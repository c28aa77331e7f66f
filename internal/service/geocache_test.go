package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeCache_RoundTrip(t *testing.T) {
	cache := NewGeocodeCache()

	_, hit := cache.Get(37.0, -122.0)
	require.False(t, hit, "empty cache should miss")

	cache.Put(37.0, -122.0, "Library")

	name, hit := cache.Get(37.0, -122.0)
	require.True(t, hit)
	assert.Equal(t, "Library", name)
	assert.Equal(t, 1, cache.Size())
}

// Coordinates within the 4-decimal grid cell share an entry by design.
func TestGeocodeCache_NearbyCoordinatesCollide(t *testing.T) {
	cache := NewGeocodeCache()

	cache.Put(37.00001, -122.00004, "Library")

	name, hit := cache.Get(37.00003, -122.00001)
	require.True(t, hit)
	assert.Equal(t, "Library", name)

	// A point in a different grid cell misses.
	_, hit = cache.Get(37.001, -122.0)
	assert.False(t, hit)
}

func TestGeocodeCache_ExpiredEntryMisses(t *testing.T) {
	now := time.Now()
	cache := &geocodeCache{
		entries: make(map[string]geocodeEntry),
		now:     func() time.Time { return now },
	}

	cache.Put(37.0, -122.0, "Library")

	now = now.Add(geocodeCacheTTL - time.Second)
	_, hit := cache.Get(37.0, -122.0)
	assert.True(t, hit, "entry within TTL should hit")

	now = now.Add(2 * time.Second)
	_, hit = cache.Get(37.0, -122.0)
	assert.False(t, hit, "entry older than TTL should miss")

	// Expired entries are superseded, not purged.
	assert.Equal(t, 1, cache.Size())

	cache.Put(37.0, -122.0, "New Library")
	name, hit := cache.Get(37.0, -122.0)
	require.True(t, hit)
	assert.Equal(t, "New Library", name)
	assert.Equal(t, 1, cache.Size())
}

func TestGeocodeCache_Clear(t *testing.T) {
	cache := NewGeocodeCache()
	cache.Put(37.0, -122.0, "Library")
	cache.Put(40.0, -74.0, "Deli")
	require.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())

	_, hit := cache.Get(37.0, -122.0)
	assert.False(t, hit)
}
