package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedSample(latitude, longitude float64, at time.Time) LocationSample {
	return LocationSample{
		Coordinates: Coordinates{Latitude: latitude, Longitude: longitude},
		SampledAt:   at,
	}
}

func TestLocationFeed_FirstSampleAlwaysDelivered(t *testing.T) {
	feed := NewLocationFeed()

	var received []LocationSample
	_, err := feed.Watch(WatchOptions{MinInterval: 30 * time.Second, MinDistanceMeters: 50}, func(s LocationSample) {
		received = append(received, s)
	})
	require.NoError(t, err)

	feed.Publish(feedSample(37.0, -122.0, time.Now()))
	require.Len(t, received, 1)
}

func TestLocationFeed_FiltersByIntervalAndDistance(t *testing.T) {
	feed := NewLocationFeed()

	var received []LocationSample
	_, err := feed.Watch(WatchOptions{MinInterval: 30 * time.Second, MinDistanceMeters: 50}, func(s LocationSample) {
		received = append(received, s)
	})
	require.NoError(t, err)

	base := time.Now()
	feed.Publish(feedSample(37.0, -122.0, base))
	require.Len(t, received, 1)

	// Far enough but too soon.
	feed.Publish(feedSample(37.01, -122.0, base.Add(10*time.Second)))
	assert.Len(t, received, 1)

	// Late enough but too close (a few meters).
	feed.Publish(feedSample(37.00001, -122.0, base.Add(40*time.Second)))
	assert.Len(t, received, 1)

	// Both thresholds cleared: ~1.1 km and 45 s after the last delivery.
	feed.Publish(feedSample(37.01, -122.0, base.Add(45*time.Second)))
	require.Len(t, received, 2)
	assert.Equal(t, 37.01, received[1].Latitude)
}

func TestLocationFeed_CancelStopsDelivery(t *testing.T) {
	feed := NewLocationFeed()

	var received int
	subscription, err := feed.Watch(WatchOptions{}, func(LocationSample) { received++ })
	require.NoError(t, err)

	feed.Publish(feedSample(37.0, -122.0, time.Now()))
	subscription.Cancel()
	feed.Publish(feedSample(38.0, -121.0, time.Now().Add(time.Hour)))

	assert.Equal(t, 1, received)
}

func TestLocationFeed_CurrentReturnsFreshSample(t *testing.T) {
	feed := NewLocationFeed()
	feed.Publish(feedSample(37.0, -122.0, time.Now()))

	sample, err := feed.Current(context.Background(), AccuracyBalanced)
	require.NoError(t, err)
	assert.Equal(t, 37.0, sample.Latitude)
}

func TestLocationFeed_CurrentWaitsForNextSampleWhenStale(t *testing.T) {
	feed := NewLocationFeed()
	feed.Publish(feedSample(37.0, -122.0, time.Now().Add(-2*time.Minute)))

	go func() {
		time.Sleep(20 * time.Millisecond)
		feed.Publish(feedSample(38.0, -121.0, time.Now()))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sample, err := feed.Current(ctx, AccuracyBalanced)
	require.NoError(t, err)
	assert.Equal(t, 38.0, sample.Latitude)
}

func TestLocationFeed_CurrentHonorsDeadline(t *testing.T) {
	feed := NewLocationFeed()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := feed.Current(ctx, AccuracyBalanced)
	assert.Error(t, err)
}

func TestDistanceMeters(t *testing.T) {
	// One degree of latitude is roughly 111 km.
	d := distanceMeters(Coordinates{Latitude: 37.0, Longitude: -122.0}, Coordinates{Latitude: 38.0, Longitude: -122.0})
	assert.InDelta(t, 111000, d, 500)

	assert.Zero(t, distanceMeters(Coordinates{Latitude: 37.0, Longitude: -122.0}, Coordinates{Latitude: 37.0, Longitude: -122.0}))
}
