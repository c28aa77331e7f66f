package client

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sigapp/backend/internal/dto"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type LocationSample struct {
	Coordinates
	SampledAt time.Time `json:"sampledAt"`
}

type Accuracy int

const (
	AccuracyBalanced Accuracy = iota
	AccuracyHigh
)

// WatchOptions mirror a continuous device watch: samples are delivered only
// once both the minimum interval and the minimum displacement are satisfied.
type WatchOptions struct {
	Accuracy          Accuracy
	MinInterval       time.Duration
	MinDistanceMeters float64
}

type Subscription interface {
	Cancel()
}

// LocationSource is a device location collaborator: one-shot reads and
// continuous watches.
type LocationSource interface {
	Current(ctx context.Context, accuracy Accuracy) (LocationSample, error)
	Watch(opts WatchOptions, fn func(LocationSample)) (Subscription, error)
}

// currentMaxAge bounds how old a sample a one-shot read will accept before
// waiting for a fresh one.
const currentMaxAge = time.Minute

// LocationFeed is a LocationSource fed by samples the device reports over
// the API. Watch callbacks run synchronously on the publishing goroutine.
type LocationFeed struct {
	mu       sync.Mutex
	watchers map[string]*feedWatcher
	last     *LocationSample
	waiters  []chan LocationSample
}

type feedWatcher struct {
	opts    WatchOptions
	fn      func(LocationSample)
	lastAt  time.Time
	lastAt0 bool
	lastPos Coordinates
}

func NewLocationFeed() *LocationFeed {
	return &LocationFeed{
		watchers: make(map[string]*feedWatcher),
	}
}

// Publish records a device-reported sample and fans it out to watchers whose
// interval and displacement thresholds it clears.
func (f *LocationFeed) Publish(sample LocationSample) {
	if sample.SampledAt.IsZero() {
		sample.SampledAt = time.Now().UTC()
	}

	f.mu.Lock()
	f.last = &sample

	waiters := f.waiters
	f.waiters = nil

	var due []*feedWatcher
	for _, watcher := range f.watchers {
		if !watcher.lastAt0 {
			due = append(due, watcher)
			continue
		}
		elapsed := sample.SampledAt.Sub(watcher.lastAt)
		moved := distanceMeters(watcher.lastPos, sample.Coordinates)
		if elapsed >= watcher.opts.MinInterval && moved >= watcher.opts.MinDistanceMeters {
			due = append(due, watcher)
		}
	}
	for _, watcher := range due {
		watcher.lastAt = sample.SampledAt
		watcher.lastAt0 = true
		watcher.lastPos = sample.Coordinates
	}
	f.mu.Unlock()

	for _, waiter := range waiters {
		waiter <- sample
	}
	for _, watcher := range due {
		watcher.fn(sample)
	}
}

func (f *LocationFeed) Current(ctx context.Context, _ Accuracy) (LocationSample, error) {
	f.mu.Lock()
	if f.last != nil && time.Since(f.last.SampledAt) <= currentMaxAge {
		sample := *f.last
		f.mu.Unlock()
		return sample, nil
	}

	waiter := make(chan LocationSample, 1)
	f.waiters = append(f.waiters, waiter)
	f.mu.Unlock()

	select {
	case sample := <-waiter:
		return sample, nil
	case <-ctx.Done():
		return LocationSample{}, fmt.Errorf("%w: waiting for location sample: %v", dto.ErrInternalFailure, ctx.Err())
	}
}

func (f *LocationFeed) Watch(opts WatchOptions, fn func(LocationSample)) (Subscription, error) {
	id := uuid.NewString()

	f.mu.Lock()
	f.watchers[id] = &feedWatcher{opts: opts, fn: fn}
	f.mu.Unlock()

	return &feedSubscription{feed: f, id: id}, nil
}

type feedSubscription struct {
	feed *LocationFeed
	id   string
}

func (s *feedSubscription) Cancel() {
	s.feed.mu.Lock()
	delete(s.feed.watchers, s.id)
	s.feed.mu.Unlock()
}

const earthRadiusMeters = 6371000

func distanceMeters(a, b Coordinates) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
