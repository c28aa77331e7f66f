package service

import (
	"context"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/messaging"
	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/dto"
	"github.com/sigapp/backend/internal/model"
)

// fakePresenceRepo is an in-memory stand-in for the firestore-backed
// presence repository, with the same "absent document means off" behavior.
type fakePresenceRepo struct {
	mu      sync.Mutex
	records map[string]model.PresenceRecord

	getErr         error
	setLocationErr error

	setLocationCalls int
	clearCalls       int
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{records: make(map[string]model.PresenceRecord)}
}

func (f *fakePresenceRepo) Get(_ context.Context, userID string) (model.PresenceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return model.PresenceRecord{}, f.getErr
	}
	record, ok := f.records[userID]
	if !ok {
		return model.PresenceRecord{UserID: userID}, nil
	}
	return record, nil
}

func (f *fakePresenceRepo) SetAvailability(_ context.Context, userID string, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record := f.records[userID]
	record.UserID = userID
	record.Available = available
	if !available {
		record.Location = nil
	}
	f.records[userID] = record
	return nil
}

func (f *fakePresenceRepo) SetLocation(_ context.Context, userID string, location model.PresenceLocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocationCalls++
	if f.setLocationErr != nil {
		return f.setLocationErr
	}
	record := f.records[userID]
	record.UserID = userID
	record.Location = &location
	f.records[userID] = record
	return nil
}

func (f *fakePresenceRepo) ClearLocation(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	record := f.records[userID]
	record.UserID = userID
	record.Location = nil
	f.records[userID] = record
	return nil
}

func (f *fakePresenceRepo) record(userID string) model.PresenceRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[userID]
}

func (f *fakePresenceRepo) locationWrites() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setLocationCalls
}

// fakeUserRepo stores users and friendships in memory.
type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]model.User
	friends map[string][]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]model.User),
		friends: make(map[string][]model.User),
	}
}

func (f *fakeUserRepo) GetByID(id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("%w: user %s", dto.ErrNotFound, id)
	}
	return user, nil
}

func (f *fakeUserRepo) Create(user model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Save(user model.User) (model.User, error) {
	return f.Create(user)
}

func (f *fakeUserRepo) Friends(id string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.friends[id], nil
}

func (f *fakeUserRepo) AreFriends(id, otherID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, friend := range f.friends[id] {
		if friend.ID == otherID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) UpdatePushToken(id string, token *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[id]
	user.PushToken = token
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) UpdatePermissions(id string, foreground, background, notifications bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[id]
	user.ForegroundLocationGranted = foreground
	user.BackgroundLocationGranted = background
	user.NotificationsGranted = notifications
	f.users[id] = user
	return nil
}

// fakePlacesClient returns canned results and counts outbound calls.
type fakePlacesClient struct {
	mu sync.Mutex

	nearbyResults  []client.Place
	nearbyErr      error
	geocodeResults []client.GeocodeResult
	geocodeErr     error

	nearbyCalls  int
	geocodeCalls int
}

func (f *fakePlacesClient) NearbySearch(_ context.Context, _, _ float64, _ int) ([]client.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nearbyCalls++
	return f.nearbyResults, f.nearbyErr
}

func (f *fakePlacesClient) ReverseGeocode(_ context.Context, _, _ float64) ([]client.GeocodeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geocodeCalls++
	return f.geocodeResults, f.geocodeErr
}

func (f *fakePlacesClient) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nearbyCalls, f.geocodeCalls
}

// fakePushClient records every submitted batch.
type fakePushClient struct {
	mu      sync.Mutex
	batches [][]*messaging.Message
	err     error
}

func (f *fakePushClient) SendBatch(_ context.Context, messages []*messaging.Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.batches = append(f.batches, messages)
	return 0, nil
}

func (f *fakePushClient) sentBatches() [][]*messaging.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]*messaging.Message(nil), f.batches...)
}

// fakeBroadcast collects published payloads.
type fakeBroadcast struct {
	mu        sync.Mutex
	published [][]byte
}

func (f *fakeBroadcast) Publish(message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, message)
	return nil
}

func (f *fakeBroadcast) Subscribe(string) (<-chan []byte, error) {
	ch := make(chan []byte, 100)
	return ch, nil
}

func (f *fakeBroadcast) Unsubscribe(string) error { return nil }
func (f *fakeBroadcast) Close() error             { return nil }

// fakeLocationSource hands out countable subscriptions and lets tests drive
// the watch callback directly.
type fakeLocationSource struct {
	mu         sync.Mutex
	watchErr   error
	watchCalls int
	current    client.LocationSample
	currentErr error

	lastFn func(client.LocationSample)
	subs   []*fakeSubscription
}

type fakeSubscription struct {
	mu      sync.Mutex
	cancels int
}

func (s *fakeSubscription) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
}

func (s *fakeSubscription) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

func (f *fakeLocationSource) Current(_ context.Context, _ client.Accuracy) (client.LocationSample, error) {
	return f.current, f.currentErr
}

func (f *fakeLocationSource) Watch(_ client.WatchOptions, fn func(client.LocationSample)) (client.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchCalls++
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	f.lastFn = fn
	sub := &fakeSubscription{}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeLocationSource) deliver(sample client.LocationSample) {
	f.mu.Lock()
	fn := f.lastFn
	f.mu.Unlock()
	if fn != nil {
		fn(sample)
	}
}

// staticPermissions grants everything unless told otherwise.
type staticPermissions struct {
	foreground    bool
	background    bool
	notifications bool
}

func (p staticPermissions) LocationGranted(_ context.Context, _ string, execContext ExecutionContext) bool {
	if execContext == ContextBackground {
		return p.background
	}
	return p.foreground
}

func (p staticPermissions) NotificationsGranted(context.Context, string) bool {
	return p.notifications
}
