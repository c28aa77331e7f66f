package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/dto"
	"github.com/sigapp/backend/internal/model"
	"github.com/sigapp/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// snapshotTimeout bounds how long the immediate turn-on snapshot waits for a
// device sample before giving up and leaving it to the continuous watch.
const snapshotTimeout = 10 * time.Second

// FriendPresence is one friend's availability and location as served to the
// friend list.
type FriendPresence struct {
	UserID      string                  `json:"userId"`
	DisplayName string                  `json:"displayName"`
	PhoneNumber string                  `json:"phoneNumber"`
	Available   bool                    `json:"available"`
	Location    *model.PresenceLocation `json:"location"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// PresenceService is the entry point of the presence pipeline: it flips
// availability, drives the per-context watcher supervisors, feeds device
// samples into the right execution context, and serves friends' presence.
type PresenceService interface {
	SetAvailability(ctx context.Context, userID string, available bool, selectedFriendIDs []string) error
	ReportSample(userID string, execContext ExecutionContext, sample client.LocationSample)
	FriendsPresence(ctx context.Context, userID string) ([]FriendPresence, error)
	FriendPresenceByID(ctx context.Context, userID, friendID string) (FriendPresence, error)
	SubscribeUpdates(id string) (<-chan []byte, error)
	UnsubscribeUpdates(id string) error
}

// pipeline is the per-user tracking state: one device sample feed and one
// watcher supervisor per execution context.
type pipeline struct {
	feeds       map[ExecutionContext]*client.LocationFeed
	supervisors map[ExecutionContext]*WatcherSupervisor
}

type presenceService struct {
	userRepository     repository.UserRepository
	presenceRepository repository.PresenceRepository
	writer             PresenceWriter
	fanout             NotificationFanout
	permissions        PermissionSource
	broadcastClient    client.BroadcastClient

	pipelineMutex sync.Mutex
	pipelines     map[string]*pipeline
}

func NewPresenceService(
	userRepository repository.UserRepository,
	presenceRepository repository.PresenceRepository,
	writer PresenceWriter,
	fanout NotificationFanout,
	permissions PermissionSource,
	broadcastClient client.BroadcastClient,
) PresenceService {
	return &presenceService{
		userRepository:     userRepository,
		presenceRepository: presenceRepository,
		writer:             writer,
		fanout:             fanout,
		permissions:        permissions,
		broadcastClient:    broadcastClient,
		pipelines:          make(map[string]*pipeline),
	}
}

func (s *presenceService) pipelineFor(userID string) *pipeline {
	s.pipelineMutex.Lock()
	defer s.pipelineMutex.Unlock()

	if existing, ok := s.pipelines[userID]; ok {
		return existing
	}

	p := &pipeline{
		feeds:       make(map[ExecutionContext]*client.LocationFeed),
		supervisors: make(map[ExecutionContext]*WatcherSupervisor),
	}
	for _, execContext := range []ExecutionContext{ContextForeground, ContextBackground} {
		feed := client.NewLocationFeed()
		p.feeds[execContext] = feed
		p.supervisors[execContext] = NewWatcherSupervisor(
			execContext, userID, feed, s.writer, s.permissions, s.presenceRepository,
		)
	}
	s.pipelines[userID] = p
	return p
}

// SetAvailability writes the flag first, so a failure in any later step still
// leaves availability correctly recorded. Turning on starts both context
// watchers (each checks its own permission), fires an immediate snapshot and
// the friend fanout; neither blocks the caller. Turning off stops every
// context and reads no location. Repeating the current value is safe: Start
// absorbs restarts and Stop on a stopped watcher is a no-op.
func (s *presenceService) SetAvailability(ctx context.Context, userID string, available bool, selectedFriendIDs []string) error {
	user, err := s.userRepository.GetByID(userID)
	if err != nil {
		return err
	}

	if err := s.writer.WriteAvailability(ctx, userID, available); err != nil {
		return err
	}

	p := s.pipelineFor(userID)

	if !available {
		p.supervisors[ContextForeground].Stop()
		p.supervisors[ContextBackground].Stop()
		return nil
	}

	p.supervisors[ContextForeground].Start(ctx)
	p.supervisors[ContextBackground].Start(ctx)

	go s.immediateSnapshot(userID, p)
	go s.fanout.Notify(context.Background(), userID, true, user.DisplayName(), selectedFriendIDs)

	return nil
}

// immediateSnapshot persists one location right after turn-on so friends are
// not shown "available, no location" for a whole watch interval. Failure is
// swallowed; the continuous watch will populate location eventually.
func (s *presenceService) immediateSnapshot(userID string, p *pipeline) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	sample, err := p.feeds[ContextForeground].Current(ctx, client.AccuracyBalanced)
	if err != nil {
		logrus.Infof("No immediate location snapshot for user %s: %v", userID, err)
		return
	}

	s.writer.WriteLocation(ctx, userID, sample.Coordinates, sample.SampledAt)
}

// ReportSample feeds a device-reported sample into the user's pipeline for
// the execution context that produced it.
func (s *presenceService) ReportSample(userID string, execContext ExecutionContext, sample client.LocationSample) {
	p := s.pipelineFor(userID)
	feed, ok := p.feeds[execContext]
	if !ok {
		feed = p.feeds[ContextForeground]
	}
	feed.Publish(sample)
}

func (s *presenceService) FriendsPresence(ctx context.Context, userID string) ([]FriendPresence, error) {
	friends, err := s.userRepository.Friends(userID)
	if err != nil {
		return nil, err
	}

	presences := make([]FriendPresence, 0, len(friends))
	for _, friend := range friends {
		presences = append(presences, s.friendPresence(ctx, friend))
	}

	return presences, nil
}

// FriendPresenceByID serves one friend's presence; reading a user outside the
// caller's friend list is refused.
func (s *presenceService) FriendPresenceByID(ctx context.Context, userID, friendID string) (FriendPresence, error) {
	areFriends, err := s.userRepository.AreFriends(userID, friendID)
	if err != nil {
		return FriendPresence{}, err
	}
	if !areFriends {
		return FriendPresence{}, fmt.Errorf("%w: user %s is not a friend of %s", dto.ErrNotAuthorized, friendID, userID)
	}

	friend, err := s.userRepository.GetByID(friendID)
	if err != nil {
		return FriendPresence{}, err
	}

	return s.friendPresence(ctx, friend), nil
}

func (s *presenceService) friendPresence(ctx context.Context, friend model.User) FriendPresence {
	record, err := s.presenceRepository.Get(ctx, friend.ID)
	if err != nil {
		logrus.Errorf("Failed to read presence for friend %s: %v", friend.ID, err)
		record = model.PresenceRecord{UserID: friend.ID}
	}

	// Older records may carry coordinates without a resolved name; serve
	// the fallback now and repair the record in the background.
	if record.Location != nil && record.Location.PlaceName == "" {
		go s.repairPlaceName(friend.ID, *record.Location)
		record.Location.PlaceName = model.UnknownPlaceName
	}

	return FriendPresence{
		UserID:      friend.ID,
		DisplayName: friend.DisplayName(),
		PhoneNumber: friend.PhoneNumber,
		Available:   record.Available,
		Location:    record.Location,
		UpdatedAt:   record.UpdatedAt,
	}
}

// repairPlaceName re-runs the guarded write for the stored coordinates; the
// writer resolves the name and re-checks availability on the way.
func (s *presenceService) repairPlaceName(userID string, location model.PresenceLocation) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	coords := client.Coordinates{Latitude: location.Latitude, Longitude: location.Longitude}
	s.writer.WriteLocation(ctx, userID, coords, location.SampledAt)
}

func (s *presenceService) SubscribeUpdates(id string) (<-chan []byte, error) {
	return s.broadcastClient.Subscribe(id)
}

func (s *presenceService) UnsubscribeUpdates(id string) error {
	return s.broadcastClient.Unsubscribe(id)
}
