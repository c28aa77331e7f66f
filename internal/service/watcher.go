package service

import (
	"context"
	"sync"
	"time"

	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	watchMinInterval       = 30 * time.Second
	watchMinDistanceMeters = 50
)

// WatcherSupervisor owns at most one live continuous location watch for one
// user in one execution context. The foreground and background contexts are
// two instances of this type, so the stop semantics and the in-flight
// freshness guard are identical in both.
type WatcherSupervisor struct {
	execContext        ExecutionContext
	userID             string
	source             client.LocationSource
	writer             PresenceWriter
	permissions        PermissionSource
	presenceRepository repository.PresenceRepository

	mutex        sync.Mutex
	subscription client.Subscription
}

func NewWatcherSupervisor(
	execContext ExecutionContext,
	userID string,
	source client.LocationSource,
	writer PresenceWriter,
	permissions PermissionSource,
	presenceRepository repository.PresenceRepository,
) *WatcherSupervisor {
	return &WatcherSupervisor{
		execContext:        execContext,
		userID:             userID,
		source:             source,
		writer:             writer,
		permissions:        permissions,
		presenceRepository: presenceRepository,
	}
}

// Start tears down any existing watch first, so a double Start can never
// leave two live subscriptions. The mutex is held across the whole
// teardown-check-subscribe-store sequence: concurrent Starts serialize, and
// the second one always sees (and cancels) the first one's subscription. It
// refuses to start when the location permission is denied or the user is not
// currently available.
func (s *WatcherSupervisor) Start(ctx context.Context) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.subscription != nil {
		// Restart: drop the live watch without clearing location.
		s.subscription.Cancel()
		s.subscription = nil
	}

	if !s.permissions.LocationGranted(ctx, s.userID, s.execContext) {
		logrus.Infof("No %s location permission for user %s, not starting watch", s.execContext, s.userID)
		return false
	}

	record, err := s.presenceRepository.Get(ctx, s.userID)
	if err != nil {
		logrus.Errorf("Availability check failed before starting %s watch for user %s: %v", s.execContext, s.userID, err)
		return false
	}
	if !record.Available {
		logrus.Infof("User %s is not available, not starting %s watch", s.userID, s.execContext)
		return false
	}

	subscription, err := s.source.Watch(client.WatchOptions{
		Accuracy:          client.AccuracyBalanced,
		MinInterval:       watchMinInterval,
		MinDistanceMeters: watchMinDistanceMeters,
	}, s.handleSample)
	if err != nil {
		logrus.Errorf("Failed to start %s watch for user %s: %v", s.execContext, s.userID, err)
		return false
	}

	s.subscription = subscription
	logrus.Infof("Started %s location watch for user %s", s.execContext, s.userID)
	return true
}

// Stop is a no-op when already stopped. Stopping a running watch also clears
// the persisted location, best-effort.
func (s *WatcherSupervisor) Stop() {
	s.mutex.Lock()
	subscription := s.subscription
	s.subscription = nil
	s.mutex.Unlock()

	if subscription == nil {
		return
	}

	subscription.Cancel()
	s.writer.ClearLocation(context.Background(), s.userID)
	logrus.Infof("Stopped %s location watch for user %s", s.execContext, s.userID)
}

func (s *WatcherSupervisor) Running() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.subscription != nil
}

// handleSample runs on every delivered sample. The writer's freshness guard
// catches the case where availability flipped off while this watch was still
// live; the corrective Stop tears the stale watch down.
func (s *WatcherSupervisor) handleSample(sample client.LocationSample) {
	stop := s.writer.WriteLocation(context.Background(), s.userID, sample.Coordinates, sample.SampledAt)
	if stop {
		logrus.Infof("Availability turned off for user %s, stopping stale %s watch", s.userID, s.execContext)
		s.Stop()
	}
}
