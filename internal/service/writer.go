package service

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/model"
	"github.com/sigapp/backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// PresenceUpdate is the broadcast payload delivered to connected clients
// when a user's presence record changes.
type PresenceUpdate struct {
	UserID    string                  `json:"userId"`
	Available bool                    `json:"available"`
	Location  *model.PresenceLocation `json:"location"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// PresenceWriter is the only path that persists presence state. WriteLocation
// re-reads the availability flag immediately before writing: a sample from a
// watcher whose user has meanwhile turned availability off must never
// resurrect location data, so the guard clears location instead and tells the
// caller to tear its watch down.
type PresenceWriter interface {
	WriteLocation(ctx context.Context, userID string, coords client.Coordinates, sampledAt time.Time) (stop bool)
	ClearLocation(ctx context.Context, userID string)
	WriteAvailability(ctx context.Context, userID string, available bool) error
}

type presenceWriter struct {
	presenceRepository repository.PresenceRepository
	resolver           PlaceResolver
	broadcastClient    client.BroadcastClient
}

func NewPresenceWriter(presenceRepository repository.PresenceRepository, resolver PlaceResolver, broadcastClient client.BroadcastClient) PresenceWriter {
	return &presenceWriter{
		presenceRepository: presenceRepository,
		resolver:           resolver,
		broadcastClient:    broadcastClient,
	}
}

func (w *presenceWriter) WriteLocation(ctx context.Context, userID string, coords client.Coordinates, sampledAt time.Time) bool {
	record, err := w.presenceRepository.Get(ctx, userID)
	if err != nil {
		logrus.Errorf("Skipping location sample for user %s, availability re-read failed: %v", userID, err)
		return false
	}

	if !record.Available {
		logrus.Infof("User %s is no longer available, clearing location instead of writing sample", userID)
		w.ClearLocation(ctx, userID)
		return true
	}

	// Resolve never fails; on lookup trouble the sample is still persisted
	// under the fallback name.
	placeName := w.resolver.Resolve(ctx, coords.Latitude, coords.Longitude)

	if sampledAt.IsZero() {
		sampledAt = time.Now().UTC()
	}
	location := model.PresenceLocation{
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		PlaceName: placeName,
		SampledAt: sampledAt,
	}

	if err := w.presenceRepository.SetLocation(ctx, userID, location); err != nil {
		logrus.Errorf("Failed to write location for user %s: %v", userID, err)
		return false
	}

	w.publish(PresenceUpdate{
		UserID:    userID,
		Available: true,
		Location:  &location,
		UpdatedAt: time.Now().UTC(),
	})
	return false
}

func (w *presenceWriter) ClearLocation(ctx context.Context, userID string) {
	if err := w.presenceRepository.ClearLocation(ctx, userID); err != nil {
		logrus.Errorf("Failed to clear location for user %s: %v", userID, err)
		return
	}
}

func (w *presenceWriter) WriteAvailability(ctx context.Context, userID string, available bool) error {
	if err := w.presenceRepository.SetAvailability(ctx, userID, available); err != nil {
		return err
	}

	w.publish(PresenceUpdate{
		UserID:    userID,
		Available: available,
		UpdatedAt: time.Now().UTC(),
	})
	return nil
}

// publish is best-effort; a broken broker never fails a presence write.
func (w *presenceWriter) publish(update PresenceUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		logrus.Errorf("Error marshaling presence update: %v", err)
		return
	}

	if err := w.broadcastClient.Publish(payload); err != nil {
		logrus.Errorf("Error broadcasting presence update: %v", err)
	}
}
