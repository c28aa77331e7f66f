package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/sigapp/backend/internal/dto"
	"github.com/sigapp/backend/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// PresenceRepository is the presence record store. Writes are partial-field
// merges: updating location never disturbs availability and vice versa,
// except that turning availability off also nulls location in the same write
// (available == false implies location == nil).
type PresenceRepository interface {
	Get(ctx context.Context, userID string) (model.PresenceRecord, error)
	SetAvailability(ctx context.Context, userID string, available bool) error
	SetLocation(ctx context.Context, userID string, location model.PresenceLocation) error
	ClearLocation(ctx context.Context, userID string) error
}

const presenceCollection = "presence"

type presence struct {
	firestoreClient *firestore.Client
}

func newPresenceRepository(firestoreClient *firestore.Client) PresenceRepository {
	return &presence{
		firestoreClient: firestoreClient,
	}
}

func (p *presence) doc(userID string) *firestore.DocumentRef {
	return p.firestoreClient.Collection(presenceCollection).Doc(userID)
}

// Get returns a zero record for users who never toggled availability;
// absent document means "off".
func (p *presence) Get(ctx context.Context, userID string) (model.PresenceRecord, error) {
	snapshot, err := p.doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.PresenceRecord{UserID: userID}, nil
		}
		return model.PresenceRecord{}, fmt.Errorf("%w: reading presence for %s: %v", dto.ErrInternalFailure, userID, err)
	}

	var record model.PresenceRecord
	if err := snapshot.DataTo(&record); err != nil {
		return model.PresenceRecord{}, fmt.Errorf("%w: decoding presence for %s: %v", dto.ErrInternalFailure, userID, err)
	}
	record.UserID = userID
	return record, nil
}

func (p *presence) SetAvailability(ctx context.Context, userID string, available bool) error {
	fields := map[string]interface{}{
		"available": available,
		"updatedAt": time.Now().UTC(),
	}
	if !available {
		fields["location"] = nil
	}

	if _, err := p.doc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("%w: writing availability for %s: %v", dto.ErrInternalFailure, userID, err)
	}
	return nil
}

func (p *presence) SetLocation(ctx context.Context, userID string, location model.PresenceLocation) error {
	fields := map[string]interface{}{
		"location": map[string]interface{}{
			"latitude":  location.Latitude,
			"longitude": location.Longitude,
			"placeName": location.PlaceName,
			"sampledAt": location.SampledAt,
		},
		"updatedAt": time.Now().UTC(),
	}

	if _, err := p.doc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("%w: writing location for %s: %v", dto.ErrInternalFailure, userID, err)
	}
	return nil
}

func (p *presence) ClearLocation(ctx context.Context, userID string) error {
	fields := map[string]interface{}{
		"location":  nil,
		"updatedAt": time.Now().UTC(),
	}

	if _, err := p.doc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("%w: clearing location for %s: %v", dto.ErrInternalFailure, userID, err)
	}
	return nil
}
