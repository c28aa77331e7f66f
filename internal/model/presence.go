package model

import "time"

// PresenceLocation is the optional location block of a presence record.
// PlaceName is never empty; writers fall back to UnknownPlaceName.
type PresenceLocation struct {
	Latitude  float64   `firestore:"latitude" json:"latitude"`
	Longitude float64   `firestore:"longitude" json:"longitude"`
	PlaceName string    `firestore:"placeName" json:"placeName"`
	SampledAt time.Time `firestore:"sampledAt" json:"sampledAt"`
}

// PresenceRecord is the per-user presence document.
// Invariant: Available == false implies Location == nil. Available == true
// with a nil Location means "available, location pending".
type PresenceRecord struct {
	UserID    string            `firestore:"-" json:"userId"`
	Available bool              `firestore:"available" json:"available"`
	Location  *PresenceLocation `firestore:"location" json:"location"`
	UpdatedAt time.Time         `firestore:"updatedAt" json:"updatedAt"`
}

const UnknownPlaceName = "Unknown Location"
