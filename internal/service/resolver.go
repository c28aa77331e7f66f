package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/model"
	"github.com/sirupsen/logrus"
)

const nearbySearchRadiusMeters = 50

// Place categories considered a meaningful answer to "where is this person".
var allowedPlaceTypes = map[string]bool{
	"university":    true,
	"school":        true,
	"library":       true,
	"hospital":      true,
	"shopping_mall": true,
	"restaurant":    true,
	"cafe":          true,
	"gym":           true,
}

// PlaceResolver turns coordinates into a display name. Resolve is total: it
// sits on the location-update hot path and must never fail the caller, so
// every error degrades to model.UnknownPlaceName.
type PlaceResolver interface {
	Resolve(ctx context.Context, latitude, longitude float64) string
}

type placeResolver struct {
	placesClient client.PlacesClient
	cache        GeocodeCache
}

func NewPlaceResolver(placesClient client.PlacesClient, cache GeocodeCache) PlaceResolver {
	return &placeResolver{
		placesClient: placesClient,
		cache:        cache,
	}
}

func (r *placeResolver) Resolve(ctx context.Context, latitude, longitude float64) (placeName string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logrus.Errorf("Recovered from panic resolving (%f, %f): %v", latitude, longitude, recovered)
			placeName = model.UnknownPlaceName
		}
	}()

	if !validCoordinates(latitude, longitude) {
		logrus.Warnf("Invalid coordinates provided: (%f, %f)", latitude, longitude)
		return model.UnknownPlaceName
	}

	if cached, hit := r.cache.Get(latitude, longitude); hit {
		return cached
	}

	name, resolved := r.fromNearbySearch(ctx, latitude, longitude)
	if !resolved {
		name, resolved = r.fromReverseGeocode(ctx, latitude, longitude)
	}
	if !resolved {
		return model.UnknownPlaceName
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = model.UnknownPlaceName
	}

	r.cache.Put(latitude, longitude, name)
	return name
}

func validCoordinates(latitude, longitude float64) bool {
	return !math.IsNaN(latitude) && !math.IsInf(latitude, 0) &&
		!math.IsNaN(longitude) && !math.IsInf(longitude, 0)
}

// fromNearbySearch prefers places in the allow-list but settles for the
// first named result when nothing better is nearby.
func (r *placeResolver) fromNearbySearch(ctx context.Context, latitude, longitude float64) (string, bool) {
	places, err := r.placesClient.NearbySearch(ctx, latitude, longitude, nearbySearchRadiusMeters)
	if err != nil {
		logrus.Errorf("Nearby search failed for (%f, %f): %v", latitude, longitude, err)
		return "", false
	}
	if len(places) == 0 {
		return "", false
	}

	for _, place := range places {
		if place.Name == "" {
			continue
		}
		for _, placeType := range place.Types {
			if allowedPlaceTypes[placeType] ||
				strings.Contains(placeType, "establishment") ||
				strings.Contains(placeType, "point_of_interest") {
				return place.Name, true
			}
		}
	}

	if places[0].Name != "" {
		return places[0].Name, true
	}
	return "", false
}

// fromReverseGeocode walks the address components of the closest result:
// establishment, street address, neighborhood, locality, then the formatted
// address up to the first comma.
func (r *placeResolver) fromReverseGeocode(ctx context.Context, latitude, longitude float64) (string, bool) {
	results, err := r.placesClient.ReverseGeocode(ctx, latitude, longitude)
	if err != nil {
		logrus.Errorf("Reverse geocode failed for (%f, %f): %v", latitude, longitude, err)
		return "", false
	}
	if len(results) == 0 {
		return "", false
	}

	result := results[0]

	if name := componentByType(result.AddressComponents, "establishment", "point_of_interest"); name != "" {
		return name, true
	}

	streetNumber := componentByType(result.AddressComponents, "street_number")
	streetName := componentByType(result.AddressComponents, "route")
	if streetName != "" {
		return strings.TrimSpace(fmt.Sprintf("%s %s", streetNumber, streetName)), true
	}

	if name := componentByType(result.AddressComponents, "neighborhood"); name != "" {
		return name, true
	}
	if name := componentByType(result.AddressComponents, "locality"); name != "" {
		return name, true
	}

	if result.FormattedAddress != "" {
		return strings.SplitN(result.FormattedAddress, ",", 2)[0], true
	}

	return model.UnknownPlaceName, true
}

func componentByType(components []client.AddressComponent, wanted ...string) string {
	for _, component := range components {
		for _, componentType := range component.Types {
			for _, want := range wanted {
				if componentType == want {
					return component.LongName
				}
			}
		}
	}
	return ""
}
