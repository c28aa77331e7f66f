package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/sigapp/backend/internal/dto"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Place is one named result from a nearby search.
type Place struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

// AddressComponent is one structured component of a reverse-geocode result.
type AddressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// GeocodeResult is one reverse-geocode result.
type GeocodeResult struct {
	AddressComponents []AddressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

// PlacesClient is the outbound place-lookup surface. Both calls distinguish
// "zero results" (empty slice, nil error) from transport/service errors.
type PlacesClient interface {
	NearbySearch(ctx context.Context, latitude, longitude float64, radiusMeters int) ([]Place, error)
	ReverseGeocode(ctx context.Context, latitude, longitude float64) ([]GeocodeResult, error)
}

type googlePlacesClient struct {
	httpClient     *http.Client
	apiKey         string
	placesBaseURL  string
	geocodeBaseURL string
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[[]byte]
}

func NewGooglePlacesClient(cfg dto.Config) PlacesClient {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "places",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &googlePlacesClient{
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		apiKey:         cfg.PlacesAPIKey,
		placesBaseURL:  cfg.PlacesBaseURL,
		geocodeBaseURL: cfg.GeocodeBaseURL,
		limiter:        rate.NewLimiter(rate.Limit(cfg.PlacesRatePerSec), 1),
		breaker:        breaker,
	}
}

type nearbySearchResponse struct {
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
	Results      []Place `json:"results"`
}

func (c *googlePlacesClient) NearbySearch(ctx context.Context, latitude, longitude float64, radiusMeters int) ([]Place, error) {
	query := url.Values{}
	query.Set("location", fmt.Sprintf("%f,%f", latitude, longitude))
	query.Set("radius", fmt.Sprintf("%d", radiusMeters))
	query.Set("type", "establishment")
	query.Set("key", c.apiKey)

	body, err := c.get(ctx, fmt.Sprintf("%s/nearbysearch/json?%s", c.placesBaseURL, query.Encode()))
	if err != nil {
		return nil, err
	}

	var response nearbySearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: decoding nearby search response: %v", dto.ErrInternalFailure, err)
	}

	switch response.Status {
	case "OK":
		return response.Results, nil
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: nearby search status %s: %s", dto.ErrInternalFailure, response.Status, response.ErrorMessage)
	}
}

type reverseGeocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []GeocodeResult `json:"results"`
}

func (c *googlePlacesClient) ReverseGeocode(ctx context.Context, latitude, longitude float64) ([]GeocodeResult, error) {
	query := url.Values{}
	query.Set("latlng", fmt.Sprintf("%f,%f", latitude, longitude))
	query.Set("key", c.apiKey)

	body, err := c.get(ctx, fmt.Sprintf("%s/json?%s", c.geocodeBaseURL, query.Encode()))
	if err != nil {
		return nil, err
	}

	var response reverseGeocodeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: decoding geocode response: %v", dto.ErrInternalFailure, err)
	}

	switch response.Status {
	case "OK":
		return response.Results, nil
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: reverse geocode status %s: %s", dto.ErrInternalFailure, response.Status, response.ErrorMessage)
	}
}

// get runs a rate-limited, breaker-guarded GET and returns the raw body.
func (c *googlePlacesClient) get(ctx context.Context, requestURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}

	return c.breaker.Execute(func() ([]byte, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
		}

		response, err := c.httpClient.Do(request)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: unexpected status %d", dto.ErrInternalFailure, response.StatusCode)
		}

		return io.ReadAll(response.Body)
	})
}
