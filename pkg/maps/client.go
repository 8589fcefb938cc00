package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/paytaksi/paytaksi-backend/pkg/config"
	pkgerrors "github.com/paytaksi/paytaksi-backend/pkg/errors"
	"github.com/paytaksi/paytaksi-backend/pkg/types"
)

// Place is a resolved address with its coordinates.
type Place struct {
	PlaceID  string
	Address  string
	Location types.LatLng
}

// Geocoder is the lookup surface consumed by the ride services.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Place, error)
	ReverseLookup(ctx context.Context, point types.LatLng) (*Place, error)
	RouteDistanceKm(ctx context.Context, origin, destination types.LatLng) (float64, error)
}

// Client wraps the Google Maps APIs used for address resolution and routing.
type Client struct {
	client   *maps.Client
	region   string
	language string
}

var _ Geocoder = (*Client)(nil)

// NewClient builds the Google Maps client from configuration.
func NewClient(cfg config.GoogleMapsConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}
	client, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &Client{
		client:   client,
		region:   cfg.Region,
		language: cfg.Language,
	}, nil
}

// Geocode resolves a free-form address to coordinates. The first result wins.
func (c *Client) Geocode(ctx context.Context, address string) (*Place, error) {
	if c == nil || c.client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	if strings.TrimSpace(address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	results, err := c.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Region:   c.region,
		Language: c.language,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "geocode request failed")
	}
	if len(results) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no results for address")
	}

	r := results[0]
	return &Place{
		PlaceID: r.PlaceID,
		Address: r.FormattedAddress,
		Location: types.LatLng{
			Lat: r.Geometry.Location.Lat,
			Lng: r.Geometry.Location.Lng,
		},
	}, nil
}

// ReverseLookup resolves coordinates to the closest formatted address.
func (c *Client) ReverseLookup(ctx context.Context, point types.LatLng) (*Place, error) {
	if c == nil || c.client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	if !point.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	results, err := c.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: point.Lat, Lng: point.Lng},
		Language: c.language,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reverse geocode request failed")
	}
	if len(results) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no address for coordinates")
	}

	r := results[0]
	return &Place{
		PlaceID: r.PlaceID,
		Address: r.FormattedAddress,
		Location: types.LatLng{
			Lat: r.Geometry.Location.Lat,
			Lng: r.Geometry.Location.Lng,
		},
	}, nil
}

// RouteDistanceKm returns the driving distance between two points in
// kilometers. Callers fall back to great-circle distance when routing fails.
func (c *Client) RouteDistanceKm(ctx context.Context, origin, destination types.LatLng) (float64, error) {
	if c == nil || c.client == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	if !origin.Valid() || !destination.Valid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}

	routes, _, err := c.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
		Destination: fmt.Sprintf("%f,%f", destination.Lat, destination.Lng),
		Mode:        maps.TravelModeDriving,
		Region:      c.region,
		Language:    c.language,
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "directions request failed")
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "no route between points")
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return float64(meters) / 1000.0, nil
}
