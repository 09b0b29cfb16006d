package gmaps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
)

// Client fetches driving routes from the Google Maps Directions API.
type Client struct {
	client *maps.Client
}

func New(apiKey string) (*Client, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Client{client: client}, nil
}

// GetRoute requests driving directions and decodes the overview polyline
// into a route geometry.
func (c *Client) GetRoute(ctx context.Context, origin, destination models.Coordinate) (models.RouteGeometry, error) {
	const op = "gmaps.Client.GetRoute"

	ctx = wrap.WithAction(ctx, types.ActionRouteFetch)

	r := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude),
		Destination: fmt.Sprintf("%f,%f", destination.Latitude, destination.Longitude),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := c.client.Directions(ctx, r)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return models.RouteGeometry{}, wrap.Error(ctx,
			fmt.Errorf("%s: %w: %v", op, types.ErrRoutingBackendUnavailable, err))
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return models.RouteGeometry{}, types.ErrNoRouteFound
	}

	best := routes[0]

	path, err := best.OverviewPolyline.Decode()
	if err != nil {
		return models.RouteGeometry{}, wrap.Error(ctx,
			fmt.Errorf("%s: failed to decode overview polyline: %w", op, err))
	}

	points := make([]models.Coordinate, 0, len(path))
	for _, p := range path {
		points = append(points, models.Coordinate{Longitude: p.Lng, Latitude: p.Lat})
	}

	var distanceMeters float64
	var durationSeconds float64
	for _, leg := range best.Legs {
		distanceMeters += float64(leg.Distance.Meters)
		durationSeconds += leg.Duration.Seconds()
	}

	geometry := models.RouteGeometry{
		Points:          points,
		DistanceMeters:  distanceMeters,
		DurationSeconds: durationSeconds,
	}
	if !geometry.Valid() {
		return models.RouteGeometry{}, types.ErrNoRouteFound
	}

	return geometry, nil
}
