package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
)

// Client fetches driving routes from an OSRM instance.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// GetRoute queries the OSRM route service and returns the full driving
// geometry between origin and destination.
func (c *Client) GetRoute(ctx context.Context, origin, destination models.Coordinate) (models.RouteGeometry, error) {
	const op = "osrm.Client.GetRoute"

	ctx = wrap.WithAction(ctx, types.ActionRouteFetch)

	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		c.baseURL, origin.Longitude, origin.Latitude, destination.Longitude, destination.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.RouteGeometry{}, wrap.Error(ctx, fmt.Errorf("%s: failed to build request: %w", op, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return models.RouteGeometry{}, wrap.Error(ctx,
			fmt.Errorf("%s: %w: %v", op, types.ErrRoutingBackendUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return models.RouteGeometry{}, wrap.Error(ctx,
			fmt.Errorf("%s: %w: unexpected status %d", op, types.ErrRoutingBackendUnavailable, resp.StatusCode))
	}

	var parsed routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.RouteGeometry{}, wrap.Error(ctx, fmt.Errorf("%s: failed to decode OSRM response: %w", op, err))
	}

	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return models.RouteGeometry{}, types.ErrNoRouteFound
	}

	best := parsed.Routes[0]
	points := make([]models.Coordinate, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		points = append(points, models.Coordinate{Longitude: pair[0], Latitude: pair[1]})
	}

	geometry := models.RouteGeometry{
		Points:          points,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
	}
	if !geometry.Valid() {
		return models.RouteGeometry{}, types.ErrNoRouteFound
	}

	return geometry, nil
}
