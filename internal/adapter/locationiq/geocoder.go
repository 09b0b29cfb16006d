package locationiq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
)

var domain = "https://us1.locationiq.com"

// Client resolves free-text addresses through the LocationIQ search API.
type Client struct {
	apiKey string
	http   *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Resolve fetches the coordinate candidates for a given address, best match first.
func (c *Client) Resolve(ctx context.Context, address string) ([]models.GeocodeResult, error) {
	const op = "locationiq.Client.Resolve"

	ctx = wrap.WithAction(ctx, types.ActionGeocodeLookup)

	reqURL := fmt.Sprintf("%s/v1/search?key=%s&q=%s&format=json",
		domain, c.apiKey, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to build request: %w", op, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to make request to LocationIQ: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.ErrAddressNotFound
	}
	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", op, resp.StatusCode))
	}

	var raw []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to decode LocationIQ response: %w", op, err))
	}

	if len(raw) == 0 {
		return nil, types.ErrAddressNotFound
	}

	results := make([]models.GeocodeResult, 0, len(raw))
	for _, r := range raw {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to parse latitude: %w", op, err))
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to parse longitude: %w", op, err))
		}

		method := types.GeocodeApproxim
		if r.Importance >= 0.8 {
			method = types.GeocodeExact
		}

		results = append(results, models.GeocodeResult{
			Position:   models.Coordinate{Longitude: lon, Latitude: lat},
			Confidence: r.Importance,
			Method:     method,
			Label:      r.DisplayName,
		})
	}

	return results, nil
}
