package models

import (
	"time"

	"github.com/cargolink/tracking-system/internal/domain/types"
)

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Valid reports whether the coordinate lies inside the WGS84 envelope.
func (c Coordinate) Valid() bool {
	return c.Longitude >= -180 && c.Longitude <= 180 &&
		c.Latitude >= -90 && c.Latitude <= 90
}

// LocationUpdate is the wire shape for a single position report. Immutable
// once published.
type LocationUpdate struct {
	VehicleID       string  `json:"vehicleId"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	TimestampMillis int64   `json:"timestamp"`
	Heading         float64 `json:"heading,omitempty"`
	Speed           float64 `json:"speed,omitempty"`
	Accuracy        float64 `json:"accuracy,omitempty"`
}

// Validate checks the fields required on every update. An update missing its
// vehicle id or with out-of-range coordinates is dropped by the channel.
func (u LocationUpdate) Validate() error {
	if u.VehicleID == "" {
		return types.ErrInvalidLocationUpdate
	}
	if !(Coordinate{Longitude: u.Longitude, Latitude: u.Latitude}).Valid() {
		return types.ErrInvalidLocationUpdate
	}
	return nil
}

// Position returns the update's coordinate.
func (u LocationUpdate) Position() Coordinate {
	return Coordinate{Longitude: u.Longitude, Latitude: u.Latitude}
}

// Time returns the update timestamp as time.Time.
func (u LocationUpdate) Time() time.Time {
	return time.UnixMilli(u.TimestampMillis)
}

// GeocodeResult is one resolved candidate for a free-text address.
type GeocodeResult struct {
	Position   Coordinate          `json:"position"`
	Confidence float64             `json:"confidence"`
	Method     types.GeocodeMethod `json:"method"`
	Label      string              `json:"label,omitempty"`
}
