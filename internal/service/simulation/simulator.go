package simulation

import (
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/service/geo"
)

const (
	// DefaultSpeedKmh is the assumed average travel speed.
	DefaultSpeedKmh = 70.0

	// DefaultLookaheadMeters is how far ahead along the route the heading is
	// computed from.
	DefaultLookaheadMeters = 50.0
)

// KmhToMs converts km/h to m/s.
func KmhToMs(kmh float64) float64 {
	return kmh / 3.6
}

// Simulator owns one vehicle's traversal of a route. It is driven externally
// by the ticker; nothing else mutates the traveled distance.
type Simulator struct {
	vehicleID string
	route     models.RouteGeometry

	// totalMeters is the geometric length of the polyline. The backend's
	// reported distance can differ slightly from the polyline sum, and the
	// traversal has to be consistent with interpolation.
	totalMeters float64

	traveledMeters  float64
	headingDegrees  float64
	lookaheadMeters float64
	ended           bool
	endSignalled    bool
	lastTick        time.Time

	now func() time.Time
}

func NewSimulator(vehicleID string, route models.RouteGeometry, lookaheadMeters float64) *Simulator {
	if lookaheadMeters <= 0 {
		lookaheadMeters = DefaultLookaheadMeters
	}

	s := &Simulator{
		vehicleID:       vehicleID,
		route:           route,
		totalMeters:     geo.PathLength(route.Points),
		lookaheadMeters: lookaheadMeters,
		now:             time.Now,
	}

	// Initial heading faces down the first segment
	if len(route.Points) >= 2 {
		s.headingDegrees = geo.BearingDegrees(route.Points[0], route.Points[1])
	}

	return s
}

// VehicleID returns the id of the simulated vehicle.
func (s *Simulator) VehicleID() string {
	return s.vehicleID
}

// Ended reports whether the route end has been reached.
func (s *Simulator) Ended() bool {
	return s.ended
}

// Advance moves the vehicle forward by deltaSeconds at the given speed and
// returns the resulting location update. The boolean is true exactly once:
// on the tick that first reaches the route end. Calls after that are no-ops
// that keep the traveled distance at the maximum.
func (s *Simulator) Advance(deltaSeconds, speedMetersPerSecond float64) (models.LocationUpdate, bool) {
	if !s.ended {
		delta := speedMetersPerSecond * deltaSeconds
		s.traveledMeters = min(s.traveledMeters+delta, s.totalMeters)
	}

	position, endReached := geo.Interpolate(s.route.Points, s.traveledMeters)
	s.updateHeading(position, endReached)

	s.ended = s.ended || endReached
	s.lastTick = s.now()

	update := models.LocationUpdate{
		VehicleID:       s.vehicleID,
		Latitude:        position.Latitude,
		Longitude:       position.Longitude,
		TimestampMillis: s.lastTick.UnixMilli(),
		Heading:         s.headingDegrees,
		Speed:           speedMetersPerSecond,
	}
	if s.ended {
		update.Speed = 0
	}

	first := endReached && !s.endSignalled
	if first {
		s.endSignalled = true
	}

	return update, first
}

// updateHeading points the vehicle toward a position lookaheadMeters further
// along the route. At the route end the heading is computed looking backward
// instead; on routes shorter than the lookahead the previous heading is kept.
func (s *Simulator) updateHeading(position models.Coordinate, endReached bool) {
	if s.totalMeters < s.lookaheadMeters {
		return
	}

	if endReached {
		behind, _ := geo.Interpolate(s.route.Points, s.totalMeters-s.lookaheadMeters)
		if behind != position {
			s.headingDegrees = geo.BearingDegrees(behind, position)
		}
		return
	}

	ahead, _ := geo.Interpolate(s.route.Points, min(s.traveledMeters+s.lookaheadMeters, s.totalMeters))
	if ahead != position {
		s.headingDegrees = geo.BearingDegrees(position, ahead)
	}
}

// Snapshot returns the current traversal state for reporting.
func (s *Simulator) Snapshot() models.SimulatedVehicle {
	return models.SimulatedVehicle{
		ID:                    s.vehicleID,
		TraveledDistanceMeter: s.traveledMeters,
		TotalDistanceMeters:   s.totalMeters,
		HeadingDegrees:        s.headingDegrees,
		LastTick:              s.lastTick,
	}
}
