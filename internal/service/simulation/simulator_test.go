package simulation

import (
	"math"
	"testing"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/service/geo"
)

// straightRoute builds an eastbound route of roughly the requested length
// along the equator.
func straightRoute(meters float64) models.RouteGeometry {
	degrees := meters / 111194.9266
	return models.RouteGeometry{
		Points: []models.Coordinate{
			{Longitude: 0, Latitude: 0},
			{Longitude: degrees / 2, Latitude: 0},
			{Longitude: degrees, Latitude: 0},
		},
		DistanceMeters:  meters,
		DurationSeconds: meters / KmhToMs(DefaultSpeedKmh),
	}
}

func TestAdvance_MovesVehicleForward(t *testing.T) {
	sim := NewSimulator("V1", straightRoute(1000), DefaultLookaheadMeters)

	update, end := sim.Advance(5, 20) // 100 m
	if end {
		t.Fatalf("route end must not be reached after 100 m of 1 km")
	}
	if update.VehicleID != "V1" {
		t.Fatalf("unexpected vehicle id %q", update.VehicleID)
	}
	if update.Longitude <= 0 {
		t.Fatalf("vehicle must have moved east, longitude=%f", update.Longitude)
	}

	snap := sim.Snapshot()
	if math.Abs(snap.TraveledDistanceMeter-100) > 0.001 {
		t.Fatalf("expected ~100 m traveled, got %f", snap.TraveledDistanceMeter)
	}
}

func TestAdvance_HeadingFacesEast(t *testing.T) {
	sim := NewSimulator("V1", straightRoute(1000), DefaultLookaheadMeters)

	update, _ := sim.Advance(5, 20)
	if math.Abs(update.Heading-90) > 1 {
		t.Fatalf("eastbound route must report heading ~90, got %f", update.Heading)
	}
}

func TestAdvance_EndReachedExactlyOnce(t *testing.T) {
	sim := NewSimulator("V1", straightRoute(1000), DefaultLookaheadMeters)

	endSignals := 0
	for i := 0; i < 30; i++ {
		_, end := sim.Advance(5, 20) // 100 m per call
		if end {
			endSignals++
		}
	}

	if endSignals != 1 {
		t.Fatalf("end must be signalled exactly once, got %d", endSignals)
	}
	if !sim.Ended() {
		t.Fatalf("simulator must report ended")
	}
}

func TestAdvance_NoOpAfterEnd(t *testing.T) {
	sim := NewSimulator("V1", straightRoute(500), DefaultLookaheadMeters)

	for !sim.Ended() {
		sim.Advance(5, 20)
	}

	total := sim.Snapshot().TotalDistanceMeters
	update, end := sim.Advance(5, 20)
	if end {
		t.Fatalf("end must not be signalled twice")
	}
	if got := sim.Snapshot().TraveledDistanceMeter; got != total {
		t.Fatalf("traveled distance must stay at maximum, got %f want %f", got, total)
	}
	if update.Speed != 0 {
		t.Fatalf("stopped vehicle must report zero speed, got %f", update.Speed)
	}
}

func TestAdvance_HeadingAtEndLooksBackward(t *testing.T) {
	sim := NewSimulator("V1", straightRoute(1000), DefaultLookaheadMeters)

	var last models.LocationUpdate
	for !sim.Ended() {
		last, _ = sim.Advance(5, 20)
	}

	// The final stretch still runs east, so the backward-looking heading
	// stays ~90.
	if math.Abs(last.Heading-90) > 1 {
		t.Fatalf("expected backward heading ~90 at route end, got %f", last.Heading)
	}
}

func TestAdvance_ShortRouteRetainsHeading(t *testing.T) {
	// Route shorter than the lookahead distance
	route := straightRoute(20)
	sim := NewSimulator("V1", route, DefaultLookaheadMeters)

	initial := geo.BearingDegrees(route.Points[0], route.Points[1])

	update, _ := sim.Advance(1, 5)
	if update.Heading != initial {
		t.Fatalf("short route must retain the previous heading: got %f want %f", update.Heading, initial)
	}
}

func TestAdvance_TimestampsNonDecreasing(t *testing.T) {
	sim := NewSimulator("V1", straightRoute(2000), DefaultLookaheadMeters)

	var previous int64
	for i := 0; i < 10; i++ {
		update, _ := sim.Advance(5, 20)
		if update.TimestampMillis < previous {
			t.Fatalf("timestamps must be non-decreasing: %d after %d", update.TimestampMillis, previous)
		}
		previous = update.TimestampMillis
	}
}

// The documented operational scenario: a 10 km route at 70 km/h with 5 s
// ticks advances ~97 m per tick and completes after roughly 103 ticks.
func TestAdvance_TenKilometerScenario(t *testing.T) {
	sim := NewSimulator("V1", straightRoute(10000), DefaultLookaheadMeters)

	speed := KmhToMs(70) // 19.44 m/s

	first, _ := sim.Advance(5, speed)
	afterFirst := sim.Snapshot().TraveledDistanceMeter
	if math.Abs(afterFirst-97.2) > 1 {
		t.Fatalf("expected ~97 m per tick, got %f", afterFirst)
	}
	_ = first

	ticks := 1
	for !sim.Ended() {
		sim.Advance(5, speed)
		ticks++
		if ticks > 1000 {
			t.Fatalf("simulation never completed")
		}
	}

	if ticks < 100 || ticks > 107 {
		t.Fatalf("expected completion after ~103 ticks, got %d", ticks)
	}
}
