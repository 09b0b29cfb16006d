package geo

import (
	"math"
	"testing"

	"github.com/cargolink/tracking-system/internal/domain/models"
)

// A route heading roughly east along the equator, ~3.3 km in total.
func testRoute() []models.Coordinate {
	return []models.Coordinate{
		{Longitude: 0.00, Latitude: 0.00},
		{Longitude: 0.01, Latitude: 0.00},
		{Longitude: 0.02, Latitude: 0.001},
		{Longitude: 0.03, Latitude: 0.001},
	}
}

func TestDistanceMeters_KnownValue(t *testing.T) {
	// One degree of longitude on the equator is ~111.19 km
	a := models.Coordinate{Longitude: 0, Latitude: 0}
	b := models.Coordinate{Longitude: 1, Latitude: 0}

	got := DistanceMeters(a, b)
	if math.Abs(got-111195) > 100 {
		t.Fatalf("unexpected equator degree distance: got %.1f m", got)
	}
}

func TestDistanceMeters_ZeroForSamePoint(t *testing.T) {
	p := models.Coordinate{Longitude: 76.9, Latitude: 43.2}
	if d := DistanceMeters(p, p); d != 0 {
		t.Fatalf("distance to self must be 0, got %f", d)
	}
}

func TestBearingDegrees_Range(t *testing.T) {
	pairs := [][2]models.Coordinate{
		{{Longitude: 0, Latitude: 0}, {Longitude: 1, Latitude: 0}},    // east
		{{Longitude: 0, Latitude: 0}, {Longitude: 0, Latitude: 1}},    // north
		{{Longitude: 0, Latitude: 0}, {Longitude: -1, Latitude: 0}},   // west
		{{Longitude: 0, Latitude: 0}, {Longitude: 0, Latitude: -1}},   // south
		{{Longitude: 76.9, Latitude: 43.2}, {Longitude: 71.4, Latitude: 51.1}},
	}

	for _, pair := range pairs {
		b := BearingDegrees(pair[0], pair[1])
		if b < 0 || b >= 360 {
			t.Fatalf("bearing out of range [0,360): %f for %+v", b, pair)
		}
	}
}

func TestBearingDegrees_CardinalDirections(t *testing.T) {
	origin := models.Coordinate{Longitude: 0, Latitude: 0}

	east := BearingDegrees(origin, models.Coordinate{Longitude: 1, Latitude: 0})
	if math.Abs(east-90) > 0.01 {
		t.Errorf("expected ~90 for due east, got %f", east)
	}

	north := BearingDegrees(origin, models.Coordinate{Longitude: 0, Latitude: 1})
	if math.Abs(north-0) > 0.01 {
		t.Errorf("expected ~0 for due north, got %f", north)
	}

	west := BearingDegrees(origin, models.Coordinate{Longitude: -1, Latitude: 0})
	if math.Abs(west-270) > 0.01 {
		t.Errorf("expected ~270 for due west, got %f", west)
	}
}

func TestInterpolate_Boundaries(t *testing.T) {
	route := testRoute()
	total := PathLength(route)

	first, end := Interpolate(route, 0)
	if first != route[0] {
		t.Fatalf("interpolate(0) must return first point, got %+v", first)
	}
	if end {
		t.Fatalf("interpolate(0) must not signal end on a non-empty route")
	}

	last, end := Interpolate(route, total)
	if last != route[len(route)-1] {
		t.Fatalf("interpolate(total) must return last point, got %+v", last)
	}
	if !end {
		t.Fatalf("interpolate(total) must signal end reached")
	}
}

func TestInterpolate_ClampsOutOfRange(t *testing.T) {
	route := testRoute()
	total := PathLength(route)

	p, end := Interpolate(route, total+5000)
	if p != route[len(route)-1] || !end {
		t.Fatalf("over-length distance must clamp to last point with end signal")
	}

	p, end = Interpolate(route, -10)
	if p != route[0] || end {
		t.Fatalf("negative distance must clamp to first point")
	}
}

func TestInterpolate_WaypointTieBreak(t *testing.T) {
	route := testRoute()
	firstSegment := DistanceMeters(route[0], route[1])

	p, _ := Interpolate(route, firstSegment)
	if p != route[1] {
		t.Fatalf("distance landing exactly on a waypoint must return that waypoint, got %+v want %+v", p, route[1])
	}
}

func TestInterpolate_MonotonicDistanceFromStart(t *testing.T) {
	route := testRoute()
	total := PathLength(route)
	start := route[0]

	previous := -1.0
	for d := 0.0; d <= total; d += total / 50 {
		p, _ := Interpolate(route, d)
		fromStart := DistanceMeters(start, p)
		// Allow tiny float slack between successive samples
		if fromStart < previous-1e-6 {
			t.Fatalf("distance from start decreased: %f -> %f at traveled %f", previous, fromStart, d)
		}
		previous = fromStart
	}
}

func TestPathLength_SumsSegments(t *testing.T) {
	route := testRoute()

	var want float64
	for i := 1; i < len(route); i++ {
		want += DistanceMeters(route[i-1], route[i])
	}

	if got := PathLength(route); got != want {
		t.Fatalf("path length mismatch: got %f want %f", got, want)
	}
}

func BenchmarkInterpolate(b *testing.B) {
	route := testRoute()
	total := PathLength(route)

	for b.Loop() {
		_, _ = Interpolate(route, total/2)
	}
}
