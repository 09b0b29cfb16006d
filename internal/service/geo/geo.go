package geo

import (
	"math"

	"github.com/cargolink/tracking-system/internal/domain/models"
)

const EarthRadiusMeters = 6371000.0

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// DistanceMeters calculates the Haversine distance between two geographic points.
func DistanceMeters(a, b models.Coordinate) float64 {
	lat1Rad := degreesToRadians(a.Latitude)
	lon1Rad := degreesToRadians(a.Longitude)
	lat2Rad := degreesToRadians(b.Latitude)
	lon2Rad := degreesToRadians(b.Longitude)

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	h := math.Pow(math.Sin(deltaLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Pow(math.Sin(deltaLon/2), 2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// BearingDegrees returns the initial bearing from a to b, normalized to [0, 360).
func BearingDegrees(a, b models.Coordinate) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)
	deltaLon := degreesToRadians(b.Longitude - a.Longitude)

	y := math.Sin(deltaLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	bearing := math.Atan2(y, x) * 180 / math.Pi

	return math.Mod(bearing+360, 360)
}

// PathLength returns the cumulative Haversine length of the polyline in meters.
func PathLength(points []models.Coordinate) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += DistanceMeters(points[i-1], points[i])
	}
	return total
}

// Interpolate walks the polyline's cumulative per-segment distances and
// returns the point at the requested traveled distance, clamped to
// [0, PathLength]. The second return value signals that the route end has
// been reached. A traveled distance falling exactly on a waypoint returns
// that waypoint, not an interpolated neighbor.
func Interpolate(points []models.Coordinate, traveledMeters float64) (models.Coordinate, bool) {
	switch len(points) {
	case 0:
		return models.Coordinate{}, true
	case 1:
		return points[0], true
	}

	total := PathLength(points)
	if traveledMeters <= 0 {
		return points[0], total == 0
	}
	if traveledMeters >= total {
		return points[len(points)-1], true
	}

	remaining := traveledMeters
	for i := 1; i < len(points); i++ {
		segment := DistanceMeters(points[i-1], points[i])
		if remaining > segment {
			remaining -= segment
			continue
		}

		// Exactly on the far waypoint of this segment
		if remaining == segment {
			return points[i], false
		}

		t := remaining / segment
		return models.Coordinate{
			Longitude: points[i-1].Longitude + (points[i].Longitude-points[i-1].Longitude)*t,
			Latitude:  points[i-1].Latitude + (points[i].Latitude-points[i-1].Latitude)*t,
		}, false
	}

	// Accumulated rounding pushed us past the last segment
	return points[len(points)-1], true
}
