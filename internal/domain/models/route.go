package models

// RouteGeometry is a routed path between two points. Immutable once fetched;
// owned by the simulator that requested it.
type RouteGeometry struct {
	Points          []Coordinate `json:"points"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
}

// Valid reports whether the geometry is usable for simulation: at least two
// points, positive distance and duration.
func (r RouteGeometry) Valid() bool {
	return len(r.Points) >= 2 && r.DistanceMeters > 0 && r.DurationSeconds > 0
}

// Origin returns the first route point.
func (r RouteGeometry) Origin() Coordinate {
	return r.Points[0]
}

// Destination returns the last route point.
func (r RouteGeometry) Destination() Coordinate {
	return r.Points[len(r.Points)-1]
}
