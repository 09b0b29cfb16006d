package models

import (
	"time"

	"github.com/cargolink/tracking-system/internal/domain/types"
)

// SimulatedVehicle is a read-only snapshot of one vehicle's traversal state,
// as reported by the simulation ticker.
type SimulatedVehicle struct {
	ID                    string             `json:"id"`
	Status                types.VehicleState `json:"status"`
	TraveledDistanceMeter float64            `json:"traveled_distance_meters"`
	TotalDistanceMeters   float64            `json:"total_distance_meters"`
	HeadingDegrees        float64            `json:"heading_degrees"`
	LastTick              time.Time          `json:"last_tick"`
}
