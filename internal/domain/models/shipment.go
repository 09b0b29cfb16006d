package models

import (
	"time"

	"github.com/cargolink/tracking-system/internal/domain/types"
)

// Shipment is the slice of the shipment record this subsystem needs: the
// addresses to route between and the lifecycle status. CRUD over the full
// record lives elsewhere.
type Shipment struct {
	ID                 string             `json:"id"`
	VehicleID          string             `json:"vehicle_id"`
	OriginAddress      string             `json:"origin_address"`
	DestinationAddress string             `json:"destination_address"`
	Status             types.VehicleState `json:"status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
