package dto

import (
	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/pkg/validator"
)

type StatusUpdateReq struct {
	Status *string `json:"status"`
}

func (r *StatusUpdateReq) Validate(v *validator.Validator) {
	if r.Status == nil {
		v.AddError("status", "must be provided")
		return
	}
	v.Check(*r.Status != "", "status", "must not be empty")
	v.Check(types.VehicleState(*r.Status).IsValid(), "status", "must be a known vehicle status")
}

func (r *StatusUpdateReq) ToState() types.VehicleState {
	return types.VehicleState(*r.Status)
}

type LocationResponse struct {
	VehicleID string  `json:"vehicle_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	Heading   float64 `json:"heading,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
}

func FromLocationUpdate(u models.LocationUpdate) LocationResponse {
	return LocationResponse{
		VehicleID: u.VehicleID,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		Timestamp: u.TimestampMillis,
		Heading:   u.Heading,
		Speed:     u.Speed,
	}
}

func FromLocationUpdates(updates []models.LocationUpdate) []LocationResponse {
	out := make([]LocationResponse, 0, len(updates))
	for _, u := range updates {
		out = append(out, FromLocationUpdate(u))
	}
	return out
}
