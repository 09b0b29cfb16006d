package simulation

import (
	"context"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
)

// ShipmentRepo is the slice of shipment persistence this subsystem consumes.
type ShipmentRepo interface {
	GetByID(ctx context.Context, shipmentID string) (models.Shipment, error)
	UpdateStatus(ctx context.Context, shipmentID string, status types.VehicleState) error
}

// Geocoder resolves a free-text address into its best coordinate.
type Geocoder interface {
	Best(ctx context.Context, address string) (models.Coordinate, error)
}

// RouteSource fetches a routed path between two coordinates.
type RouteSource interface {
	GetRoute(ctx context.Context, origin, destination models.Coordinate) (models.RouteGeometry, error)
}
