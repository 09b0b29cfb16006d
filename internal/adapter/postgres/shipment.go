package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/pkg/metrics"
)

type ShipmentRepo struct {
	db *pgxpool.Pool
}

func NewShipmentRepo(db *pgxpool.Pool) *ShipmentRepo {
	return &ShipmentRepo{db: db}
}

func (r *ShipmentRepo) GetByID(ctx context.Context, shipmentID string) (models.Shipment, error) {
	var shipment models.Shipment
	query := `
        SELECT id, vehicle_id, origin_address, destination_address, status, created_at, updated_at
        FROM shipments
        WHERE id = $1;`

	err := r.db.QueryRow(ctx, query, shipmentID).Scan(
		&shipment.ID, &shipment.VehicleID,
		&shipment.OriginAddress, &shipment.DestinationAddress,
		&shipment.Status, &shipment.CreatedAt, &shipment.UpdatedAt,
	)
	metrics.RecordDatabaseQuery("tracker", "shipments_select", err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Shipment{}, types.ErrShipmentNotFound
		}
		return models.Shipment{}, fmt.Errorf("shipment repo: GetByID: %w", err)
	}

	return shipment, nil
}

func (r *ShipmentRepo) GetByVehicleID(ctx context.Context, vehicleID string) (*models.Shipment, error) {
	var shipment models.Shipment
	query := `
        SELECT id, vehicle_id, origin_address, destination_address, status, created_at, updated_at
        FROM shipments
        WHERE vehicle_id = $1
        ORDER BY created_at DESC
        LIMIT 1;`

	err := r.db.QueryRow(ctx, query, vehicleID).Scan(
		&shipment.ID, &shipment.VehicleID,
		&shipment.OriginAddress, &shipment.DestinationAddress,
		&shipment.Status, &shipment.CreatedAt, &shipment.UpdatedAt,
	)
	metrics.RecordDatabaseQuery("tracker", "shipments_select", err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("shipment repo: GetByVehicleID: %w", err)
	}

	return &shipment, nil
}

func (r *ShipmentRepo) UpdateStatus(ctx context.Context, shipmentID string, status types.VehicleState) error {
	query := `
        UPDATE shipments
        SET status = $2, updated_at = NOW()
        WHERE id = $1;`

	tag, err := r.db.Exec(ctx, query, shipmentID, status)
	metrics.RecordDatabaseQuery("tracker", "shipments_update", err)
	if err != nil {
		return fmt.Errorf("shipment repo: UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrShipmentNotFound
	}

	return nil
}
