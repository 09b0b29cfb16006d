package simulation

import (
	"context"
	"fmt"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/internal/service/lifecycle"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
)

// Service bootstraps and controls shipment simulations: resolve the shipment's
// addresses, fetch the route, move the lifecycle to EnRoute and hand the
// vehicle to the ticker.
type Service struct {
	repo      ShipmentRepo
	geocoder  Geocoder
	routes    RouteSource
	ticker    *Ticker
	lookahead float64
	log       logger.Logger
}

func NewService(repo ShipmentRepo, geocoder Geocoder, routes RouteSource, ticker *Ticker, lookaheadMeters float64, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		geocoder:  geocoder,
		routes:    routes,
		ticker:    ticker,
		lookahead: lookaheadMeters,
		log:       log,
	}
}

// Start begins simulating the shipment's vehicle. Routing or geocoding
// failures are fatal to this vehicle's simulation but leave every other
// registered vehicle untouched.
func (s *Service) Start(ctx context.Context, shipmentID string) (models.SimulatedVehicle, error) {
	const op = "simulation.Service.Start"

	ctx = wrap.WithShipmentID(wrap.WithAction(ctx, types.ActionSimulationStart), shipmentID)

	shipment, err := s.repo.GetByID(ctx, shipmentID)
	if err != nil {
		return models.SimulatedVehicle{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	ctx = wrap.WithVehicleID(ctx, shipment.VehicleID)

	origin, err := s.geocoder.Best(ctx, shipment.OriginAddress)
	if err != nil {
		return models.SimulatedVehicle{}, wrap.Error(ctx, fmt.Errorf("%s: resolve origin: %w", op, err))
	}
	destination, err := s.geocoder.Best(ctx, shipment.DestinationAddress)
	if err != nil {
		return models.SimulatedVehicle{}, wrap.Error(ctx, fmt.Errorf("%s: resolve destination: %w", op, err))
	}

	geometry, err := s.routes.GetRoute(ctx, origin, destination)
	if err != nil {
		return models.SimulatedVehicle{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	machine, err := lifecycle.NewAt(shipment.Status)
	if err != nil {
		return models.SimulatedVehicle{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	if machine.Current() != types.StateEnRoute {
		if err := machine.Transition(types.StateEnRoute); err != nil {
			return models.SimulatedVehicle{}, wrap.Error(ctx, fmt.Errorf("%s: shipment not ready to depart: %w", op, err))
		}
		if err := s.repo.UpdateStatus(ctx, shipmentID, types.StateEnRoute); err != nil {
			return models.SimulatedVehicle{}, wrap.Error(ctx, fmt.Errorf("%s: persist status: %w", op, err))
		}
	}

	sim := NewSimulator(shipment.VehicleID, geometry, s.lookahead)
	s.ticker.Register(sim, machine)

	s.log.Info(ctx, "shipment simulation started",
		"distance_meters", geometry.DistanceMeters,
		"duration_seconds", geometry.DurationSeconds,
	)

	snap := sim.Snapshot()
	snap.Status = machine.Current()
	return snap, nil
}

// Stop removes the shipment's vehicle from the tick loop. Unknown shipments
// fail with ErrShipmentNotFound.
func (s *Service) Stop(ctx context.Context, shipmentID string) error {
	const op = "simulation.Service.Stop"

	ctx = wrap.WithShipmentID(wrap.WithAction(ctx, types.ActionSimulationStop), shipmentID)

	shipment, err := s.repo.GetByID(ctx, shipmentID)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.ticker.Deregister(shipment.VehicleID)
	s.log.Info(wrap.WithVehicleID(ctx, shipment.VehicleID), "shipment simulation stopped")

	return nil
}

// Transition applies a lifecycle transition to a shipment and persists it.
// For a vehicle registered with the ticker the live machine is used, so the
// tick loop observes the change immediately.
func (s *Service) Transition(ctx context.Context, shipmentID string, target types.VehicleState) error {
	const op = "simulation.Service.Transition"

	ctx = wrap.WithShipmentID(wrap.WithAction(ctx, types.ActionStateTransition), shipmentID)

	shipment, err := s.repo.GetByID(ctx, shipmentID)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	machine, live := s.ticker.Machine(shipment.VehicleID)
	if !live {
		machine, err = lifecycle.NewAt(shipment.Status)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
	}

	if err := machine.Transition(target); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	if err := s.repo.UpdateStatus(ctx, shipmentID, target); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: persist status: %w", op, err))
	}

	s.log.Info(ctx, "shipment status changed", "status", target.String())

	return nil
}

// Vehicle returns the live traversal snapshot for a vehicle id.
func (s *Service) Vehicle(ctx context.Context, vehicleID string) (models.SimulatedVehicle, error) {
	snap, ok := s.ticker.Snapshot(vehicleID)
	if !ok {
		return models.SimulatedVehicle{}, types.ErrVehicleNotFound
	}
	return snap, nil
}
