package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cargolink/tracking-system/internal/adapter/http/handler/dto"
	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/validator"
)

type Tracking struct {
	simulations SimulationService
	locations   LocationService
	l           logger.Logger
}

type SimulationService interface {
	Start(ctx context.Context, shipmentID string) (models.SimulatedVehicle, error)
	Stop(ctx context.Context, shipmentID string) error
	Transition(ctx context.Context, shipmentID string, target types.VehicleState) error
	Vehicle(ctx context.Context, vehicleID string) (models.SimulatedVehicle, error)
}

type LocationService interface {
	Latest(ctx context.Context, vehicleID string) (models.LocationUpdate, error)
	Recent(vehicleID string, limit int) []models.LocationUpdate
}

func NewTracking(simulations SimulationService, locations LocationService, l logger.Logger) *Tracking {
	return &Tracking{
		simulations: simulations,
		locations:   locations,
		l:           l,
	}
}

// GetLocation godoc
// @Summary      Latest vehicle location
// @Description  Returns the most recent known position of a vehicle
// @Tags         Vehicles
// @Produce      json
// @Param        vehicle_id  path  string  true  "Vehicle ID"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  map[string]string
// @Router       /vehicles/{vehicle_id}/location [get]
func (h *Tracking) GetLocation(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicle_id")
	ctx := wrap.WithAction(wrap.WithVehicleID(r.Context(), vehicleID), "get_vehicle_location")

	if vehicleID == "" {
		errorResponse(w, http.StatusBadRequest, "vehicle id must be provided")
		return
	}

	update, err := h.locations.Latest(ctx, vehicleID)
	if err != nil {
		h.l.Warn(ctx, "failed to get latest location", "err", err.Error())
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"location": dto.FromLocationUpdate(update)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// GetTrack godoc
// @Summary      Recent vehicle track
// @Description  Returns recent positions of a vehicle, oldest first
// @Tags         Vehicles
// @Produce      json
// @Param        vehicle_id  path   string  true   "Vehicle ID"
// @Param        limit       query  int     false  "Max number of points"
// @Success      200  {array}  dto.LocationResponse
// @Router       /vehicles/{vehicle_id}/track [get]
func (h *Tracking) GetTrack(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicle_id")
	ctx := wrap.WithAction(wrap.WithVehicleID(r.Context(), vehicleID), "get_vehicle_track")

	if vehicleID == "" {
		errorResponse(w, http.StatusBadRequest, "vehicle id must be provided")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	track := h.locations.Recent(vehicleID, limit)

	response := envelope{
		"vehicle_id": vehicleID,
		"track":      dto.FromLocationUpdates(track),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// GetVehicle godoc
// @Summary      Simulation snapshot
// @Description  Returns the traversal state of an actively simulated vehicle
// @Tags         Vehicles
// @Produce      json
// @Param        vehicle_id  path  string  true  "Vehicle ID"
// @Success      200  {object}  models.SimulatedVehicle
// @Failure      404  {object}  map[string]string
// @Router       /vehicles/{vehicle_id} [get]
func (h *Tracking) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicle_id")
	ctx := wrap.WithAction(wrap.WithVehicleID(r.Context(), vehicleID), "get_vehicle")

	if vehicleID == "" {
		errorResponse(w, http.StatusBadRequest, "vehicle id must be provided")
		return
	}

	vehicle, err := h.simulations.Vehicle(ctx, vehicleID)
	if err != nil {
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"vehicle": vehicle}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// StartSimulation godoc
// @Summary      Start shipment simulation
// @Description  Resolves the shipment route and begins emitting simulated positions
// @Tags         Shipments
// @Produce      json
// @Param        shipment_id  path  string  true  "Shipment ID"
// @Success      201  {object}  models.SimulatedVehicle
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /shipments/{shipment_id}/simulation/start [post]
func (h *Tracking) StartSimulation(w http.ResponseWriter, r *http.Request) {
	shipmentID := r.PathValue("shipment_id")
	ctx := wrap.WithAction(wrap.WithShipmentID(r.Context(), shipmentID), types.ActionSimulationStart)

	if shipmentID == "" {
		errorResponse(w, http.StatusBadRequest, "shipment id must be provided")
		return
	}

	vehicle, err := h.simulations.Start(ctx, shipmentID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to start simulation", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"message": "simulation started",
		"vehicle": vehicle,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "simulation started", "vehicle_id", vehicle.ID)
}

// StopSimulation godoc
// @Summary      Stop shipment simulation
// @Tags         Shipments
// @Produce      json
// @Param        shipment_id  path  string  true  "Shipment ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /shipments/{shipment_id}/simulation/stop [post]
func (h *Tracking) StopSimulation(w http.ResponseWriter, r *http.Request) {
	shipmentID := r.PathValue("shipment_id")
	ctx := wrap.WithAction(wrap.WithShipmentID(r.Context(), shipmentID), types.ActionSimulationStop)

	if shipmentID == "" {
		errorResponse(w, http.StatusBadRequest, "shipment id must be provided")
		return
	}

	if err := h.simulations.Stop(ctx, shipmentID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to stop simulation", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"message": "simulation stopped"}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "simulation stopped")
}

// UpdateStatus godoc
// @Summary      Advance shipment status
// @Description  Moves the shipment's vehicle one step through its delivery lifecycle
// @Tags         Shipments
// @Accept       json
// @Produce      json
// @Param        shipment_id  path  string               true  "Shipment ID"
// @Param        request      body  dto.StatusUpdateReq  true  "Target status"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /shipments/{shipment_id}/status [post]
func (h *Tracking) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	shipmentID := r.PathValue("shipment_id")
	ctx := wrap.WithAction(wrap.WithShipmentID(r.Context(), shipmentID), types.ActionStateTransition)

	if shipmentID == "" {
		errorResponse(w, http.StatusBadRequest, "shipment id must be provided")
		return
	}

	var statusReq dto.StatusUpdateReq
	if err := readJSON(w, r, &statusReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	statusReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	target := statusReq.ToState()
	if err := h.simulations.Transition(ctx, shipmentID, target); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to transition shipment status", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"message": "status updated",
		"status":  target,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "shipment status updated", "status", target)
}
