package types

import "errors"

var (
	ErrNoRouteFound              = errors.New("no route found between origin and destination")
	ErrRoutingBackendUnavailable = errors.New("routing backend unavailable")
	ErrInvalidTransition         = errors.New("invalid vehicle state transition")
	ErrChannelUnavailable        = errors.New("update channel unavailable: push and pull transports exhausted")
	ErrInvalidLocationUpdate     = errors.New("invalid location update")

	ErrShipmentNotFound = errors.New("shipment not found")
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrAddressNotFound  = errors.New("address could not be resolved")
	ErrNotFound         = errors.New("requested item not found")
)
