package types

// VehicleState is the operational lifecycle state of a shipment/vehicle.
type VehicleState string

func (s VehicleState) String() string {
	return string(s)
}

const (
	StateIdle             VehicleState = "IDLE"
	StateAssigned         VehicleState = "ASSIGNED"
	StateAccepted         VehicleState = "ACCEPTED"
	StateArrivedAtPickup  VehicleState = "ARRIVED_AT_PICKUP"
	StateLoading          VehicleState = "LOADING"
	StateLoadingComplete  VehicleState = "LOADING_COMPLETE"
	StateEnRoute          VehicleState = "EN_ROUTE"
	StateArrivedAtDropoff VehicleState = "ARRIVED_AT_DROPOFF"
	StateUnloading        VehicleState = "UNLOADING"
	StateCompleted        VehicleState = "COMPLETED"

	StateCancelled VehicleState = "CANCELLED"
	StateFailed    VehicleState = "FAILED"
)

// lifecycleOrder is the forward chain of operational states. Cancelled and
// Failed sit outside the chain and are reachable from any non-terminal state.
var lifecycleOrder = []VehicleState{
	StateIdle,
	StateAssigned,
	StateAccepted,
	StateArrivedAtPickup,
	StateLoading,
	StateLoadingComplete,
	StateEnRoute,
	StateArrivedAtDropoff,
	StateUnloading,
	StateCompleted,
}

// LifecycleIndex returns the position of s in the forward chain, or -1 for
// states outside the chain (Cancelled, Failed, unknown values).
func (s VehicleState) LifecycleIndex() int {
	for i, state := range lifecycleOrder {
		if state == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether no further transitions are possible from s.
func (s VehicleState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

// IsValid reports whether s is one of the known lifecycle values.
func (s VehicleState) IsValid() bool {
	return s.LifecycleIndex() >= 0 || s == StateCancelled || s == StateFailed
}
