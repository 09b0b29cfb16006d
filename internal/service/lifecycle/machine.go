package lifecycle

import (
	"fmt"
	"sync"

	"github.com/cargolink/tracking-system/internal/domain/types"
)

// Machine guards the vehicle lifecycle: only single forward steps along the
// operational chain are legal, plus Cancelled/Failed from any non-terminal
// state. Illegal transitions fail with ErrInvalidTransition and leave the
// state unchanged.
type Machine struct {
	mu    sync.Mutex
	state types.VehicleState
}

// New creates a machine in the Idle state.
func New() *Machine {
	return &Machine{state: types.StateIdle}
}

// NewAt creates a machine in the given state. Used when resuming a shipment
// whose status was persisted mid-lifecycle.
func NewAt(state types.VehicleState) (*Machine, error) {
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: unknown state %q", types.ErrInvalidTransition, state)
	}
	return &Machine{state: state}, nil
}

// Current returns the current state.
func (m *Machine) Current() types.VehicleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CanTransition reports whether a transition from the current state to target
// is legal.
func (m *Machine) CanTransition(target types.VehicleState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return canTransition(m.state, target)
}

// Transition moves the machine to target or fails with ErrInvalidTransition.
func (m *Machine) Transition(target types.VehicleState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !canTransition(m.state, target) {
		return fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, m.state, target)
	}

	m.state = target
	return nil
}

func canTransition(from, to types.VehicleState) bool {
	if from.IsTerminal() {
		return false
	}

	// Exception edges: any non-terminal state may cancel or fail
	if to == types.StateCancelled || to == types.StateFailed {
		return true
	}

	fromIdx := from.LifecycleIndex()
	toIdx := to.LifecycleIndex()
	if fromIdx < 0 || toIdx < 0 {
		return false
	}

	return toIdx == fromIdx+1
}
