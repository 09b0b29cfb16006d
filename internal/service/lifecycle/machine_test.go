package lifecycle

import (
	"errors"
	"testing"

	"github.com/cargolink/tracking-system/internal/domain/types"
)

func TestTransition_FullChain(t *testing.T) {
	m := New()

	chain := []types.VehicleState{
		types.StateAssigned,
		types.StateAccepted,
		types.StateArrivedAtPickup,
		types.StateLoading,
		types.StateLoadingComplete,
		types.StateEnRoute,
		types.StateArrivedAtDropoff,
		types.StateUnloading,
		types.StateCompleted,
	}

	for _, next := range chain {
		if err := m.Transition(next); err != nil {
			t.Fatalf("legal transition %s -> %s failed: %v", m.Current(), next, err)
		}
	}

	if m.Current() != types.StateCompleted {
		t.Fatalf("expected COMPLETED at end of chain, got %s", m.Current())
	}
}

func TestTransition_SkippingStatesFails(t *testing.T) {
	m := New()

	err := m.Transition(types.StateEnRoute)
	if !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("Idle -> EnRoute must fail with ErrInvalidTransition, got %v", err)
	}
	if m.Current() != types.StateIdle {
		t.Fatalf("failed transition must leave state unchanged, got %s", m.Current())
	}
}

func TestTransition_BackwardFails(t *testing.T) {
	m := New()
	if err := m.Transition(types.StateAssigned); err != nil {
		t.Fatalf("setup: %v", err)
	}

	err := m.Transition(types.StateIdle)
	if !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("backward transition must fail, got %v", err)
	}
	if m.Current() != types.StateAssigned {
		t.Fatalf("state changed on failed transition: %s", m.Current())
	}
}

func TestTransition_CancelFromAnyNonTerminal(t *testing.T) {
	states := []types.VehicleState{
		types.StateIdle,
		types.StateAssigned,
		types.StateAccepted,
		types.StateArrivedAtPickup,
		types.StateLoading,
		types.StateLoadingComplete,
		types.StateEnRoute,
		types.StateArrivedAtDropoff,
		types.StateUnloading,
	}

	for _, from := range states {
		m, err := NewAt(from)
		if err != nil {
			t.Fatalf("NewAt(%s): %v", from, err)
		}
		if err := m.Transition(types.StateCancelled); err != nil {
			t.Errorf("%s -> Cancelled must succeed, got %v", from, err)
		}
	}
}

func TestTransition_FailedIsReachableButTerminal(t *testing.T) {
	m, err := NewAt(types.StateEnRoute)
	if err != nil {
		t.Fatalf("NewAt: %v", err)
	}

	if err := m.Transition(types.StateFailed); err != nil {
		t.Fatalf("EnRoute -> Failed must succeed, got %v", err)
	}

	if err := m.Transition(types.StateEnRoute); !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("transitions out of Failed must be rejected, got %v", err)
	}
}

func TestTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, terminal := range []types.VehicleState{types.StateCompleted, types.StateCancelled, types.StateFailed} {
		m, err := NewAt(terminal)
		if err != nil {
			t.Fatalf("NewAt(%s): %v", terminal, err)
		}
		if err := m.Transition(types.StateCancelled); !errors.Is(err, types.ErrInvalidTransition) {
			t.Errorf("transition out of terminal %s must fail, got %v", terminal, err)
		}
	}
}

func TestNewAt_RejectsUnknownState(t *testing.T) {
	if _, err := NewAt(types.VehicleState("TELEPORTING")); err == nil {
		t.Fatalf("unknown state must be rejected")
	}
}
