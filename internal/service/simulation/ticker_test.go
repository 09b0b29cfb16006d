package simulation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/internal/service/lifecycle"
	"github.com/cargolink/tracking-system/pkg/logger"
)

type collectingPublisher struct {
	mu      sync.Mutex
	updates []models.LocationUpdate
}

func (p *collectingPublisher) Publish(ctx context.Context, update models.LocationUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
	return nil
}

func (p *collectingPublisher) all() []models.LocationUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.LocationUpdate, len(p.updates))
	copy(out, p.updates)
	return out
}

func enRouteMachine(t *testing.T) *lifecycle.Machine {
	t.Helper()
	m, err := lifecycle.NewAt(types.StateEnRoute)
	if err != nil {
		t.Fatalf("NewAt: %v", err)
	}
	return m
}

func tickerLogger() logger.Logger {
	return logger.InitLogger("ticker-test", logger.LevelError)
}

func TestTicker_PublishesUpdatesForEnRouteVehicle(t *testing.T) {
	pub := &collectingPublisher{}
	ticker := NewTicker(5*time.Millisecond, 70, pub, tickerLogger(), "test")

	sim := NewSimulator("V1", straightRoute(100000), DefaultLookaheadMeters)
	ticker.Register(sim, enRouteMachine(t))

	ticker.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	ticker.Stop(context.Background())

	updates := pub.all()
	if len(updates) == 0 {
		t.Fatalf("expected published updates for an EnRoute vehicle")
	}

	var previous int64
	for _, u := range updates {
		if u.VehicleID != "V1" {
			t.Fatalf("unexpected vehicle id %q", u.VehicleID)
		}
		if u.TimestampMillis < previous {
			t.Fatalf("timestamps must be non-decreasing")
		}
		previous = u.TimestampMillis
	}
}

func TestTicker_IgnoresVehiclesNotEnRoute(t *testing.T) {
	pub := &collectingPublisher{}
	ticker := NewTicker(5*time.Millisecond, 70, pub, tickerLogger(), "test")

	machine, err := lifecycle.NewAt(types.StateLoading)
	if err != nil {
		t.Fatalf("NewAt: %v", err)
	}
	sim := NewSimulator("V2", straightRoute(100000), DefaultLookaheadMeters)
	ticker.Register(sim, machine)

	ticker.Start(context.Background())
	time.Sleep(40 * time.Millisecond)
	ticker.Stop(context.Background())

	if updates := pub.all(); len(updates) != 0 {
		t.Fatalf("vehicle outside EnRoute must not move, got %d updates", len(updates))
	}
	if traveled := sim.Snapshot().TraveledDistanceMeter; traveled != 0 {
		t.Fatalf("traveled distance must stay 0, got %f", traveled)
	}
	if ticker.ActiveCount() != 1 {
		t.Fatalf("idle vehicle must stay registered")
	}
}

func TestTicker_ArrivalTransitionsAndDeregisters(t *testing.T) {
	pub := &collectingPublisher{}
	// A tiny route completes on the first tick
	ticker := NewTicker(5*time.Millisecond, 70, pub, tickerLogger(), "test")

	machine := enRouteMachine(t)
	sim := NewSimulator("V3", straightRoute(10), DefaultLookaheadMeters)
	ticker.Register(sim, machine)

	arrived := make(chan string, 1)
	ticker.OnArrival(func(ctx context.Context, vehicleID string) {
		select {
		case arrived <- vehicleID:
		default:
		}
	})

	ticker.Start(context.Background())
	defer ticker.Stop(context.Background())

	select {
	case id := <-arrived:
		if id != "V3" {
			t.Fatalf("unexpected arrival id %q", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("vehicle never arrived")
	}

	if state := machine.Current(); state != types.StateArrivedAtDropoff {
		t.Fatalf("expected ARRIVED_AT_DROPOFF, got %s", state)
	}

	// Deregistration may race the arrival callback by one tick
	deadline := time.Now().Add(time.Second)
	for ticker.ActiveCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("ended vehicle must be deregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTicker_StartIsIdempotent(t *testing.T) {
	pub := &collectingPublisher{}
	ticker := NewTicker(5*time.Millisecond, 70, pub, tickerLogger(), "test")

	ticker.Start(context.Background())
	ticker.Start(context.Background())
	ticker.Start(context.Background())

	ticker.Stop(context.Background())
}

func TestTicker_StopIsIdempotentAndFinal(t *testing.T) {
	pub := &collectingPublisher{}
	ticker := NewTicker(5*time.Millisecond, 70, pub, tickerLogger(), "test")

	sim := NewSimulator("V4", straightRoute(100000), DefaultLookaheadMeters)
	ticker.Register(sim, enRouteMachine(t))

	ticker.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	ticker.Stop(context.Background())
	ticker.Stop(context.Background())

	count := len(pub.all())
	time.Sleep(30 * time.Millisecond)
	if after := len(pub.all()); after != count {
		t.Fatalf("no tick may fire after Stop returns: %d -> %d", count, after)
	}
}

func TestTicker_RestartAfterStop(t *testing.T) {
	pub := &collectingPublisher{}
	ticker := NewTicker(5*time.Millisecond, 70, pub, tickerLogger(), "test")

	sim := NewSimulator("V5", straightRoute(100000), DefaultLookaheadMeters)
	ticker.Register(sim, enRouteMachine(t))

	ticker.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	ticker.Stop(context.Background())

	count := len(pub.all())

	ticker.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	ticker.Stop(context.Background())

	if after := len(pub.all()); after <= count {
		t.Fatalf("restarted ticker must publish again: %d -> %d", count, after)
	}
}
