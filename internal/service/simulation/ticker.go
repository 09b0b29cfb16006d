package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/internal/service/lifecycle"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/metrics"
)

// DefaultTickInterval is how often registered vehicles are advanced.
const DefaultTickInterval = 5 * time.Second

// Publisher receives the location update produced on each tick.
type Publisher interface {
	Publish(ctx context.Context, update models.LocationUpdate) error
}

type vehicleEntry struct {
	sim     *Simulator
	machine *lifecycle.Machine
}

// Ticker drives every registered vehicle from a single repeating timer.
// Vehicles share one tick rather than owning one timer each.
type Ticker struct {
	interval  time.Duration
	speedMS   float64
	publisher Publisher
	onArrival func(ctx context.Context, vehicleID string)
	log       logger.Logger
	service   string

	mu       sync.Mutex
	vehicles map[string]*vehicleEntry
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewTicker(interval time.Duration, speedKmh float64, publisher Publisher, log logger.Logger, service string) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}

	return &Ticker{
		interval:  interval,
		speedMS:   KmhToMs(speedKmh),
		publisher: publisher,
		log:       log,
		service:   service,
		vehicles:  make(map[string]*vehicleEntry),
	}
}

// OnArrival sets a callback invoked after a vehicle reaches its route end and
// its state machine has moved to ArrivedAtDropoff.
func (t *Ticker) OnArrival(fn func(ctx context.Context, vehicleID string)) {
	t.onArrival = fn
}

// Register adds a vehicle to the tick loop. Registering an id twice replaces
// the previous simulator.
func (t *Ticker) Register(sim *Simulator, machine *lifecycle.Machine) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.vehicles[sim.VehicleID()] = &vehicleEntry{sim: sim, machine: machine}
	metrics.ActiveSimulationsGauge.WithLabelValues(t.service).Set(float64(len(t.vehicles)))
}

// Deregister removes a vehicle from future ticks. Safe to call for unknown ids.
func (t *Ticker) Deregister(vehicleID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.vehicles, vehicleID)
	metrics.ActiveSimulationsGauge.WithLabelValues(t.service).Set(float64(len(t.vehicles)))
}

// Machine returns the state machine of a registered vehicle.
func (t *Ticker) Machine(vehicleID string) (*lifecycle.Machine, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.vehicles[vehicleID]
	if !ok {
		return nil, false
	}
	return entry.machine, true
}

// Snapshot returns the traversal state of a registered vehicle.
func (t *Ticker) Snapshot(vehicleID string) (models.SimulatedVehicle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.vehicles[vehicleID]
	if !ok {
		return models.SimulatedVehicle{}, false
	}

	snap := entry.sim.Snapshot()
	snap.Status = entry.machine.Current()
	return snap, true
}

// ActiveCount returns the number of registered vehicles.
func (t *Ticker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.vehicles)
}

// Start launches the tick loop. Calling Start on a running ticker is a no-op:
// there is never more than one timer.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	stopCh := t.stopCh
	t.mu.Unlock()

	t.log.Info(wrap.WithAction(ctx, types.ActionSimulationStart), "simulation ticker started",
		"interval", t.interval.String(),
		"speed_ms", t.speedMS,
	)

	t.wg.Add(1)
	go t.run(ctx, stopCh)
}

func (t *Ticker) run(ctx context.Context, stopCh chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// Stop halts the loop and releases the timer. An in-flight tick completes
// before Stop returns; no tick fires afterwards. Idempotent.
func (t *Ticker) Stop(ctx context.Context) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stopCh)
	t.mu.Unlock()

	t.wg.Wait()

	t.log.Info(wrap.WithAction(ctx, types.ActionSimulationStop), "simulation ticker stopped")
}

func (t *Ticker) tick(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionSimulationTick)

	metrics.SimulationTicksTotal.WithLabelValues(t.service).Inc()

	// Copy entries under the lock, advance outside it
	t.mu.Lock()
	entries := make([]*vehicleEntry, 0, len(t.vehicles))
	for _, e := range t.vehicles {
		entries = append(entries, e)
	}
	t.mu.Unlock()

	deltaSeconds := t.interval.Seconds()

	for _, entry := range entries {
		vehicleID := entry.sim.VehicleID()
		vctx := wrap.WithVehicleID(ctx, vehicleID)

		// A second tick for an already-ended vehicle is a no-op
		if entry.sim.Ended() {
			t.Deregister(vehicleID)
			continue
		}

		// Ticks outside EnRoute are accepted but do not move the vehicle
		if state := entry.machine.Current(); state != types.StateEnRoute {
			t.log.Debug(vctx, "tick ignored: vehicle not en route", "state", state.String())
			continue
		}

		update, endReached := entry.sim.Advance(deltaSeconds, t.speedMS)

		if err := t.publisher.Publish(vctx, update); err != nil {
			// A broken channel must not take the whole tick loop down
			t.log.Error(vctx, "failed to publish location update", err)
		}

		if endReached {
			t.finishRoute(vctx, entry, vehicleID)
		}
	}
}

func (t *Ticker) finishRoute(ctx context.Context, entry *vehicleEntry, vehicleID string) {
	ctx = wrap.WithAction(ctx, types.ActionStateTransition)

	if err := entry.machine.Transition(types.StateArrivedAtDropoff); err != nil {
		t.log.Error(ctx, "failed to transition vehicle to arrived", err)
	} else {
		t.log.Info(ctx, "vehicle reached route end", "state", types.StateArrivedAtDropoff.String())
	}

	metrics.RoutesCompletedTotal.WithLabelValues(t.service).Inc()

	if t.onArrival != nil {
		t.onArrival(ctx, vehicleID)
	}

	t.Deregister(vehicleID)
}
