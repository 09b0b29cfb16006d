package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/metrics"
)

const (
	// DefaultPollInterval is how often a pull subscription polls the
	// snapshot store.
	DefaultPollInterval = 5 * time.Second

	// historyCap bounds the per-vehicle update history kept for the
	// track endpoint.
	historyCap = 32
)

// Channel fans location updates out to subscribers. Publishing never fails
// toward the producer: invalid or out-of-order updates are dropped and
// logged, and a slow subscriber degrades on its own without affecting the
// rest.
type Channel struct {
	store        Store
	pollInterval time.Duration
	log          logger.Logger
	service      string

	mu      sync.Mutex
	subs    map[string]map[*Subscription]struct{}
	lastTS  map[string]int64
	history map[string][]models.LocationUpdate
}

// NewChannel creates a channel backed by the given snapshot store.
func NewChannel(store Store, pollInterval time.Duration, log logger.Logger, service string) *Channel {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Channel{
		store:        store,
		pollInterval: pollInterval,
		log:          log,
		service:      service,
		subs:         make(map[string]map[*Subscription]struct{}),
		lastTS:       make(map[string]int64),
		history:      make(map[string][]models.LocationUpdate),
	}
}

// Publish distributes an update to every subscriber of its vehicle. Bad
// updates are dropped here so the simulation loop never sees a delivery
// error.
func (c *Channel) Publish(ctx context.Context, update models.LocationUpdate) error {
	ctx = wrap.WithAction(wrap.WithVehicleID(ctx, update.VehicleID), types.ActionPublishUpdate)

	if err := update.Validate(); err != nil {
		c.log.Warn(ctx, "dropping invalid location update", "reason", err.Error())
		metrics.UpdatesDroppedTotal.WithLabelValues(c.service, "invalid").Inc()
		return nil
	}

	c.mu.Lock()
	if last, ok := c.lastTS[update.VehicleID]; ok && update.TimestampMillis < last {
		c.mu.Unlock()
		c.log.Debug(ctx, "dropping out-of-order location update",
			"update_ts", update.TimestampMillis, "last_ts", last)
		metrics.UpdatesDroppedTotal.WithLabelValues(c.service, "out_of_order").Inc()
		return nil
	}
	c.lastTS[update.VehicleID] = update.TimestampMillis

	h := append(c.history[update.VehicleID], update)
	if len(h) > historyCap {
		h = h[len(h)-historyCap:]
	}
	c.history[update.VehicleID] = h

	targets := make([]*Subscription, 0, len(c.subs[update.VehicleID]))
	for sub := range c.subs[update.VehicleID] {
		targets = append(targets, sub)
	}
	c.mu.Unlock()

	if err := c.store.SetLatest(ctx, update); err != nil {
		// Pull subscribers see a gap until the store recovers; push
		// delivery still proceeds.
		c.log.Error(ctx, "failed to persist latest position", err)
	}

	for _, sub := range targets {
		sub.pushDeliver(ctx, update)
	}

	metrics.UpdatesPublishedTotal.WithLabelValues(c.service, "ok").Inc()
	return nil
}

// Subscribe registers a new subscription for a vehicle. The subscription
// receives updates published after this call; nothing is replayed.
func (c *Channel) Subscribe(vehicleID string) *Subscription {
	sub := newSubscription(vehicleID, c.store, c.pollInterval, c.log, c.service)

	c.mu.Lock()
	if c.subs[vehicleID] == nil {
		c.subs[vehicleID] = make(map[*Subscription]struct{})
	}
	c.subs[vehicleID][sub] = struct{}{}
	c.mu.Unlock()

	sub.activate()
	metrics.ActiveSubscriptionsGauge.WithLabelValues(c.service, string(types.TransportPush)).Inc()
	return sub
}

// Unsubscribe removes and closes a subscription. Idempotent.
func (c *Channel) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	c.mu.Lock()
	set, ok := c.subs[sub.vehicleID]
	if ok {
		if _, present := set[sub]; !present {
			ok = false
		} else {
			delete(set, sub)
			if len(set) == 0 {
				delete(c.subs, sub.vehicleID)
			}
		}
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	sub.close()
	metrics.ActiveSubscriptionsGauge.WithLabelValues(c.service, string(types.TransportPush)).Dec()
}

// Latest returns the most recent known position of a vehicle.
func (c *Channel) Latest(ctx context.Context, vehicleID string) (models.LocationUpdate, error) {
	update, ok, err := c.store.GetLatest(ctx, vehicleID)
	if err != nil {
		return models.LocationUpdate{}, err
	}
	if !ok {
		return models.LocationUpdate{}, types.ErrVehicleNotFound
	}
	return update, nil
}

// Recent returns up to limit recent updates for a vehicle, oldest first.
func (c *Channel) Recent(vehicleID string, limit int) []models.LocationUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.history[vehicleID]
	if limit <= 0 || limit > len(h) {
		limit = len(h)
	}
	out := make([]models.LocationUpdate, limit)
	copy(out, h[len(h)-limit:])
	return out
}

// SubscriberCount reports how many subscriptions a vehicle has.
func (c *Channel) SubscriberCount(vehicleID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs[vehicleID])
}
