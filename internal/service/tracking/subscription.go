package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/metrics"
)

const (
	// subscriptionBuffer is the push buffer size. A consumer that falls this
	// far behind is moved to the pull transport.
	subscriptionBuffer = 16

	// maxPullFailures is how many consecutive pull errors exhaust the
	// transport and put the subscription into Error.
	maxPullFailures = 3
)

// Subscription receives updates for a single vehicle. Delivery prefers the
// push transport; when push breaks the subscription degrades to polling the
// snapshot store without surfacing an outage to the consumer.
type Subscription struct {
	vehicleID    string
	store        Store
	pollInterval time.Duration
	log          logger.Logger
	service      string

	updates  chan models.LocationUpdate
	pullStop chan struct{}
	pullOnce sync.Once

	mu            sync.Mutex
	transport     types.Transport
	status        types.SubscriptionStatus
	closed        bool
	lastDelivered int64
	lastUpdate    *models.LocationUpdate
	failure       error
}

func newSubscription(vehicleID string, store Store, pollInterval time.Duration, log logger.Logger, service string) *Subscription {
	return &Subscription{
		vehicleID:    vehicleID,
		store:        store,
		pollInterval: pollInterval,
		log:          log,
		service:      service,
		updates:      make(chan models.LocationUpdate, subscriptionBuffer),
		pullStop:     make(chan struct{}),
		transport:    types.TransportPush,
		status:       types.SubscriptionSubscribing,
	}
}

// VehicleID returns the vehicle this subscription is bound to.
func (s *Subscription) VehicleID() string {
	return s.vehicleID
}

// Updates is the consumer-facing stream. It is closed on unsubscribe.
func (s *Subscription) Updates() <-chan models.LocationUpdate {
	return s.updates
}

// Transport returns the currently active transport.
func (s *Subscription) Transport() types.Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport
}

// Status returns the subscription status.
func (s *Subscription) Status() types.SubscriptionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the failure reason once the subscription is in Error.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// LastUpdate returns the most recently delivered update, if any.
func (s *Subscription) LastUpdate() (models.LocationUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpdate == nil {
		return models.LocationUpdate{}, false
	}
	return *s.lastUpdate, true
}

func (s *Subscription) activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = types.SubscriptionActive
}

// deliver hands an update to the consumer, discarding duplicates and
// out-of-order arrivals by timestamp. Returns false when the consumer buffer
// is full.
func (s *Subscription) deliver(update models.LocationUpdate) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return true
	}
	if update.TimestampMillis <= s.lastDelivered && s.lastDelivered != 0 {
		// Duplicate or stale delivery
		s.mu.Unlock()
		return true
	}

	select {
	case s.updates <- update:
		s.lastDelivered = update.TimestampMillis
		u := update
		s.lastUpdate = &u
		s.mu.Unlock()
		return true
	default:
		s.mu.Unlock()
		return false
	}
}

// pushDeliver is called by the channel's fan-out. A full buffer means the
// push transport cannot keep up and triggers the pull fallback.
func (s *Subscription) pushDeliver(ctx context.Context, update models.LocationUpdate) {
	if s.Transport() != types.TransportPush {
		return
	}

	if !s.deliver(update) {
		s.fallbackToPull(ctx, fmt.Errorf("push buffer full for vehicle %s", s.vehicleID))
	}
}

// fallbackToPull switches the transport to polling. Idempotent: only the
// first call starts the poll loop.
func (s *Subscription) fallbackToPull(ctx context.Context, cause error) {
	s.pullOnce.Do(func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.transport = types.TransportPull
		s.mu.Unlock()

		ctx = wrap.WithAction(wrap.WithVehicleID(ctx, s.vehicleID), types.ActionTransportFallback)
		s.log.Warn(ctx, "push transport degraded, falling back to pull", "cause", cause.Error())
		metrics.TransportFallbacksTotal.WithLabelValues(s.service).Inc()

		go s.pullLoop(context.WithoutCancel(ctx))
	})
}

// pullLoop polls the snapshot store until the subscription is closed or the
// pull transport is exhausted as well.
func (s *Subscription) pullLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	failures := 0

	for {
		select {
		case <-s.pullStop:
			return
		case <-ticker.C:
			update, ok, err := s.store.GetLatest(ctx, s.vehicleID)
			if err != nil {
				failures++
				if failures >= maxPullFailures {
					s.fail(ctx, fmt.Errorf("%w: %v", types.ErrChannelUnavailable, err))
					return
				}
				continue
			}
			failures = 0
			if ok {
				s.deliver(update)
			}
		}
	}
}

// fail marks both transports exhausted.
func (s *Subscription) fail(ctx context.Context, err error) {
	s.mu.Lock()
	s.status = types.SubscriptionError
	s.failure = err
	s.mu.Unlock()

	s.log.Error(wrap.WithVehicleID(ctx, s.vehicleID), "subscription transports exhausted", err)
}

// close tears the subscription down. Safe to call more than once.
func (s *Subscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.status = types.SubscriptionIdle
	close(s.updates)
	s.mu.Unlock()

	close(s.pullStop)
}
