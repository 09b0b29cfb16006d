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
	// DefaultStaleThreshold is how old the last update's timestamp may get
	// before the session reports its data as stale.
	DefaultStaleThreshold = 30 * time.Second

	// DefaultStaleCheckInterval is how often the session re-evaluates
	// staleness in the background.
	DefaultStaleCheckInterval = 5 * time.Second
)

// Session tracks one vehicle on behalf of one consumer. It owns a channel
// subscription, remembers the freshest update, and reports staleness when
// updates stop arriving.
type Session struct {
	channel        *Channel
	staleThreshold time.Duration
	checkInterval  time.Duration
	log            logger.Logger
	service        string
	now            func() time.Time

	// opMu serializes Subscribe/Unsubscribe so a re-subscribe is atomic
	// from the caller's point of view.
	opMu sync.Mutex

	mu         sync.Mutex
	sub        *Subscription
	vehicleID  string
	lastUpdate *models.LocationUpdate
	wasStale   bool
	stop       chan struct{}
	wg         sync.WaitGroup
	onUpdate   func(models.LocationUpdate)
}

// NewSession creates a tracking session over the given channel.
func NewSession(channel *Channel, staleThreshold time.Duration, log logger.Logger, service string) *Session {
	if staleThreshold <= 0 {
		staleThreshold = DefaultStaleThreshold
	}
	return &Session{
		channel:        channel,
		staleThreshold: staleThreshold,
		checkInterval:  DefaultStaleCheckInterval,
		log:            log,
		service:        service,
		now:            time.Now,
	}
}

// OnUpdate registers a callback fired for every update the session receives.
// Must be set before Subscribe.
func (s *Session) OnUpdate(fn func(models.LocationUpdate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Subscribe starts tracking a vehicle. If the session is already tracking
// one, that subscription is fully torn down before the new one is
// established, so the session never feeds from two vehicles at once.
func (s *Session) Subscribe(ctx context.Context, vehicleID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.teardown()

	sub := s.channel.Subscribe(vehicleID)

	s.mu.Lock()
	s.sub = sub
	s.vehicleID = vehicleID
	s.lastUpdate = nil
	s.wasStale = false
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.wg.Add(2)
	go s.pump(sub, stop)
	go s.staleChecker(vehicleID, stop)

	s.log.Debug(wrap.WithVehicleID(ctx, vehicleID), "tracking session subscribed")
	return nil
}

// Unsubscribe stops tracking. Safe to call when nothing is subscribed.
func (s *Session) Unsubscribe() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.teardown()
}

// teardown must be called with opMu held.
func (s *Session) teardown() {
	s.mu.Lock()
	sub := s.sub
	stop := s.stop
	s.sub = nil
	s.stop = nil
	s.mu.Unlock()

	if sub == nil {
		return
	}

	close(stop)
	s.channel.Unsubscribe(sub)
	s.wg.Wait()
}

// VehicleID returns the vehicle currently tracked, or "".
func (s *Session) VehicleID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vehicleID
}

// GetLatestUpdate returns the freshest update seen by this session.
func (s *Session) GetLatestUpdate() (models.LocationUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpdate == nil {
		return models.LocationUpdate{}, false
	}
	return *s.lastUpdate, true
}

// IsStale reports whether the last update's own timestamp is older than the
// stale threshold. Arrival time does not count: a delayed delivery carrying
// an old position is stale the moment it lands. A session that never
// received an update is stale.
func (s *Session) IsStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isStaleLocked()
}

func (s *Session) isStaleLocked() bool {
	if s.lastUpdate == nil {
		return true
	}
	age := s.now().UnixMilli() - s.lastUpdate.TimestampMillis
	return age > s.staleThreshold.Milliseconds()
}

// Status exposes the underlying subscription status.
func (s *Session) Status() types.SubscriptionStatus {
	s.mu.Lock()
	sub := s.sub
	s.mu.Unlock()
	if sub == nil {
		return types.SubscriptionIdle
	}
	return sub.Status()
}

// pump consumes the subscription stream until unsubscribed.
func (s *Session) pump(sub *Subscription, stop chan struct{}) {
	defer s.wg.Done()

	for {
		select {
		case <-stop:
			return
		case update, ok := <-sub.Updates():
			if !ok {
				return
			}
			s.mu.Lock()
			u := update
			s.lastUpdate = &u
			if s.wasStale && !s.isStaleLocked() {
				s.wasStale = false
				metrics.StaleSessionsGauge.WithLabelValues(s.service).Dec()
			}
			fn := s.onUpdate
			s.mu.Unlock()

			if fn != nil {
				fn(update)
			}
		}
	}
}

// staleChecker periodically flags sessions that stopped receiving updates.
func (s *Session) staleChecker(vehicleID string, stop chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	ctx := wrap.WithAction(wrap.WithVehicleID(context.Background(), vehicleID), types.ActionStalenessCheck)

	for {
		select {
		case <-stop:
			s.mu.Lock()
			if s.wasStale {
				s.wasStale = false
				metrics.StaleSessionsGauge.WithLabelValues(s.service).Dec()
			}
			s.mu.Unlock()
			return
		case <-ticker.C:
			s.mu.Lock()
			stale := s.isStaleLocked()
			transition := stale && !s.wasStale
			if transition {
				s.wasStale = true
			}
			s.mu.Unlock()

			if transition {
				metrics.StaleSessionsGauge.WithLabelValues(s.service).Inc()
				s.log.Warn(ctx, "tracking session went stale",
					"threshold", s.staleThreshold.String())
			}
		}
	}
}
