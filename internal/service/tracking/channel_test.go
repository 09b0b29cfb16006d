package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.InitLogger("tracking-test", logger.LevelError)
}

func makeUpdate(vehicleID string, ts int64) models.LocationUpdate {
	return models.LocationUpdate{
		VehicleID:       vehicleID,
		Latitude:        43.238949,
		Longitude:       76.889709,
		TimestampMillis: ts,
	}
}

// flakyStore fails GetLatest a configurable number of times.
type flakyStore struct {
	mu       sync.Mutex
	latest   map[string]models.LocationUpdate
	failures int
	setErr   error
}

func newFlakyStore() *flakyStore {
	return &flakyStore{latest: make(map[string]models.LocationUpdate)}
}

func (s *flakyStore) SetLatest(_ context.Context, update models.LocationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.latest[update.VehicleID] = update
	return nil
}

func (s *flakyStore) GetLatest(_ context.Context, vehicleID string) (models.LocationUpdate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return models.LocationUpdate{}, false, errors.New("store unavailable")
	}
	update, ok := s.latest[vehicleID]
	return update, ok, nil
}

func TestChannelPublishAndSubscribe(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	sub := ch.Subscribe("truck-1")
	defer ch.Unsubscribe(sub)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := ch.Publish(ctx, makeUpdate("truck-1", int64(i*1000))); err != nil {
			t.Fatalf("Publish: unexpected error %v", err)
		}
	}

	for i := 1; i <= 3; i++ {
		select {
		case got := <-sub.Updates():
			if got.TimestampMillis != int64(i*1000) {
				t.Fatalf("update %d: got timestamp %d, want %d", i, got.TimestampMillis, i*1000)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for update %d", i)
		}
	}
}

func TestChannelInvalidUpdateDroppedSilently(t *testing.T) {
	store := newFlakyStore()
	ch := NewChannel(store, 10*time.Millisecond, testLogger(), "test")
	sub := ch.Subscribe("truck-1")
	defer ch.Unsubscribe(sub)

	invalid := makeUpdate("truck-1", 1000)
	invalid.Latitude = 120 // out of range

	if err := ch.Publish(context.Background(), invalid); err != nil {
		t.Fatalf("Publish of invalid update must not error, got %v", err)
	}

	select {
	case got := <-sub.Updates():
		t.Fatalf("invalid update was delivered: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}

	if _, ok, _ := store.GetLatest(context.Background(), "truck-1"); ok {
		t.Fatal("invalid update reached the store")
	}
}

func TestChannelDropsOutOfOrderUpdates(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	sub := ch.Subscribe("truck-1")
	defer ch.Unsubscribe(sub)

	ctx := context.Background()
	if err := ch.Publish(ctx, makeUpdate("truck-1", 5000)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := ch.Publish(ctx, makeUpdate("truck-1", 3000)); err != nil {
		t.Fatalf("Publish of stale update must not error, got %v", err)
	}

	<-sub.Updates()

	select {
	case got := <-sub.Updates():
		t.Fatalf("stale update was delivered: ts=%d", got.TimestampMillis)
	case <-time.After(50 * time.Millisecond):
	}

	latest, err := ch.Latest(ctx, "truck-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.TimestampMillis != 5000 {
		t.Fatalf("Latest timestamp = %d, want 5000", latest.TimestampMillis)
	}
}

func TestChannelNoReplayForLateSubscriber(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		if err := ch.Publish(ctx, makeUpdate("truck-1", int64(i*1000))); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	sub := ch.Subscribe("truck-1")
	defer ch.Unsubscribe(sub)

	select {
	case got := <-sub.Updates():
		t.Fatalf("late subscriber received replayed update: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}

	if err := ch.Publish(ctx, makeUpdate("truck-1", 6000)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case got := <-sub.Updates():
		if got.TimestampMillis != 6000 {
			t.Fatalf("got timestamp %d, want 6000", got.TimestampMillis)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for post-subscribe update")
	}
}

func TestChannelSlowSubscriberFallsBackToPull(t *testing.T) {
	store := newFlakyStore()
	ch := NewChannel(store, 5*time.Millisecond, testLogger(), "test")
	sub := ch.Subscribe("truck-1")
	defer ch.Unsubscribe(sub)

	// Overflow the push buffer without consuming.
	ctx := context.Background()
	for i := 1; i <= subscriptionBuffer+5; i++ {
		if err := ch.Publish(ctx, makeUpdate("truck-1", int64(i*1000))); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	deadline := time.After(time.Second)
	for sub.Transport() != types.TransportPull {
		select {
		case <-deadline:
			t.Fatalf("transport = %s, want %s", sub.Transport(), types.TransportPull)
		case <-time.After(time.Millisecond):
		}
	}

	// Drain the buffered pushes, then the pull loop should keep the
	// subscription fed from the store.
	drained := 0
	for drained < subscriptionBuffer {
		<-sub.Updates()
		drained++
	}

	if err := ch.Publish(ctx, makeUpdate("truck-1", 99000)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// The pull loop may first deliver whatever the store held mid-drain;
	// wait until the newest position comes through.
	deadline = time.After(time.Second)
	for {
		select {
		case got := <-sub.Updates():
			if got.TimestampMillis == 99000 {
				return
			}
		case <-deadline:
			t.Fatal("pull transport never delivered the latest position")
		}
	}
}

func TestChannelPullFailuresExhaustSubscription(t *testing.T) {
	store := newFlakyStore()
	store.failures = 1000
	ch := NewChannel(store, time.Millisecond, testLogger(), "test")
	sub := ch.Subscribe("truck-1")
	defer ch.Unsubscribe(sub)

	sub.fallbackToPull(context.Background(), errors.New("forced"))

	deadline := time.After(time.Second)
	for sub.Status() != types.SubscriptionError {
		select {
		case <-deadline:
			t.Fatalf("status = %s, want %s", sub.Status(), types.SubscriptionError)
		case <-time.After(time.Millisecond):
		}
	}

	if !errors.Is(sub.Err(), types.ErrChannelUnavailable) {
		t.Fatalf("Err() = %v, want %v", sub.Err(), types.ErrChannelUnavailable)
	}
}

func TestChannelUnsubscribeIdempotent(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	sub := ch.Subscribe("truck-1")

	ch.Unsubscribe(sub)
	ch.Unsubscribe(sub)
	ch.Unsubscribe(nil)

	if n := ch.SubscriberCount("truck-1"); n != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", n)
	}

	if err := ch.Publish(context.Background(), makeUpdate("truck-1", 1000)); err != nil {
		t.Fatalf("Publish after unsubscribe: %v", err)
	}
}

func TestChannelMultipleSubscribersPerVehicle(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	a := ch.Subscribe("truck-1")
	b := ch.Subscribe("truck-1")
	defer ch.Unsubscribe(a)
	defer ch.Unsubscribe(b)

	if err := ch.Publish(context.Background(), makeUpdate("truck-1", 1000)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, sub := range []*Subscription{a, b} {
		select {
		case got := <-sub.Updates():
			if got.TimestampMillis != 1000 {
				t.Fatalf("got timestamp %d, want 1000", got.TimestampMillis)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the update")
		}
	}
}

func TestChannelRecentHistory(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")

	ctx := context.Background()
	for i := 1; i <= historyCap+10; i++ {
		if err := ch.Publish(ctx, makeUpdate("truck-1", int64(i*1000))); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	all := ch.Recent("truck-1", 0)
	if len(all) != historyCap {
		t.Fatalf("history length = %d, want %d", len(all), historyCap)
	}
	if all[len(all)-1].TimestampMillis != int64((historyCap+10)*1000) {
		t.Fatalf("newest history entry = %d, want %d",
			all[len(all)-1].TimestampMillis, (historyCap+10)*1000)
	}

	last3 := ch.Recent("truck-1", 3)
	if len(last3) != 3 {
		t.Fatalf("Recent(3) returned %d entries", len(last3))
	}
	for i := 1; i < len(last3); i++ {
		if last3[i].TimestampMillis <= last3[i-1].TimestampMillis {
			t.Fatal("Recent must be ordered oldest first")
		}
	}
}

func TestChannelLatestUnknownVehicle(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")

	_, err := ch.Latest(context.Background(), "ghost")
	if !errors.Is(err, types.ErrVehicleNotFound) {
		t.Fatalf("Latest for unknown vehicle: got %v, want %v", err, types.ErrVehicleNotFound)
	}
}

func TestChannelConcurrentPublishers(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")

	var wg sync.WaitGroup
	ctx := context.Background()
	for v := 0; v < 4; v++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			id := fmt.Sprintf("truck-%d", v)
			for i := 1; i <= 50; i++ {
				_ = ch.Publish(ctx, makeUpdate(id, int64(i*1000)))
			}
		}(v)
	}
	wg.Wait()

	for v := 0; v < 4; v++ {
		id := fmt.Sprintf("truck-%d", v)
		latest, err := ch.Latest(ctx, id)
		if err != nil {
			t.Fatalf("Latest(%s): %v", id, err)
		}
		if latest.TimestampMillis != 50000 {
			t.Fatalf("Latest(%s) timestamp = %d, want 50000", id, latest.TimestampMillis)
		}
	}
}
