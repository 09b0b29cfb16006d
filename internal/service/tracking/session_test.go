package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
)

func newTestSession(t *testing.T, ch *Channel) *Session {
	t.Helper()
	s := NewSession(ch, DefaultStaleThreshold, testLogger(), "test")
	s.checkInterval = time.Hour // keep the background checker quiet
	return s
}

func waitForUpdate(t *testing.T, s *Session, wantTS int64) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if got, ok := s.GetLatestUpdate(); ok && got.TimestampMillis == wantTS {
			return
		}
		select {
		case <-deadline:
			got, ok := s.GetLatestUpdate()
			t.Fatalf("session never saw timestamp %d (have %+v, ok=%v)", wantTS, got, ok)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSessionReceivesUpdates(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	s := newTestSession(t, ch)
	defer s.Unsubscribe()

	if err := s.Subscribe(context.Background(), "truck-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := ch.Publish(context.Background(), makeUpdate("truck-1", 1000)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitForUpdate(t, s, 1000)

	got, ok := s.GetLatestUpdate()
	if !ok {
		t.Fatal("GetLatestUpdate returned no update")
	}
	if got.VehicleID != "truck-1" {
		t.Fatalf("VehicleID = %q, want truck-1", got.VehicleID)
	}
}

func TestSessionStaleness(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	s := newTestSession(t, ch)
	defer s.Unsubscribe()

	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := base
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	setNow := func(t time.Time) {
		mu.Lock()
		now = t
		mu.Unlock()
	}

	if err := s.Subscribe(context.Background(), "truck-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if !s.IsStale() {
		t.Fatal("session with no updates must be stale")
	}

	baseMs := base.UnixMilli()
	if err := ch.Publish(context.Background(), makeUpdate("truck-1", baseMs)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitForUpdate(t, s, baseMs)

	setNow(base.Add(29 * time.Second))
	if s.IsStale() {
		t.Fatal("session must be fresh when the update timestamp is 29s old")
	}

	setNow(base.Add(30 * time.Second))
	if s.IsStale() {
		t.Fatal("session must be fresh exactly at the threshold")
	}

	setNow(base.Add(31 * time.Second))
	if !s.IsStale() {
		t.Fatal("session must be stale when the update timestamp is 31s old")
	}

	// An update carrying a current timestamp clears staleness.
	if err := ch.Publish(context.Background(), makeUpdate("truck-1", base.Add(31*time.Second).UnixMilli())); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitForUpdate(t, s, base.Add(31*time.Second).UnixMilli())
	if s.IsStale() {
		t.Fatal("session must be fresh right after a current update")
	}
}

func TestSessionStalenessUsesUpdateTimestamp(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	s := newTestSession(t, ch)
	defer s.Unsubscribe()

	base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return base
	}

	if err := s.Subscribe(context.Background(), "truck-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// A delayed delivery arrives right now but carries a 31s-old position.
	aged := base.Add(-31 * time.Second).UnixMilli()
	if err := ch.Publish(context.Background(), makeUpdate("truck-1", aged)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitForUpdate(t, s, aged)

	if !s.IsStale() {
		t.Fatal("an update with a 31s-old timestamp must leave the session stale")
	}
}

func TestSessionResubscribeSwitchesVehicles(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	s := newTestSession(t, ch)
	defer s.Unsubscribe()

	ctx := context.Background()
	if err := s.Subscribe(ctx, "truck-1"); err != nil {
		t.Fatalf("Subscribe truck-1: %v", err)
	}
	if err := ch.Publish(ctx, makeUpdate("truck-1", 1000)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitForUpdate(t, s, 1000)

	if err := s.Subscribe(ctx, "truck-2"); err != nil {
		t.Fatalf("Subscribe truck-2: %v", err)
	}

	if s.VehicleID() != "truck-2" {
		t.Fatalf("VehicleID = %q, want truck-2", s.VehicleID())
	}
	if n := ch.SubscriberCount("truck-1"); n != 0 {
		t.Fatalf("old subscription still registered: count=%d", n)
	}
	if _, ok := s.GetLatestUpdate(); ok {
		t.Fatal("re-subscribe must reset the last update")
	}

	// Updates for the old vehicle never reach the session.
	if err := ch.Publish(ctx, makeUpdate("truck-1", 2000)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := ch.Publish(ctx, makeUpdate("truck-2", 3000)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitForUpdate(t, s, 3000)

	got, _ := s.GetLatestUpdate()
	if got.VehicleID != "truck-2" {
		t.Fatalf("received update for %q after switching to truck-2", got.VehicleID)
	}
}

func TestSessionUnsubscribeIdempotent(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	s := newTestSession(t, ch)

	s.Unsubscribe() // never subscribed

	if err := s.Subscribe(context.Background(), "truck-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	s.Unsubscribe()
	s.Unsubscribe()

	if n := ch.SubscriberCount("truck-1"); n != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", n)
	}
}

func TestSessionOnUpdateCallback(t *testing.T) {
	ch := NewChannel(NewMemoryStore(), 10*time.Millisecond, testLogger(), "test")
	s := newTestSession(t, ch)
	defer s.Unsubscribe()

	var mu sync.Mutex
	var seen []models.LocationUpdate
	s.OnUpdate(func(u models.LocationUpdate) {
		mu.Lock()
		seen = append(seen, u)
		mu.Unlock()
	})

	ctx := context.Background()
	if err := s.Subscribe(ctx, "truck-1"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if err := ch.Publish(ctx, makeUpdate("truck-1", int64(i*1000))); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	waitForUpdate(t, s, 3000)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 {
		t.Fatalf("callback fired %d times, want 3", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i].TimestampMillis <= seen[i-1].TimestampMillis {
			t.Fatal("callback updates must arrive in timestamp order")
		}
	}
}
