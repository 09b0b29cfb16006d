package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cargolink/tracking-system/internal/domain/models"
)

func makeTestUpdate(vehicleID string, ts int64) models.LocationUpdate {
	return models.LocationUpdate{
		VehicleID:       vehicleID,
		Latitude:        40.7128,
		Longitude:       -74.0060,
		TimestampMillis: ts,
		Heading:         90,
		Speed:           19.4,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	redisAddr := os.Getenv("TRACKER_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("TRACKER_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	store := New(rdb, time.Minute)
	ctx := context.Background()

	vehicleID := fmt.Sprintf("truck_test_%d", time.Now().UnixNano())

	if _, ok, err := store.GetLatest(ctx, vehicleID); err != nil {
		t.Fatalf("GetLatest on empty key: %v", err)
	} else if ok {
		t.Fatal("GetLatest on empty key reported a position")
	}

	update := makeTestUpdate(vehicleID, time.Now().UnixMilli())
	if err := store.SetLatest(ctx, update); err != nil {
		t.Fatalf("SetLatest: %v", err)
	}

	got, ok, err := store.GetLatest(ctx, vehicleID)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if !ok {
		t.Fatal("GetLatest did not find the stored position")
	}
	if got != update {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, update)
	}
}
