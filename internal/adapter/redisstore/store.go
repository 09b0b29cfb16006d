package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cargolink/tracking-system/internal/domain/models"
)

// Store keeps the latest position per vehicle in Redis so every service
// instance serves the same snapshot. Entries expire on their own once a
// vehicle stops reporting.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(vehicleID string) string {
	return fmt.Sprintf("vehicle:latest:%s", vehicleID)
}

func (s *Store) SetLatest(ctx context.Context, update models.LocationUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("redis store: marshal update: %w", err)
	}

	if err := s.client.Set(ctx, key(update.VehicleID), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis store: set latest: %w", err)
	}
	return nil
}

func (s *Store) GetLatest(ctx context.Context, vehicleID string) (models.LocationUpdate, bool, error) {
	body, err := s.client.Get(ctx, key(vehicleID)).Bytes()
	if err == redis.Nil {
		return models.LocationUpdate{}, false, nil
	}
	if err != nil {
		return models.LocationUpdate{}, false, fmt.Errorf("redis store: get latest: %w", err)
	}

	var update models.LocationUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return models.LocationUpdate{}, false, fmt.Errorf("redis store: unmarshal update: %w", err)
	}
	return update, true, nil
}
