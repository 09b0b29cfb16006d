package tracking

import (
	"context"
	"sync"

	"github.com/cargolink/tracking-system/internal/domain/models"
)

// Store holds the latest published update per vehicle. Publishers overwrite,
// subscribers read; nothing else mutates the snapshot.
type Store interface {
	SetLatest(ctx context.Context, update models.LocationUpdate) error
	GetLatest(ctx context.Context, vehicleID string) (models.LocationUpdate, bool, error)
}

// MemoryStore is the in-process Store used when no external snapshot store is
// configured.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[string]models.LocationUpdate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		latest: make(map[string]models.LocationUpdate),
	}
}

func (s *MemoryStore) SetLatest(ctx context.Context, update models.LocationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[update.VehicleID] = update
	return nil
}

func (s *MemoryStore) GetLatest(ctx context.Context, vehicleID string) (models.LocationUpdate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	update, ok := s.latest[vehicleID]
	return update, ok, nil
}
