package route

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
)

// Backend resolves a routed path between two coordinates. Implementations
// return types.ErrNoRouteFound when the backend answers with zero routes and
// wrap transport failures in types.ErrRoutingBackendUnavailable.
type Backend interface {
	GetRoute(ctx context.Context, origin, destination models.Coordinate) (models.RouteGeometry, error)
}

type cacheEntry struct {
	geometry  models.RouteGeometry
	createdAt time.Time
}

// Provider fetches route geometries through a Backend and caches successful
// results keyed by coordinate pair. A zero TTL means entries live for the
// process lifetime: routes between fixed points rarely change mid-simulation.
type Provider struct {
	backend Backend
	ttl     time.Duration
	log     logger.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry

	now func() time.Time
}

func NewProvider(backend Backend, ttl time.Duration, log logger.Logger) *Provider {
	return &Provider{
		backend: backend,
		ttl:     ttl,
		log:     log,
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetRoute returns the routed path from origin to destination. Cache hits are
// served synchronously; a miss makes exactly one backend call. Failed calls
// are never cached.
func (p *Provider) GetRoute(ctx context.Context, origin, destination models.Coordinate) (models.RouteGeometry, error) {
	const op = "route.Provider.GetRoute"

	ctx = wrap.WithAction(ctx, types.ActionRouteFetch)

	key := pairKey(origin, destination)

	p.mu.Lock()
	entry, ok := p.cache[key]
	if ok && !p.expired(entry) {
		p.mu.Unlock()
		return entry.geometry, nil
	}
	if ok {
		// Entry outlived its TTL: drop it before going upstream
		delete(p.cache, key)
	}
	p.mu.Unlock()

	geometry, err := p.backend.GetRoute(ctx, origin, destination)
	if err != nil {
		return models.RouteGeometry{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	if !geometry.Valid() {
		return models.RouteGeometry{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrNoRouteFound))
	}

	p.mu.Lock()
	p.cache[key] = cacheEntry{geometry: geometry, createdAt: p.now()}
	p.mu.Unlock()

	p.log.Debug(ctx, "route fetched",
		"points", len(geometry.Points),
		"distance_meters", geometry.DistanceMeters,
		"duration_seconds", geometry.DurationSeconds,
	)

	return geometry, nil
}

func (p *Provider) expired(entry cacheEntry) bool {
	if p.ttl <= 0 {
		return false
	}
	return p.now().Sub(entry.createdAt) > p.ttl
}

func pairKey(origin, destination models.Coordinate) string {
	return fmt.Sprintf("%.6f,%.6f;%.6f,%.6f",
		origin.Longitude, origin.Latitude,
		destination.Longitude, destination.Latitude,
	)
}
