package geocode

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	"github.com/cargolink/tracking-system/pkg/logger"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
)

// Upstream resolves a free-text address into candidate coordinates.
type Upstream interface {
	Resolve(ctx context.Context, address string) ([]models.GeocodeResult, error)
}

type entry struct {
	results   []models.GeocodeResult
	createdAt time.Time
}

// Cache memoizes address resolutions with a TTL. Entries are replaced, never
// mutated in place; a miss blocks for exactly one upstream call.
type Cache struct {
	upstream Upstream
	ttl      time.Duration
	log      logger.Logger

	mu      sync.Mutex
	entries map[string]entry

	now func() time.Time
}

const DefaultTTL = 24 * time.Hour

func NewCache(upstream Upstream, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		upstream: upstream,
		ttl:      ttl,
		log:      log,
		entries:  make(map[string]entry),
		now:      time.Now,
	}
}

// Resolve returns the resolved candidates for address, best match first.
// Within the TTL repeated lookups are served from the cache without touching
// the upstream.
func (c *Cache) Resolve(ctx context.Context, address string) ([]models.GeocodeResult, error) {
	const op = "geocode.Cache.Resolve"

	ctx = wrap.WithAction(ctx, types.ActionGeocodeLookup)

	key := queryKey(address)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.now().Sub(e.createdAt) <= c.ttl {
		results := e.results
		c.mu.Unlock()
		return results, nil
	}
	if ok {
		// Logically deleted: TTL elapsed
		delete(c.entries, key)
	}
	c.mu.Unlock()

	results, err := c.upstream.Resolve(ctx, address)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if len(results) == 0 {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: %q", op, types.ErrAddressNotFound, address))
	}

	c.mu.Lock()
	c.entries[key] = entry{results: results, createdAt: c.now()}
	c.mu.Unlock()

	c.log.Debug(ctx, "address resolved",
		"candidates", len(results),
		"confidence", results[0].Confidence,
		"method", string(results[0].Method),
	)

	return results, nil
}

// Best returns the highest-confidence coordinate for address.
func (c *Cache) Best(ctx context.Context, address string) (models.Coordinate, error) {
	results, err := c.Resolve(ctx, address)
	if err != nil {
		return models.Coordinate{}, err
	}
	return results[0].Position, nil
}

func queryKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
