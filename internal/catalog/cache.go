// Package catalog fetches the purchasable-item lists (rides and ticket
// tiers) from the park API exactly once per cache lifetime, falling back to
// built-in sample data when the API is unreachable.
package catalog

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/wonderpark/storefront/internal/domain"
	"github.com/wonderpark/storefront/internal/parkapi"
	"github.com/wonderpark/storefront/pkg/logger"
	"github.com/wonderpark/storefront/pkg/telemetry"
)

// Cache holds both catalogs. It issues one fetch on EnsureLoaded and is
// immutable afterwards; there is no retry loop - a fresh Cache is a fresh
// attempt.
type Cache struct {
	mu          sync.Mutex
	api         parkapi.Client
	log         *logger.Logger
	loaded      bool
	rides       []domain.Ride
	tiers       []domain.TicketTier
	unavailable bool
}

// NewCache creates an unloaded Cache.
func NewCache(api parkapi.Client, log *logger.Logger) *Cache {
	return &Cache{api: api, log: log}
}

// EnsureLoaded performs the one-time fetch. A failed fetch installs the
// fallback catalogs and marks the cache unavailable instead of leaving it
// empty; a successful fetch adopts the remote lists verbatim and clears the
// flag. Subsequent calls are no-ops.
func (c *Cache) EnsureLoaded(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return
	}
	c.loaded = true

	ctx, span := telemetry.StartSpan(ctx, "catalog.load")
	defer span.End()

	rides, ridesErr := c.api.ListRides(ctx)
	tiers, tiersErr := c.api.ListTicketTypes(ctx)

	if ridesErr != nil || tiersErr != nil {
		c.rides = FallbackRides()
		c.tiers = FallbackTicketTiers()
		c.unavailable = true
		if ridesErr != nil {
			c.log.Warn("ride catalog fetch failed, serving sample data", zap.Error(ridesErr))
			span.RecordError(ridesErr)
		}
		if tiersErr != nil {
			c.log.Warn("ticket tier fetch failed, serving sample data", zap.Error(tiersErr))
			span.RecordError(tiersErr)
		}
		span.SetStatus(codes.Error, domain.ErrCatalogUnavailable.Error())
		return
	}

	c.rides = rides
	c.tiers = tiers
	c.unavailable = false
	span.SetAttributes(
		attribute.Int("rides", len(rides)),
		attribute.Int("tiers", len(tiers)),
	)
	span.SetStatus(codes.Ok, "")
}

// Rides returns the ride catalog, active rides only, in catalog order.
func (c *Cache) Rides() []domain.Ride {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Ride, 0, len(c.rides))
	for _, r := range c.rides {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// TicketTiers returns the tier catalog in catalog order.
func (c *Cache) TicketTiers() []domain.TicketTier {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.TicketTier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// RideByID looks up a ride. The second result is false for unknown ids.
func (c *Cache) RideByID(id string) (domain.Ride, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rides {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Ride{}, false
}

// TierByID looks up a ticket tier. The second result is false for unknown ids.
func (c *Cache) TierByID(id string) (domain.TicketTier, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tiers {
		if t.ID == id {
			return t, true
		}
	}
	return domain.TicketTier{}, false
}

// Unavailable reports whether live data could not be fetched and the
// fallback catalogs are being served.
func (c *Cache) Unavailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unavailable
}
