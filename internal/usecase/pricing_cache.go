package usecase

import (
	"context"
	"time"

	"github.com/estatelens/backend/internal/domain"
)

// DefaultCacheTTL is how long a stored pricing result stays fresh.
const DefaultCacheTTL = 7 * 24 * time.Hour

// PricingCache is a pass-through, time-bounded cache over the pricing store.
// There is no in-memory tier: every computation is persisted, and staleness
// is handled at read time by the TTL filter rather than by eviction.
type PricingCache struct {
	store domain.PricingStore
	ttl   time.Duration
}

// NewPricingCache creates a cache with the given TTL. A non-positive TTL
// falls back to the 7-day default.
func NewPricingCache(store domain.PricingStore, ttl time.Duration) *PricingCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PricingCache{store: store, ttl: ttl}
}

// Get returns the most recent stored result whose SearchQueryUsed equals the
// exact query string and whose age is within the TTL. A miss is signaled
// with domain.ErrCacheMiss, not treated as an error condition.
func (c *PricingCache) Get(ctx context.Context, searchQuery string) (*domain.PricingResult, error) {
	return c.store.GetCachedPricing(ctx, searchQuery, c.ttl)
}

// Put persists a pricing result unconditionally. Prior entries for the same
// query are kept; read-time filtering picks the most recent fresh one.
func (c *PricingCache) Put(ctx context.Context, result *domain.PricingResult) error {
	return c.store.SavePricing(ctx, result)
}
