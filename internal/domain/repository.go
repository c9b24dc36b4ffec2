package domain

import (
	"context"
	"time"
)

// MarketplaceClient defines the interface for the sold-listings search.
type MarketplaceClient interface {
	// SearchSold performs one bounded search and maps the response into
	// SoldListing records.
	SearchSold(ctx context.Context, query string, limit int, categoryIDs []string) ([]SoldListing, error)

	// SearchWithBroadening searches with progressive query relaxation when
	// results are scarce. Returns the results and the query that produced
	// them; zero results is a valid terminal state, not an error.
	SearchWithBroadening(ctx context.Context, primaryQuery, brand, category string, threshold, limit int) ([]SoldListing, string, error)
}

// PricingStore defines the persistence contract the pricing cache needs:
// insert-or-replace by id and select most recent by query + age bound.
type PricingStore interface {
	SavePricing(ctx context.Context, result *PricingResult) error

	// GetCachedPricing returns the most recent result whose SearchQueryUsed
	// equals query and whose age is within maxAge, or ErrCacheMiss.
	GetCachedPricing(ctx context.Context, query string, maxAge time.Duration) (*PricingResult, error)

	// GetPricingForItem returns the most recent result for an item, or
	// ErrItemNotFound.
	GetPricingForItem(ctx context.Context, itemID string) (*PricingResult, error)
}

// ItemStore defines persistence for identified items and their sales.
type ItemStore interface {
	SaveItem(ctx context.Context, item *IdentifiedItem) error
	GetItemsForSale(ctx context.Context, saleID string) ([]IdentifiedItem, error)
	GetSale(ctx context.Context, saleID string) (*Sale, error)
}
