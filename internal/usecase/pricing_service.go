package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/estatelens/backend/internal/domain"
)

// PricingServiceConfig holds tunables for the pricing service.
type PricingServiceConfig struct {
	CacheTTL            time.Duration
	MaxComps            int
	OutlierStdDevs      float64
	BroadeningThreshold int
}

// PricingService composes the marketplace search, price statistics and the
// pricing cache for one item, and prices batches of deduplicated items.
type PricingService struct {
	cache               *PricingCache
	market              domain.MarketplaceClient
	items               domain.ItemStore
	maxComps            int
	outlierStdDevs      float64
	broadeningThreshold int
}

// NewPricingService creates a pricing service with dependencies. Zero config
// values fall back to defaults (7-day TTL, 20 comps, 2.0 std devs,
// broadening threshold 3).
func NewPricingService(
	store domain.PricingStore,
	items domain.ItemStore,
	market domain.MarketplaceClient,
	config PricingServiceConfig,
) *PricingService {
	maxComps := config.MaxComps
	if maxComps <= 0 {
		maxComps = 20
	}

	outlierStdDevs := config.OutlierStdDevs
	if outlierStdDevs <= 0 {
		outlierStdDevs = DefaultOutlierStdDevs
	}

	broadeningThreshold := config.BroadeningThreshold
	if broadeningThreshold <= 0 {
		broadeningThreshold = 3
	}

	return &PricingService{
		cache:               NewPricingCache(store, config.CacheTTL),
		market:              market,
		items:               items,
		maxComps:            maxComps,
		outlierStdDevs:      outlierStdDevs,
		broadeningThreshold: broadeningThreshold,
	}
}

// PriceItem prices one identified item. Flow: check cache -> search eBay
// with broadening -> compute statistics -> store in cache -> return.
func (s *PricingService) PriceItem(ctx context.Context, item *domain.IdentifiedItem) (*domain.PricingResult, error) {
	if item == nil || item.SearchQuery == "" {
		return nil, domain.ErrInvalidRequest
	}

	cached, err := s.cache.Get(ctx, item.SearchQuery)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		return nil, fmt.Errorf("reading pricing cache: %w", err)
	}

	return s.priceLive(ctx, item)
}

// priceLive performs the live search + statistics + cache write for an item.
func (s *PricingService) priceLive(ctx context.Context, item *domain.IdentifiedItem) (*domain.PricingResult, error) {
	results, queryUsed, err := s.market.SearchWithBroadening(
		ctx,
		item.SearchQuery,
		item.Brand,
		string(item.Category),
		s.broadeningThreshold,
		s.maxComps,
	)
	if err != nil {
		return nil, err
	}

	result := CalculatePricing(results, item.ItemID, queryUsed, s.outlierStdDevs)

	if err := s.cache.Put(ctx, result); err != nil {
		// A failed cache write must not lose the computed result.
		log.Printf("[PRICING] Failed to cache result for %q: %v", queryUsed, err)
	}

	return result, nil
}

// PriceItems prices a batch of deduplicated items sequentially, keyed by
// item ID. One item's failure is logged and skipped so it never aborts
// pricing of subsequent items.
func (s *PricingService) PriceItems(ctx context.Context, items []domain.IdentifiedItem) map[string]*domain.PricingResult {
	pricing := make(map[string]*domain.PricingResult, len(items))

	for i := range items {
		result, err := s.PriceItem(ctx, &items[i])
		if err != nil {
			log.Printf("[PRICING] Skipping item %q (%s): %v", items[i].Name, items[i].ItemID, err)
			continue
		}
		pricing[items[i].ItemID] = result
	}

	return pricing
}

// RepriceSale re-prices all stored items of a previously analyzed sale with
// fresh marketplace data, bypassing the cache. Fresh results are persisted;
// per-item failures are logged and skipped.
func (s *PricingService) RepriceSale(ctx context.Context, saleID string) (map[string]*domain.PricingResult, error) {
	if _, err := s.items.GetSale(ctx, saleID); err != nil {
		return nil, err
	}

	items, err := s.items.GetItemsForSale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("loading items for sale %s: %w", saleID, err)
	}

	pricing := make(map[string]*domain.PricingResult, len(items))
	for i := range items {
		result, err := s.priceLive(ctx, &items[i])
		if err != nil {
			log.Printf("[PRICING] Skipping item %q (%s): %v", items[i].Name, items[i].ItemID, err)
			continue
		}
		pricing[items[i].ItemID] = result
	}

	return pricing, nil
}

// GetPricingForItem returns the most recent stored pricing for an item.
func (s *PricingService) GetPricingForItem(ctx context.Context, itemID string) (*domain.PricingResult, error) {
	return s.cache.store.GetPricingForItem(ctx, itemID)
}
