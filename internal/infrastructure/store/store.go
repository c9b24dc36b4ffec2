package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/estatelens/backend/internal/domain"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds, so that stored UTC
// timestamps compare lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the SQLite-backed persistence layer for sales, photos, items and
// pricing results. It implements domain.PricingStore and domain.ItemStore.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an opened database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// SavePricing persists a pricing result, replacing any row with the same id.
func (s *Store) SavePricing(ctx context.Context, result *domain.PricingResult) error {
	recentSales, err := json.Marshal(result.RecentSales)
	if err != nil {
		return fmt.Errorf("encoding recent sales: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pricing
		 (pricing_id, item_id, search_query_used, results_count,
		  price_low, price_median, price_high, price_average,
		  pricing_confidence, recent_sales, queried_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.PricingID,
		result.ItemID,
		result.SearchQueryUsed,
		result.ResultsCount,
		result.PriceLow,
		result.PriceMedian,
		result.PriceHigh,
		result.PriceAverage,
		string(result.PricingConfidence),
		string(recentSales),
		formatTime(result.QueriedAt),
	)
	if err != nil {
		return fmt.Errorf("saving pricing: %w", err)
	}
	return nil
}

// GetCachedPricing returns the most recent pricing result whose query
// matches exactly and whose age is within maxAge, or domain.ErrCacheMiss.
func (s *Store) GetCachedPricing(ctx context.Context, query string, maxAge time.Duration) (*domain.PricingResult, error) {
	cutoff := formatTime(time.Now().Add(-maxAge))

	row := s.db.QueryRowContext(ctx,
		`SELECT pricing_id, item_id, search_query_used, results_count,
		        price_low, price_median, price_high, price_average,
		        pricing_confidence, recent_sales, queried_at
		 FROM pricing
		 WHERE search_query_used = ? AND queried_at >= ?
		 ORDER BY queried_at DESC LIMIT 1`,
		query, cutoff,
	)

	result, err := scanPricing(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached pricing: %w", err)
	}
	return result, nil
}

// GetPricingForItem returns the most recent pricing result for an item, or
// domain.ErrItemNotFound.
func (s *Store) GetPricingForItem(ctx context.Context, itemID string) (*domain.PricingResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT pricing_id, item_id, search_query_used, results_count,
		        price_low, price_median, price_high, price_average,
		        pricing_confidence, recent_sales, queried_at
		 FROM pricing
		 WHERE item_id = ?
		 ORDER BY queried_at DESC LIMIT 1`,
		itemID,
	)

	result, err := scanPricing(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading pricing for item: %w", err)
	}
	return result, nil
}

// ListPricingForSale returns the latest pricing results for a sale's items,
// highest median first with unpriced items last.
func (s *Store) ListPricingForSale(ctx context.Context, saleID string) ([]domain.PricingResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.pricing_id, p.item_id, p.search_query_used, p.results_count,
		        p.price_low, p.price_median, p.price_high, p.price_average,
		        p.pricing_confidence, p.recent_sales, p.queried_at
		 FROM pricing p
		 JOIN items i ON p.item_id = i.item_id
		 WHERE i.sale_id = ?
		 ORDER BY p.price_median DESC NULLS LAST`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pricing for sale: %w", err)
	}
	defer rows.Close()

	var results []domain.PricingResult
	for rows.Next() {
		result, err := scanPricing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pricing: %w", err)
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPricing(row rowScanner) (*domain.PricingResult, error) {
	var (
		result      domain.PricingResult
		low         sql.NullFloat64
		median      sql.NullFloat64
		high        sql.NullFloat64
		average     sql.NullFloat64
		confidence  string
		recentSales string
		queriedAt   string
	)

	err := row.Scan(
		&result.PricingID, &result.ItemID, &result.SearchQueryUsed, &result.ResultsCount,
		&low, &median, &high, &average,
		&confidence, &recentSales, &queriedAt,
	)
	if err != nil {
		return nil, err
	}

	result.PriceLow = nullableFloat(low)
	result.PriceMedian = nullableFloat(median)
	result.PriceHigh = nullableFloat(high)
	result.PriceAverage = nullableFloat(average)
	result.PricingConfidence = domain.PricingConfidence(confidence)

	if recentSales != "" {
		if err := json.Unmarshal([]byte(recentSales), &result.RecentSales); err != nil {
			return nil, fmt.Errorf("decoding recent sales: %w", err)
		}
	}

	result.QueriedAt, err = parseTime(queriedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing queried_at: %w", err)
	}

	return &result, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// SaveItem persists an identified item, replacing any row with the same id.
func (s *Store) SaveItem(ctx context.Context, item *domain.IdentifiedItem) error {
	features, err := json.Marshal(item.NotableFeatures)
	if err != nil {
		return fmt.Errorf("encoding notable features: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO items
		 (item_id, photo_id, sale_id, name, category, brand, model, era,
		  condition_estimate, notable_features, search_query, confidence,
		  confidence_reasoning, estimated_value_hint, identified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ItemID,
		item.PhotoID,
		item.SaleID,
		item.Name,
		string(item.Category),
		item.Brand,
		item.Model,
		item.Era,
		string(item.ConditionEstimate),
		string(features),
		item.SearchQuery,
		string(item.Confidence),
		item.ConfidenceReasoning,
		item.EstimatedValueHint,
		formatTime(item.IdentifiedAt),
	)
	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	return nil
}

// GetItemsForSale returns a sale's items, best identification first.
func (s *Store) GetItemsForSale(ctx context.Context, saleID string) ([]domain.IdentifiedItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, photo_id, sale_id, name, category, brand, model, era,
		        condition_estimate, notable_features, search_query, confidence,
		        confidence_reasoning, estimated_value_hint, identified_at
		 FROM items
		 WHERE sale_id = ?
		 ORDER BY CASE confidence
		          WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1
		          ELSE 0 END DESC, name`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items for sale: %w", err)
	}
	defer rows.Close()

	var items []domain.IdentifiedItem
	for rows.Next() {
		var (
			item         domain.IdentifiedItem
			category     string
			condition    string
			confidence   string
			features     string
			identifiedAt string
		)
		err := rows.Scan(
			&item.ItemID, &item.PhotoID, &item.SaleID, &item.Name, &category,
			&item.Brand, &item.Model, &item.Era, &condition, &features,
			&item.SearchQuery, &confidence, &item.ConfidenceReasoning,
			&item.EstimatedValueHint, &identifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		item.Category = domain.Category(category)
		item.ConditionEstimate = domain.Condition(condition)
		item.Confidence = domain.ItemConfidence(confidence)

		if features != "" {
			if err := json.Unmarshal([]byte(features), &item.NotableFeatures); err != nil {
				return nil, fmt.Errorf("decoding notable features: %w", err)
			}
		}
		if item.IdentifiedAt, err = parseTime(identifiedAt); err != nil {
			return nil, fmt.Errorf("parsing identified_at: %w", err)
		}

		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveSale persists a sale record, replacing any row with the same id.
func (s *Store) SaveSale(ctx context.Context, sale *domain.Sale) error {
	dates, err := json.Marshal(sale.SaleDates)
	if err != nil {
		return fmt.Errorf("encoding sale dates: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sales
		 (sale_id, source_url, title, location, sale_dates, company_name, scraped_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sale.SaleID, sale.SourceURL, sale.Title, sale.Location,
		string(dates), sale.CompanyName, formatTime(sale.ScrapedAt),
	)
	if err != nil {
		return fmt.Errorf("saving sale: %w", err)
	}
	return nil
}

// GetSale returns a sale by id, or domain.ErrSaleNotFound.
func (s *Store) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	var (
		sale      domain.Sale
		dates     string
		scrapedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sale_id, source_url, title, location, sale_dates, company_name, scraped_at
		 FROM sales WHERE sale_id = ?`,
		saleID,
	).Scan(&sale.SaleID, &sale.SourceURL, &sale.Title, &sale.Location, &dates, &sale.CompanyName, &scrapedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading sale: %w", err)
	}

	if dates != "" {
		if err := json.Unmarshal([]byte(dates), &sale.SaleDates); err != nil {
			return nil, fmt.Errorf("decoding sale dates: %w", err)
		}
	}
	if sale.ScrapedAt, err = parseTime(scrapedAt); err != nil {
		return nil, fmt.Errorf("parsing scraped_at: %w", err)
	}

	return &sale, nil
}

// SavePhoto persists a photo record, replacing any row with the same id.
func (s *Store) SavePhoto(ctx context.Context, photo *domain.Photo) error {
	var analyzedAt any
	if photo.AnalyzedAt != nil {
		analyzedAt = formatTime(*photo.AnalyzedAt)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO photos
		 (photo_id, sale_id, source_url, local_path, caption, download_status, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		photo.PhotoID, photo.SaleID, photo.SourceURL, photo.LocalPath,
		photo.Caption, photo.DownloadStatus, analyzedAt,
	)
	if err != nil {
		return fmt.Errorf("saving photo: %w", err)
	}
	return nil
}
