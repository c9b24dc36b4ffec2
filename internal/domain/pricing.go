package domain

import "time"

// PricingConfidence grades how statistically reliable a price estimate is,
// based on the number of surviving comps. Distinct from ItemConfidence.
type PricingConfidence string

const (
	PricingConfidenceNone   PricingConfidence = "none"
	PricingConfidenceLow    PricingConfidence = "low"
	PricingConfidenceMedium PricingConfidence = "medium"
	PricingConfidenceHigh   PricingConfidence = "high"
)

var pricingConfidenceRank = map[PricingConfidence]int{
	PricingConfidenceNone:   0,
	PricingConfidenceLow:    1,
	PricingConfidenceMedium: 2,
	PricingConfidenceHigh:   3,
}

// Rank returns the ordering of the confidence level.
func (c PricingConfidence) Rank() int {
	return pricingConfidenceRank[c]
}

// PricingConfidenceForCount maps a surviving comp count to a confidence
// grade: >=10 high, >=3 medium, >=1 low, 0 none.
func PricingConfidenceForCount(count int) PricingConfidence {
	switch {
	case count >= 10:
		return PricingConfidenceHigh
	case count >= 3:
		return PricingConfidenceMedium
	case count >= 1:
		return PricingConfidenceLow
	default:
		return PricingConfidenceNone
	}
}

// PricingResult is one pricing computation for an item. A new result is
// created on every computation; the most recent one is authoritative.
// Price fields are nil exactly when ResultsCount is zero.
type PricingResult struct {
	PricingID         string            `json:"pricing_id"`
	ItemID            string            `json:"item_id"`
	SearchQueryUsed   string            `json:"search_query_used"`
	ResultsCount      int               `json:"results_count"`
	PriceLow          *float64          `json:"price_low"`
	PriceMedian       *float64          `json:"price_median"`
	PriceHigh         *float64          `json:"price_high"`
	PriceAverage      *float64          `json:"price_average"`
	PricingConfidence PricingConfidence `json:"pricing_confidence"`
	RecentSales       []SoldListing     `json:"recent_sales"`
	QueriedAt         time.Time         `json:"queried_at"`
}
