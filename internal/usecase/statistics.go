package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/estatelens/backend/internal/domain"
)

// DefaultOutlierStdDevs is the outlier threshold in standard deviations.
const DefaultOutlierStdDevs = 2.0

// maxRecentSales bounds the raw listing sample kept on a PricingResult.
const maxRecentSales = 10

// RemoveOutliers filters out prices beyond stdDevs sample standard
// deviations from the mean. With fewer than 3 values, or when all values are
// identical, the deviation is not meaningful and the input is returned
// unchanged. The result can be empty when no value is within range; callers
// must fall back to the unfiltered list.
func RemoveOutliers(prices []float64, stdDevs float64) []float64 {
	if len(prices) < 3 {
		return prices
	}

	m := mean(prices)
	sd := sampleStdDev(prices, m)
	if sd == 0 {
		return prices
	}

	filtered := make([]float64, 0, len(prices))
	for _, p := range prices {
		if math.Abs(p-m) <= stdDevs*sd {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// CalculatePricing computes outlier-robust price statistics over a list of
// sold comps and grades the result's confidence by surviving comp count.
// Zero qualifying comps is a normal terminal outcome: the result carries
// count 0, nil price fields and confidence "none", with the first listings
// of the raw input preserved as a trace of why nothing priced.
func CalculatePricing(soldItems []domain.SoldListing, itemID, searchQuery string, outlierStdDevs float64) *domain.PricingResult {
	if outlierStdDevs <= 0 {
		outlierStdDevs = DefaultOutlierStdDevs
	}

	prices := make([]float64, 0, len(soldItems))
	for _, s := range soldItems {
		if s.SoldPrice > 0 {
			prices = append(prices, s.SoldPrice)
		}
	}

	result := &domain.PricingResult{
		PricingID:       uuid.NewString(),
		ItemID:          itemID,
		SearchQueryUsed: searchQuery,
		RecentSales:     firstN(soldItems, maxRecentSales),
		QueriedAt:       time.Now().UTC(),
	}

	if len(prices) == 0 {
		result.PricingConfidence = domain.PricingConfidenceNone
		return result
	}

	filtered := RemoveOutliers(prices, outlierStdDevs)
	if len(filtered) == 0 {
		// Never report zero comps when comps exist.
		filtered = prices
	}

	low := filtered[0]
	high := filtered[0]
	for _, p := range filtered {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}

	result.ResultsCount = len(filtered)
	result.PriceLow = round2(low)
	result.PriceHigh = round2(high)
	result.PriceMedian = round2(median(filtered))
	result.PriceAverage = round2(mean(filtered))
	result.PricingConfidence = domain.PricingConfidenceForCount(len(filtered))

	return result
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev computes the sample (n-1) standard deviation.
func sampleStdDev(values []float64, mean float64) float64 {
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}

func firstN(listings []domain.SoldListing, n int) []domain.SoldListing {
	if len(listings) > n {
		listings = listings[:n]
	}
	out := make([]domain.SoldListing, len(listings))
	copy(out, listings)
	return out
}
