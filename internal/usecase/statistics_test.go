package usecase

import (
	"testing"

	"github.com/estatelens/backend/internal/domain"
)

func TestRemoveOutliers(t *testing.T) {
	t.Run("empty list unchanged", func(t *testing.T) {
		result := RemoveOutliers([]float64{}, 2.0)
		if len(result) != 0 {
			t.Errorf("len = %d, want 0", len(result))
		}
	})

	t.Run("single value unchanged", func(t *testing.T) {
		result := RemoveOutliers([]float64{100}, 2.0)
		if len(result) != 1 || result[0] != 100 {
			t.Errorf("result = %v, want [100]", result)
		}
	})

	t.Run("two values unchanged", func(t *testing.T) {
		result := RemoveOutliers([]float64{50, 100}, 2.0)
		if len(result) != 2 {
			t.Errorf("result = %v, want [50 100]", result)
		}
	})

	t.Run("no outliers keeps all", func(t *testing.T) {
		prices := []float64{95, 100, 105, 98, 102}
		result := RemoveOutliers(prices, 2.0)
		if len(result) != len(prices) {
			t.Errorf("len = %d, want %d", len(result), len(prices))
		}
	})

	t.Run("removes high outlier", func(t *testing.T) {
		result := RemoveOutliers([]float64{100, 105, 98, 102, 99, 500}, 2.0)
		for _, p := range result {
			if p == 500 {
				t.Error("500 should have been removed")
			}
		}
		if len(result) != 5 {
			t.Errorf("len = %d, want 5", len(result))
		}
	})

	t.Run("removes low outlier", func(t *testing.T) {
		result := RemoveOutliers([]float64{100, 105, 98, 102, 99, 1}, 2.0)
		for _, p := range result {
			if p == 1 {
				t.Error("1 should have been removed")
			}
		}
	})

	t.Run("identical values unchanged", func(t *testing.T) {
		result := RemoveOutliers([]float64{50, 50, 50, 50}, 2.0)
		if len(result) != 4 {
			t.Errorf("len = %d, want 4", len(result))
		}
	})
}

func comps(prices ...float64) []domain.SoldListing {
	listings := make([]domain.SoldListing, len(prices))
	for i, p := range prices {
		listings[i] = domain.SoldListing{Title: "Comp", SoldPrice: p, Currency: "USD"}
	}
	return listings
}

func TestCalculatePricing(t *testing.T) {
	t.Run("no comps is a normal terminal outcome", func(t *testing.T) {
		result := CalculatePricing(nil, "item-1", "test query", 2.0)
		if result.ResultsCount != 0 {
			t.Errorf("ResultsCount = %d, want 0", result.ResultsCount)
		}
		if result.PriceLow != nil || result.PriceMedian != nil || result.PriceHigh != nil || result.PriceAverage != nil {
			t.Error("price fields should all be nil with zero comps")
		}
		if result.PricingConfidence != domain.PricingConfidenceNone {
			t.Errorf("PricingConfidence = %s, want none", result.PricingConfidence)
		}
	})

	t.Run("zero-price placeholders survive in recent sales", func(t *testing.T) {
		listings := comps(0, 0)
		result := CalculatePricing(listings, "item-1", "test query", 2.0)
		if result.ResultsCount != 0 {
			t.Errorf("ResultsCount = %d, want 0", result.ResultsCount)
		}
		if len(result.RecentSales) != 2 {
			t.Errorf("RecentSales len = %d, want 2 (trace of unpriced listings)", len(result.RecentSales))
		}
	})

	t.Run("single comp gives low confidence", func(t *testing.T) {
		result := CalculatePricing(comps(50), "item-1", "test query", 2.0)
		if result.ResultsCount != 1 {
			t.Errorf("ResultsCount = %d, want 1", result.ResultsCount)
		}
		for name, got := range map[string]*float64{
			"low": result.PriceLow, "median": result.PriceMedian,
			"high": result.PriceHigh, "average": result.PriceAverage,
		} {
			if got == nil || *got != 50 {
				t.Errorf("price %s = %v, want 50", name, got)
			}
		}
		if result.PricingConfidence != domain.PricingConfidenceLow {
			t.Errorf("PricingConfidence = %s, want low", result.PricingConfidence)
		}
	})

	t.Run("five comps give medium confidence and correct stats", func(t *testing.T) {
		result := CalculatePricing(comps(100, 150, 120, 130, 110), "item-1", "test query", 2.0)
		if result.ResultsCount != 5 {
			t.Errorf("ResultsCount = %d, want 5", result.ResultsCount)
		}
		if *result.PriceMedian != 120 {
			t.Errorf("PriceMedian = %v, want 120", *result.PriceMedian)
		}
		if *result.PriceLow != 100 || *result.PriceHigh != 150 {
			t.Errorf("range = %v-%v, want 100-150", *result.PriceLow, *result.PriceHigh)
		}
		if *result.PriceAverage != 122 {
			t.Errorf("PriceAverage = %v, want 122", *result.PriceAverage)
		}
		if result.PricingConfidence != domain.PricingConfidenceMedium {
			t.Errorf("PricingConfidence = %s, want medium", result.PricingConfidence)
		}
	})

	t.Run("ten or more comps give high confidence", func(t *testing.T) {
		prices := make([]float64, 14)
		for i := range prices {
			prices[i] = float64((i + 1) * 10)
		}
		result := CalculatePricing(comps(prices...), "item-1", "test query", 2.0)
		if result.PricingConfidence != domain.PricingConfidenceHigh {
			t.Errorf("PricingConfidence = %s, want high", result.PricingConfidence)
		}
	})

	t.Run("outlier excluded from aggregate", func(t *testing.T) {
		result := CalculatePricing(comps(100, 105, 98, 102, 99, 500), "item-1", "test query", 2.0)
		if result.ResultsCount != 5 {
			t.Errorf("ResultsCount = %d, want 5 (500 trimmed)", result.ResultsCount)
		}
		if *result.PriceMedian < 98 || *result.PriceMedian > 102 {
			t.Errorf("PriceMedian = %v, want near 100", *result.PriceMedian)
		}
		if *result.PriceHigh == 500 {
			t.Error("PriceHigh should exclude the 500 outlier")
		}
	})

	t.Run("zero prices are skipped from the aggregate", func(t *testing.T) {
		listings := comps(0, 100, 50)
		result := CalculatePricing(listings, "item-1", "test query", 2.0)
		if result.ResultsCount != 2 {
			t.Errorf("ResultsCount = %d, want 2", result.ResultsCount)
		}
		if *result.PriceMedian != 75 {
			t.Errorf("PriceMedian = %v, want 75", *result.PriceMedian)
		}
	})

	t.Run("averages round to two decimals", func(t *testing.T) {
		result := CalculatePricing(comps(10, 10, 11), "item-1", "q", 2.0)
		if *result.PriceAverage != 10.33 {
			t.Errorf("PriceAverage = %v, want 10.33", *result.PriceAverage)
		}
	})

	t.Run("item id and query preserved", func(t *testing.T) {
		result := CalculatePricing(comps(75), "my-item", "vintage lamp brass", 2.0)
		if result.ItemID != "my-item" {
			t.Errorf("ItemID = %q, want my-item", result.ItemID)
		}
		if result.SearchQueryUsed != "vintage lamp brass" {
			t.Errorf("SearchQueryUsed = %q, want vintage lamp brass", result.SearchQueryUsed)
		}
	})

	t.Run("recent sales capped at 10 in original order", func(t *testing.T) {
		prices := make([]float64, 24)
		for i := range prices {
			prices[i] = float64(i + 1)
		}
		result := CalculatePricing(comps(prices...), "item-1", "q", 2.0)
		if len(result.RecentSales) != 10 {
			t.Fatalf("RecentSales len = %d, want 10", len(result.RecentSales))
		}
		if result.RecentSales[0].SoldPrice != 1 || result.RecentSales[9].SoldPrice != 10 {
			t.Error("RecentSales should preserve the marketplace's order")
		}
	})

	t.Run("every computation gets a fresh id", func(t *testing.T) {
		a := CalculatePricing(comps(10), "item-1", "q", 2.0)
		b := CalculatePricing(comps(10), "item-1", "q", 2.0)
		if a.PricingID == "" || a.PricingID == b.PricingID {
			t.Errorf("PricingIDs %q and %q should be distinct and non-empty", a.PricingID, b.PricingID)
		}
	})
}
