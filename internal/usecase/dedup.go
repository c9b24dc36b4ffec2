package usecase

import (
	"sort"

	"github.com/estatelens/backend/internal/domain"
)

// Default similarity thresholds for duplicate detection.
const (
	DefaultNameThreshold  = 0.75
	DefaultQueryThreshold = 0.70
)

// DedupConfig holds thresholds for the deduplicator. Zero values fall back
// to the defaults.
type DedupConfig struct {
	NameThreshold  float64
	QueryThreshold float64
}

// Deduplicator merges near-duplicate identified items from a batch of
// analyzed photos into a canonical set.
type Deduplicator struct {
	nameThreshold  float64
	queryThreshold float64
}

// NewDeduplicator creates a deduplicator with the given thresholds.
func NewDeduplicator(config DedupConfig) *Deduplicator {
	nameThreshold := config.NameThreshold
	if nameThreshold <= 0 {
		nameThreshold = DefaultNameThreshold
	}

	queryThreshold := config.QueryThreshold
	if queryThreshold <= 0 {
		queryThreshold = DefaultQueryThreshold
	}

	return &Deduplicator{
		nameThreshold:  nameThreshold,
		queryThreshold: queryThreshold,
	}
}

// Deduplicate removes items that appear across multiple photos of the same
// sale. Items are duplicates only when their categories match exactly and
// either their names or their search queries are similar enough. The
// survivor is the highest-confidence duplicate (ties keep original order);
// its NotableFeatures absorb the union of features from every merged item.
//
// Two items whose categories are both empty compare equal on category. The
// parse boundary coerces unknown categories to "other", so this only affects
// items constructed without validation.
func (d *Deduplicator) Deduplicate(items []domain.IdentifiedItem) []domain.IdentifiedItem {
	if len(items) == 0 {
		return []domain.IdentifiedItem{}
	}

	// Sort by confidence descending so the kept representative is the
	// best identification. Stable sort preserves input order among ties.
	sorted := make([]domain.IdentifiedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence.Rank() > sorted[j].Confidence.Rank()
	})

	var kept []domain.IdentifiedItem
	for _, item := range sorted {
		duplicate := false
		for i := range kept {
			if item.Category != kept[i].Category {
				continue
			}

			nameSim := Similarity(item.Name, kept[i].Name)
			querySim := Similarity(item.SearchQuery, kept[i].SearchQuery)

			if nameSim >= d.nameThreshold || querySim >= d.queryThreshold {
				duplicate = true
				kept[i].NotableFeatures = unionFeatures(kept[i].NotableFeatures, item.NotableFeatures)
				break
			}
		}

		if !duplicate {
			kept = append(kept, item)
		}
	}

	return kept
}

// unionFeatures merges two feature lists without duplicates, preserving
// first-seen order.
func unionFeatures(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(incoming))

	for _, f := range existing {
		if !seen[f] {
			seen[f] = true
			merged = append(merged, f)
		}
	}
	for _, f := range incoming {
		if !seen[f] {
			seen[f] = true
			merged = append(merged, f)
		}
	}

	return merged
}
