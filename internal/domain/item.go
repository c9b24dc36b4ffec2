package domain

import (
	"strings"
	"time"
)

// Category classifies an identified item. The set is closed; anything the
// vision step produces outside it is coerced to CategoryOther.
type Category string

const (
	CategoryFurniture     Category = "furniture"
	CategoryElectronics   Category = "electronics"
	CategoryAppliances    Category = "appliances"
	CategoryKitchenware   Category = "kitchenware"
	CategoryArt           Category = "art"
	CategoryCollectibles  Category = "collectibles"
	CategoryTools         Category = "tools"
	CategoryClothing      Category = "clothing"
	CategoryJewelry       Category = "jewelry"
	CategoryBooks         Category = "books"
	CategoryToys          Category = "toys"
	CategorySportingGoods Category = "sporting_goods"
	CategoryOther         Category = "other"
)

var validCategories = map[Category]bool{
	CategoryFurniture: true, CategoryElectronics: true, CategoryAppliances: true,
	CategoryKitchenware: true, CategoryArt: true, CategoryCollectibles: true,
	CategoryTools: true, CategoryClothing: true, CategoryJewelry: true,
	CategoryBooks: true, CategoryToys: true, CategorySportingGoods: true,
	CategoryOther: true,
}

// ParseCategory normalizes an external category value, coercing anything
// unrecognized to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if validCategories[c] {
		return c
	}
	return CategoryOther
}

// ItemConfidence grades how certain the identification step is about an
// item's brand/model. Levels are ordered; compare with Rank, not the
// string values.
type ItemConfidence string

const (
	ItemConfidenceHigh   ItemConfidence = "high"
	ItemConfidenceMedium ItemConfidence = "medium"
	ItemConfidenceLow    ItemConfidence = "low"
)

var itemConfidenceRank = map[ItemConfidence]int{
	ItemConfidenceHigh:   3,
	ItemConfidenceMedium: 2,
	ItemConfidenceLow:    1,
}

// Rank returns the ordering of the confidence level. Unrecognized values
// rank below low.
func (c ItemConfidence) Rank() int {
	return itemConfidenceRank[c]
}

// ParseItemConfidence normalizes an external confidence value, coercing
// anything unrecognized to ItemConfidenceLow.
func ParseItemConfidence(s string) ItemConfidence {
	c := ItemConfidence(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := itemConfidenceRank[c]; ok {
		return c
	}
	return ItemConfidenceLow
}

// Condition is the visible-wear estimate from the identification step.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
	ConditionUnknown   Condition = "unknown"
)

var validConditions = map[Condition]bool{
	ConditionExcellent: true, ConditionGood: true, ConditionFair: true,
	ConditionPoor: true, ConditionUnknown: true,
}

// ParseCondition normalizes an external condition value, coercing anything
// unrecognized to ConditionUnknown.
func ParseCondition(s string) Condition {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	if validConditions[c] {
		return c
	}
	return ConditionUnknown
}

// IdentifiedItem is a single item recognized in a sale photo by the vision
// step. Items are immutable after creation except for NotableFeatures, which
// deduplication may extend when merging duplicates.
type IdentifiedItem struct {
	ItemID              string         `json:"item_id"`
	PhotoID             string         `json:"photo_id"`
	SaleID              string         `json:"sale_id"`
	Name                string         `json:"name"`
	Category            Category       `json:"category"`
	Brand               string         `json:"brand,omitempty"`
	Model               string         `json:"model,omitempty"`
	Era                 string         `json:"era,omitempty"`
	ConditionEstimate   Condition      `json:"condition_estimate"`
	NotableFeatures     []string       `json:"notable_features"`
	SearchQuery         string         `json:"search_query"`
	Confidence          ItemConfidence `json:"confidence"`
	ConfidenceReasoning string         `json:"confidence_reasoning,omitempty"`
	EstimatedValueHint  string         `json:"estimated_value_hint,omitempty"`
	IdentifiedAt        time.Time      `json:"identified_at"`
}
