package vision

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estatelens/backend/internal/domain"
)

// rawItem is one record as the vision model emits it, before validation.
// NotableFeatures stays raw because models occasionally emit a string or
// null instead of an array.
type rawItem struct {
	Name                string          `json:"name"`
	Category            string          `json:"category"`
	Brand               string          `json:"brand"`
	Model               string          `json:"model"`
	Era                 string          `json:"era"`
	ConditionEstimate   string          `json:"condition_estimate"`
	NotableFeatures     json.RawMessage `json:"notable_features"`
	SearchQuery         string          `json:"search_query"`
	Confidence          string          `json:"confidence"`
	ConfidenceReasoning string          `json:"confidence_reasoning"`
	EstimatedValueHint  string          `json:"estimated_value_hint"`
}

// ParseItems parses a raw vision-model response into identified items.
// The response may be wrapped in markdown code fences or surrounded by
// prose; records missing a name or search query are dropped. Each item
// gets a fresh UUID, a photo id derived from the image path, and the
// current timestamp. Returns domain.ErrInvalidPayload when no JSON can
// be extracted at all.
func ParseItems(response, saleID, imagePath string) ([]domain.IdentifiedItem, error) {
	records, err := extractRecords(response)
	if err != nil {
		return nil, err
	}

	photoID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(imagePath)).String()
	now := time.Now().UTC()

	items := make([]domain.IdentifiedItem, 0, len(records))
	for _, record := range records {
		var raw rawItem
		if err := json.Unmarshal(record, &raw); err != nil {
			continue
		}
		if raw.Name == "" || raw.SearchQuery == "" {
			continue
		}

		items = append(items, domain.IdentifiedItem{
			ItemID:              uuid.NewString(),
			PhotoID:             photoID,
			SaleID:              saleID,
			Name:                raw.Name,
			Category:            domain.ParseCategory(raw.Category),
			Brand:               raw.Brand,
			Model:               raw.Model,
			Era:                 raw.Era,
			ConditionEstimate:   domain.ParseCondition(raw.ConditionEstimate),
			NotableFeatures:     parseFeatures(raw.NotableFeatures),
			SearchQuery:         raw.SearchQuery,
			Confidence:          domain.ParseItemConfidence(raw.Confidence),
			ConfidenceReasoning: raw.ConfidenceReasoning,
			EstimatedValueHint:  raw.EstimatedValueHint,
			IdentifiedAt:        now,
		})
	}
	return items, nil
}

// extractRecords pulls the JSON array out of the response text. A single
// object is treated as a one-element array.
func extractRecords(response string) ([]json.RawMessage, error) {
	text := stripFences(strings.TrimSpace(response))

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(text), &records); err == nil {
		return records, nil
	}

	var single map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &single); err == nil {
		return []json.RawMessage{json.RawMessage(text)}, nil
	}

	// The model sometimes wraps the array in prose.
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &records); err == nil {
			return records, nil
		}
	}

	return nil, domain.ErrInvalidPayload
}

// stripFences removes markdown code fence lines (```json ... ```).
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// parseFeatures decodes notable_features, tolerating a bare string or
// any non-array value.
func parseFeatures(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var features []string
	if err := json.Unmarshal(raw, &features); err == nil && features != nil {
		return features
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return []string{one}
	}
	return []string{}
}
