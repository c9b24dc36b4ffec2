package ebay

import (
	"strconv"

	"github.com/estatelens/backend/internal/domain"
)

// tokenResponse is the OAuth client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// searchResponse is the Browse API item_summary/search envelope.
type searchResponse struct {
	ItemSummaries []itemSummary `json:"itemSummaries"`
	Total         int           `json:"total"`
}

// itemSummary carries the subset of Browse API fields the pricer consumes.
// The API returns the price value as a JSON string.
type itemSummary struct {
	ItemID     string    `json:"itemId"`
	Title      string    `json:"title"`
	Price      priceInfo `json:"price"`
	Condition  string    `json:"condition"`
	ItemWebURL string    `json:"itemWebUrl"`
	Image      imageInfo `json:"image"`
}

type priceInfo struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type imageInfo struct {
	ImageURL string `json:"imageUrl"`
}

// mapListings converts Browse API summaries into domain SoldListings,
// substituting zero/empty for absent optional fields rather than failing
// the whole call.
func mapListings(summaries []itemSummary) []domain.SoldListing {
	listings := make([]domain.SoldListing, 0, len(summaries))
	for _, s := range summaries {
		listings = append(listings, mapListing(s))
	}
	return listings
}

func mapListing(s itemSummary) domain.SoldListing {
	price, err := strconv.ParseFloat(s.Price.Value, 64)
	if err != nil {
		price = 0
	}

	currency := s.Price.Currency
	if currency == "" {
		currency = "USD"
	}

	condition := s.Condition
	if condition == "" {
		condition = "Not Specified"
	}

	return domain.SoldListing{
		Title:      s.Title,
		SoldPrice:  price,
		Currency:   currency,
		Condition:  condition,
		ListingURL: s.ItemWebURL,
		ImageURL:   s.Image.ImageURL,
		ItemID:     s.ItemID,
	}
}
