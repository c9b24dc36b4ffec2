package domain

import "time"

// SoldListing is a comparable sold listing ("comp") returned by the
// marketplace search. Produced only by the marketplace client, never mutated.
type SoldListing struct {
	Title      string  `json:"title"`
	SoldPrice  float64 `json:"sold_price"`
	Currency   string  `json:"currency"`
	Condition  string  `json:"condition"`
	ListingURL string  `json:"listing_url"`
	ImageURL   string  `json:"image_url,omitempty"`
	ItemID     string  `json:"item_id"`
}

// Sale is one scraped estate sale listing.
type Sale struct {
	SaleID      string    `json:"sale_id"`
	SourceURL   string    `json:"source_url"`
	Title       string    `json:"title,omitempty"`
	Location    string    `json:"location,omitempty"`
	SaleDates   []string  `json:"sale_dates,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Photo is one downloaded photo belonging to a sale.
type Photo struct {
	PhotoID        string     `json:"photo_id"`
	SaleID         string     `json:"sale_id"`
	SourceURL      string     `json:"source_url"`
	LocalPath      string     `json:"local_path,omitempty"`
	Caption        string     `json:"caption,omitempty"`
	DownloadStatus string     `json:"download_status"`
	AnalyzedAt     *time.Time `json:"analyzed_at,omitempty"`
}
