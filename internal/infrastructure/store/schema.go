package store

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sales (
    sale_id TEXT PRIMARY KEY,
    source_url TEXT NOT NULL,
    title TEXT,
    location TEXT,
    sale_dates TEXT,
    company_name TEXT,
    scraped_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS photos (
    photo_id TEXT PRIMARY KEY,
    sale_id TEXT NOT NULL REFERENCES sales(sale_id),
    source_url TEXT NOT NULL,
    local_path TEXT,
    caption TEXT,
    download_status TEXT NOT NULL,
    analyzed_at TEXT
);

CREATE TABLE IF NOT EXISTS items (
    item_id TEXT PRIMARY KEY,
    photo_id TEXT NOT NULL,
    sale_id TEXT NOT NULL,
    name TEXT NOT NULL,
    category TEXT NOT NULL,
    brand TEXT,
    model TEXT,
    era TEXT,
    condition_estimate TEXT,
    notable_features TEXT,
    search_query TEXT NOT NULL,
    confidence TEXT NOT NULL,
    confidence_reasoning TEXT,
    estimated_value_hint TEXT,
    identified_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pricing (
    pricing_id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    search_query_used TEXT NOT NULL,
    results_count INTEGER,
    price_low REAL,
    price_median REAL,
    price_high REAL,
    price_average REAL,
    pricing_confidence TEXT,
    recent_sales TEXT,
    queried_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pricing_query ON pricing(search_query_used, queried_at);
CREATE INDEX IF NOT EXISTS idx_pricing_item ON pricing(item_id, queried_at);
CREATE INDEX IF NOT EXISTS idx_items_sale ON items(sale_id);
`

// EnsureSchema creates the tables and indexes when they do not exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
