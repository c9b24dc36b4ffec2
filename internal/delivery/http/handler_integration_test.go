package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/estatelens/backend/config"
	"github.com/estatelens/backend/internal/domain"
	"github.com/estatelens/backend/internal/infrastructure/store"
	"github.com/estatelens/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	os.Exit(exitCode)
}

// fakeMarket serves canned listings keyed by search query.
type fakeMarket struct {
	listings map[string][]domain.SoldListing
	err      error
}

func (f *fakeMarket) SearchSold(ctx context.Context, query string, limit int, categoryIDs []string) ([]domain.SoldListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listings[query], nil
}

func (f *fakeMarket) SearchWithBroadening(ctx context.Context, primaryQuery, brand, category string, threshold, limit int) ([]domain.SoldListing, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.listings[primaryQuery], primaryQuery, nil
}

type testEnv struct {
	router *gin.Engine
	store  *store.Store
	market *fakeMarket
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}

	dataStore := store.NewStore(store.NewTestDB(t))
	market := &fakeMarket{listings: map[string][]domain.SoldListing{}}

	pricing := usecase.NewPricingService(dataStore, dataStore, market, usecase.PricingServiceConfig{})
	dedup := usecase.NewDeduplicator(usecase.DedupConfig{})

	handler := NewHandler(pricing, dedup, dataStore)
	router := SetupRouter(cfg, handler)

	return &testEnv{router: router, store: dataStore, market: market}
}

func doJSON(t *testing.T, router *gin.Engine, method, path, payload string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, path, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		env := setupTestEnv(t)

		w := doJSON(t, env.router, "GET", "/health", "")

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "estatelens-backend" {
			t.Errorf("service = %v, want estatelens-backend", response["service"])
		}
	})
}

func TestDeduplicateEndpoint(t *testing.T) {
	t.Run("collapses duplicate items", func(t *testing.T) {
		env := setupTestEnv(t)

		payload := `{"items": [
			{"item_id": "a", "name": "Pyrex 401 Primary Blue Bowl", "category": "kitchenware",
			 "search_query": "pyrex 401 primary blue bowl", "confidence": "high"},
			{"item_id": "b", "name": "Pyrex 401 Blue Mixing Bowl", "category": "kitchenware",
			 "search_query": "pyrex 401 blue mixing bowl", "confidence": "medium"},
			{"item_id": "c", "name": "Oak Dresser", "category": "furniture",
			 "search_query": "vintage oak dresser", "confidence": "low"}
		]}`
		w := doJSON(t, env.router, "POST", "/api/v1/items/deduplicate", payload)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var response struct {
			Items       []domain.IdentifiedItem `json:"items"`
			InputCount  int                     `json:"input_count"`
			OutputCount int                     `json:"output_count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response.InputCount != 3 || response.OutputCount != 2 {
			t.Errorf("counts = %d/%d, want 3/2", response.InputCount, response.OutputCount)
		}
		if len(response.Items) != 2 {
			t.Fatalf("len(items) = %d, want 2", len(response.Items))
		}
		if response.Items[0].ItemID != "a" {
			t.Errorf("survivor = %q, want the high-confidence item", response.Items[0].ItemID)
		}
	})

	t.Run("rejects a body without items", func(t *testing.T) {
		env := setupTestEnv(t)

		w := doJSON(t, env.router, "POST", "/api/v1/items/deduplicate", `{}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestParseEndpoint(t *testing.T) {
	t.Run("parses a fenced vision response", func(t *testing.T) {
		env := setupTestEnv(t)

		payload := `{
			"response": "` + "```json\\n[{\\\"name\\\": \\\"Oak Dresser\\\", \\\"category\\\": \\\"furniture\\\", \\\"search_query\\\": \\\"vintage oak dresser\\\"}]\\n```" + `",
			"sale_id": "sale-1",
			"image_path": "photos/bedroom.jpg"
		}`
		w := doJSON(t, env.router, "POST", "/api/v1/items/parse", payload)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var response struct {
			Items []domain.IdentifiedItem `json:"items"`
			Count int                     `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response.Count != 1 || len(response.Items) != 1 {
			t.Fatalf("count = %d, want 1", response.Count)
		}
		if response.Items[0].Name != "Oak Dresser" {
			t.Errorf("name = %q, want Oak Dresser", response.Items[0].Name)
		}
		if response.Items[0].SaleID != "sale-1" {
			t.Errorf("sale_id = %q, want sale-1", response.Items[0].SaleID)
		}
	})

	t.Run("rejects a response with no JSON", func(t *testing.T) {
		env := setupTestEnv(t)

		payload := `{"response": "no items here", "image_path": "photos/blur.jpg"}`
		w := doJSON(t, env.router, "POST", "/api/v1/items/parse", payload)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestPriceSearchEndpoint(t *testing.T) {
	t.Run("prices a standalone query", func(t *testing.T) {
		env := setupTestEnv(t)
		env.market.listings["pyrex 401 bowl"] = []domain.SoldListing{
			{Title: "Pyrex 401", SoldPrice: 20.00, Currency: "USD"},
			{Title: "Pyrex 401 Blue", SoldPrice: 24.00, Currency: "USD"},
			{Title: "Pyrex 401 Bowl", SoldPrice: 28.00, Currency: "USD"},
		}

		w := doJSON(t, env.router, "POST", "/api/v1/pricing/search", `{"search_query": "pyrex 401 bowl"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var result domain.PricingResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if result.ResultsCount != 3 {
			t.Errorf("results_count = %d, want 3", result.ResultsCount)
		}
		if result.PriceMedian == nil || *result.PriceMedian != 24.00 {
			t.Errorf("price_median = %v, want 24.00", result.PriceMedian)
		}
		if result.PricingConfidence != domain.PricingConfidenceMedium {
			t.Errorf("pricing_confidence = %q, want medium", result.PricingConfidence)
		}
	})

	t.Run("second identical query is served from cache", func(t *testing.T) {
		env := setupTestEnv(t)
		env.market.listings["singer 221"] = []domain.SoldListing{
			{Title: "Singer 221", SoldPrice: 400.00, Currency: "USD"},
		}

		first := doJSON(t, env.router, "POST", "/api/v1/pricing/search", `{"search_query": "singer 221"}`)
		if first.Code != http.StatusOK {
			t.Fatalf("first call: Status = %d (body: %s)", first.Code, first.Body.String())
		}

		// A market failure now proves the second call never hits the market.
		env.market.err = domain.ErrEbayAPIFailure

		second := doJSON(t, env.router, "POST", "/api/v1/pricing/search", `{"search_query": "singer 221"}`)
		if second.Code != http.StatusOK {
			t.Fatalf("second call: Status = %d (body: %s)", second.Code, second.Body.String())
		}
	})

	t.Run("missing query is a bad request", func(t *testing.T) {
		env := setupTestEnv(t)

		w := doJSON(t, env.router, "POST", "/api/v1/pricing/search", `{"brand": "Pyrex"}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("marketplace failure maps to bad gateway", func(t *testing.T) {
		env := setupTestEnv(t)
		env.market.err = domain.ErrEbayAPIFailure

		w := doJSON(t, env.router, "POST", "/api/v1/pricing/search", `{"search_query": "anything"}`)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadGateway)
		}
	})
}

func TestPriceItemsEndpoint(t *testing.T) {
	t.Run("dedupes, persists and prices a batch", func(t *testing.T) {
		env := setupTestEnv(t)
		env.market.listings["pyrex 401 primary blue bowl"] = []domain.SoldListing{
			{Title: "Pyrex 401", SoldPrice: 22.00, Currency: "USD"},
		}

		payload := `{"sale_id": "sale-9", "items": [
			{"item_id": "a", "photo_id": "p1", "name": "Pyrex 401 Primary Blue Bowl",
			 "category": "kitchenware", "search_query": "pyrex 401 primary blue bowl",
			 "confidence": "high", "identified_at": "` + time.Now().UTC().Format(time.RFC3339) + `"},
			{"item_id": "b", "photo_id": "p2", "name": "Pyrex 401 Blue Mixing Bowl",
			 "category": "kitchenware", "search_query": "pyrex 401 blue mixing bowl",
			 "confidence": "medium", "identified_at": "` + time.Now().UTC().Format(time.RFC3339) + `"}
		]}`
		w := doJSON(t, env.router, "POST", "/api/v1/items/price", payload)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var response struct {
			Items   []domain.IdentifiedItem          `json:"items"`
			Pricing map[string]*domain.PricingResult `json:"pricing"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if len(response.Items) != 1 {
			t.Fatalf("len(items) = %d, want 1 after dedup", len(response.Items))
		}
		if _, ok := response.Pricing["a"]; !ok {
			t.Errorf("pricing missing for surviving item %q", "a")
		}

		// The surviving item must be persisted under the sale.
		stored, err := env.store.GetItemsForSale(context.Background(), "sale-9")
		if err != nil {
			t.Fatalf("GetItemsForSale: %v", err)
		}
		if len(stored) != 1 || stored[0].ItemID != "a" {
			t.Errorf("stored items = %+v, want the single survivor", stored)
		}
	})
}

func TestItemPricingEndpoint(t *testing.T) {
	t.Run("unknown item is a 404", func(t *testing.T) {
		env := setupTestEnv(t)

		w := doJSON(t, env.router, "GET", "/api/v1/items/nope/pricing", "")

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("returns stored pricing after a batch run", func(t *testing.T) {
		env := setupTestEnv(t)
		env.market.listings["brass lamp"] = []domain.SoldListing{
			{Title: "Brass Lamp", SoldPrice: 45.00, Currency: "USD"},
		}

		payload := `{"items": [
			{"item_id": "lamp-1", "photo_id": "p1", "name": "Brass Lamp",
			 "category": "other", "search_query": "brass lamp", "confidence": "low",
			 "identified_at": "` + time.Now().UTC().Format(time.RFC3339) + `"}
		]}`
		if w := doJSON(t, env.router, "POST", "/api/v1/items/price", payload); w.Code != http.StatusOK {
			t.Fatalf("price batch: Status = %d (body: %s)", w.Code, w.Body.String())
		}

		w := doJSON(t, env.router, "GET", "/api/v1/items/lamp-1/pricing", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var result domain.PricingResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if result.ItemID != "lamp-1" {
			t.Errorf("item_id = %q, want lamp-1", result.ItemID)
		}
	})
}

func TestRepriceEndpoint(t *testing.T) {
	t.Run("unknown sale is a 404", func(t *testing.T) {
		env := setupTestEnv(t)

		w := doJSON(t, env.router, "POST", "/api/v1/sales/nope/reprice", "")

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("reprices stored items with fresh comps", func(t *testing.T) {
		env := setupTestEnv(t)
		ctx := context.Background()

		sale := &domain.Sale{
			SaleID:    "sale-5",
			SourceURL: "https://www.estatesales.net/sale/5",
			ScrapedAt: time.Now().UTC(),
		}
		if err := env.store.SaveSale(ctx, sale); err != nil {
			t.Fatalf("SaveSale: %v", err)
		}
		item := &domain.IdentifiedItem{
			ItemID:       "chair-1",
			PhotoID:      "p1",
			SaleID:       "sale-5",
			Name:         "Eames Chair",
			Category:     domain.CategoryFurniture,
			SearchQuery:  "eames lounge chair",
			Confidence:   domain.ItemConfidenceHigh,
			IdentifiedAt: time.Now().UTC(),
		}
		if err := env.store.SaveItem(ctx, item); err != nil {
			t.Fatalf("SaveItem: %v", err)
		}

		env.market.listings["eames lounge chair"] = []domain.SoldListing{
			{Title: "Eames Lounge Chair", SoldPrice: 1200.00, Currency: "USD"},
		}

		w := doJSON(t, env.router, "POST", "/api/v1/sales/sale-5/reprice", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var response struct {
			SaleID  string                           `json:"sale_id"`
			Pricing map[string]*domain.PricingResult `json:"pricing"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		result, ok := response.Pricing["chair-1"]
		if !ok {
			t.Fatalf("pricing missing for chair-1: %s", w.Body.String())
		}
		if result.PriceMedian == nil || *result.PriceMedian != 1200.00 {
			t.Errorf("price_median = %v, want 1200.00", result.PriceMedian)
		}
	})
}
