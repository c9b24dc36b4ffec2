package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estatelens/backend/internal/domain"
	"github.com/estatelens/backend/internal/infrastructure/vision"
	"github.com/estatelens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pricing *usecase.PricingService
	dedup   *usecase.Deduplicator
	items   domain.ItemStore
}

// NewHandler creates a new HTTP handler
func NewHandler(pricing *usecase.PricingService, dedup *usecase.Deduplicator, items domain.ItemStore) *Handler {
	return &Handler{
		pricing: pricing,
		dedup:   dedup,
		items:   items,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "estatelens-backend",
		"version": "1.0.0",
	})
}

type dedupRequest struct {
	Items []domain.IdentifiedItem `json:"items" binding:"required"`
}

// DeduplicateItems collapses near-duplicate items from a batch of analyzed
// photos into a canonical set.
func (h *Handler) DeduplicateItems(c *gin.Context) {
	var req dedupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	unique := h.dedup.Deduplicate(req.Items)

	c.JSON(http.StatusOK, gin.H{
		"items":        unique,
		"input_count":  len(req.Items),
		"output_count": len(unique),
	})
}

type parseRequest struct {
	Response  string `json:"response" binding:"required"`
	SaleID    string `json:"sale_id"`
	ImagePath string `json:"image_path" binding:"required"`
}

// ParseVisionResponse converts a raw vision-model response into validated
// identified items. The model call itself happens outside this service.
func (h *Handler) ParseVisionResponse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	items, err := vision.ParseItems(req.Response, req.SaleID, req.ImagePath)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

type priceBatchRequest struct {
	SaleID string                  `json:"sale_id"`
	Items  []domain.IdentifiedItem `json:"items" binding:"required"`
}

// PriceItems deduplicates a batch of identified items, persists them, prices
// each one and returns the pricing keyed by item id. Items that fail to
// price are absent from the map, per the skip-and-continue batch policy.
func (h *Handler) PriceItems(c *gin.Context) {
	var req priceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	unique := h.dedup.Deduplicate(req.Items)

	for i := range unique {
		if req.SaleID != "" {
			unique[i].SaleID = req.SaleID
		}
		if err := h.items.SaveItem(c.Request.Context(), &unique[i]); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist items"})
			return
		}
	}

	pricing := h.pricing.PriceItems(c.Request.Context(), unique)

	c.JSON(http.StatusOK, gin.H{
		"items":   unique,
		"pricing": pricing,
	})
}

type priceSearchRequest struct {
	SearchQuery string `json:"search_query" binding:"required"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
}

// SearchPricing prices a standalone search query without a prior photo
// analysis, using the same broadened search and statistics as item pricing.
func (h *Handler) SearchPricing(c *gin.Context) {
	var req priceSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	item := domain.IdentifiedItem{
		ItemID:      uuid.NewString(),
		Name:        req.SearchQuery,
		Category:    domain.ParseCategory(req.Category),
		Brand:       req.Brand,
		SearchQuery: req.SearchQuery,
	}

	result, err := h.pricing.PriceItem(c.Request.Context(), &item)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetItemPricing returns the most recent stored pricing for an item.
func (h *Handler) GetItemPricing(c *gin.Context) {
	itemID := c.Param("itemId")

	result, err := h.pricing.GetPricingForItem(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RepriceSale re-prices every stored item of a sale with fresh marketplace
// data, bypassing the pricing cache.
func (h *Handler) RepriceSale(c *gin.Context) {
	saleID := c.Param("saleId")

	pricing, err := h.pricing.RepriceSale(c.Request.Context(), saleID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sale_id": saleID,
		"pricing": pricing,
	})
}

// statusForError maps domain sentinel errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrSaleNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEbayAuthFailure), errors.Is(err, domain.ErrEbayAPIFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
