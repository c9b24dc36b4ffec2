package main

import (
	"fmt"
	"log"
	"os"

	"github.com/estatelens/backend/config"
	httpDelivery "github.com/estatelens/backend/internal/delivery/http"
	"github.com/estatelens/backend/internal/infrastructure/ebay"
	"github.com/estatelens/backend/internal/infrastructure/store"
	"github.com/estatelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting EstateLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Database: %s", cfg.Database.Path)

	// Initialize infrastructure dependencies
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := store.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to apply database schema: %v", err)
	}
	dataStore := store.NewStore(db)

	ebayClient := ebay.NewClient(ebay.Config{
		ClientID:     cfg.Ebay.ClientID,
		ClientSecret: cfg.Ebay.ClientSecret,
		AuthURL:      cfg.Ebay.AuthURL,
		BaseURL:      cfg.Ebay.BaseURL,
	})
	defer ebayClient.Close()
	log.Printf("eBay API configured: %s (client: %s...)", cfg.Ebay.BaseURL, cfg.Ebay.ClientID[:min(8, len(cfg.Ebay.ClientID))])

	// Initialize usecase layer
	pricingService := usecase.NewPricingService(
		dataStore,
		dataStore,
		ebayClient,
		usecase.PricingServiceConfig{
			CacheTTL:            cfg.Pricing.CacheTTL,
			MaxComps:            cfg.Pricing.MaxComps,
			OutlierStdDevs:      cfg.Pricing.OutlierStdDevs,
			BroadeningThreshold: cfg.Pricing.BroadeningThreshold,
		},
	)

	deduplicator := usecase.NewDeduplicator(usecase.DedupConfig{
		NameThreshold:  cfg.Dedup.NameThreshold,
		QueryThreshold: cfg.Dedup.QueryThreshold,
	})

	log.Printf("Pricing: cache_ttl=%s, max_comps=%d, outlier_std_devs=%.1f",
		cfg.Pricing.CacheTTL, cfg.Pricing.MaxComps, cfg.Pricing.OutlierStdDevs)
	log.Printf("Dedup: name_threshold=%.2f, query_threshold=%.2f",
		cfg.Dedup.NameThreshold, cfg.Dedup.QueryThreshold)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(pricingService, deduplicator, dataStore)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
