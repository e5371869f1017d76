package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"pricelens/config"
	"pricelens/database"
	"pricelens/handlers"
	"pricelens/middleware"
	"pricelens/scheduler"
	"pricelens/scraper"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	cfg := config.DefaultScraperConfig()

	// Scraping pipeline: prober finds sites, classifier ranks them,
	// extractor pulls products, aggregator compares across regions.
	fetcher := scraper.NewFetcher(nil, cfg)
	prober := scraper.NewProber(fetcher, cfg)
	classifier := scraper.NewClassifier(config.KnownRetailers())
	selector := scraper.NewSiteSelector(prober, classifier, cfg)
	extractor := scraper.NewExtractor(fetcher, cfg)
	defer extractor.Close()
	aggregator := scraper.NewAggregator(selector, extractor, cfg)

	h := handlers.NewHandlers(cfg, selector, extractor, aggregator)
	defer h.Close()

	watchChecker := scheduler.NewWatchChecker(h.RunComparison())
	watchChecker.Start()
	defer watchChecker.Stop()

	r := mux.NewRouter()

	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(2))

	// Health and monitoring endpoints (no auth required)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/status", h.GetStatus).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(middleware.APIKeyMiddleware())

	// Discovery and comparison
	apiV1.HandleFunc("/regions", h.GetRegions).Methods("GET")
	apiV1.HandleFunc("/brands/search", h.SearchBrand).Methods("POST")
	apiV1.HandleFunc("/products/compare", h.CompareProduct).Methods("POST")
	apiV1.HandleFunc("/products/compare-async", h.CompareProductAsync).Methods("POST")
	apiV1.HandleFunc("/products/featured", h.GetFeaturedProducts).Methods("GET")

	// Task management
	apiV1.HandleFunc("/tasks/stats", h.GetTaskStats).Methods("GET")
	apiV1.HandleFunc("/tasks/{taskId}", h.GetTaskStatus).Methods("GET")

	// Comparison export and insights
	apiV1.HandleFunc("/comparisons/{id}/export", h.ExportComparison).Methods("GET")
	apiV1.HandleFunc("/comparisons/{id}/insights", h.GetComparisonInsights).Methods("GET")

	// Brand watches
	apiV1.HandleFunc("/watches", h.AddWatch).Methods("POST")
	apiV1.HandleFunc("/watches", h.GetWatches).Methods("GET")
	apiV1.HandleFunc("/watches/{id}", h.DeleteWatch).Methods("DELETE")
	apiV1.HandleFunc("/watches/{id}/history", h.GetWatchHistory).Methods("GET")

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(allowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	host := os.Getenv("HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	log.Printf("🌐 Server starting on port %s", port)
	log.Printf("📋 API Documentation:")
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /status - Detailed status")
	log.Printf("   GET  /api/v1/regions - Supported regions")
	log.Printf("   POST /api/v1/brands/search - Discover brand sites per region")
	log.Printf("   POST /api/v1/products/compare - Compare prices across regions")
	log.Printf("   POST /api/v1/products/compare-async - Queue a comparison")
	log.Printf("   GET  /api/v1/products/featured - Top products from a brand site")
	log.Printf("   POST /api/v1/watches - Watch a brand/product pair")

	log.Fatal(http.ListenAndServe(host+":"+port, c.Handler(r)))
}
