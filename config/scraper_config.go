package config

import (
	"os"
	"strconv"
	"time"
)

// ScraperConfig holds every tunable knob of the discovery and extraction
// pipeline. Anti-blocking behavior (header rotation, jittered delays) is
// explicit configuration rather than inline literals so tests can zero it out.
type ScraperConfig struct {
	ProbeTimeout       time.Duration // HEAD reachability checks
	FetchTimeout       time.Duration // full page GETs
	SearchTimeout      time.Duration // overall budget for one brand/product search
	MaxSitesPerRegion  int
	MaxProductsPerSite int
	MinCardThreshold   int           // records a strategy must yield to be accepted
	MaxCategoryPages   int           // category links visited by the discovery strategy
	DelayMin           time.Duration // politeness delay bounds between requests
	DelayMax           time.Duration
	UserAgents         []string
	SearchEngineURL    string // secondary discovery path
	RenderedFallback   bool   // allow headless-browser fetch when static extraction is empty
}

// defaultUserAgents mirrors a small pool of realistic desktop browsers.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// DefaultScraperConfig returns the scraper configuration, with env overrides.
func DefaultScraperConfig() *ScraperConfig {
	return &ScraperConfig{
		ProbeTimeout:       getEnvDuration("PROBE_TIMEOUT", 5*time.Second),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		SearchTimeout:      getEnvDuration("SEARCH_TIMEOUT", 3*time.Minute),
		MaxSitesPerRegion:  getEnvInt("MAX_SITES_PER_REGION", 5),
		MaxProductsPerSite: getEnvInt("MAX_PRODUCTS_PER_SITE", 10),
		MinCardThreshold:   getEnvInt("MIN_CARD_THRESHOLD", 3),
		MaxCategoryPages:   getEnvInt("MAX_CATEGORY_PAGES", 3),
		DelayMin:           getEnvDuration("REQUEST_DELAY_MIN", 200*time.Millisecond),
		DelayMax:           getEnvDuration("REQUEST_DELAY_MAX", 800*time.Millisecond),
		UserAgents:         defaultUserAgents,
		SearchEngineURL:    getEnv("SEARCH_ENGINE_URL", "https://www.google.com/search"),
		RenderedFallback:   getEnvBool("RENDERED_FALLBACK", false),
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
