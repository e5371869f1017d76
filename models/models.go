package models

import (
	"time"
)

// SiteType classifies a discovered site.
type SiteType string

const (
	SiteTypeOfficial SiteType = "official"
	SiteTypeRetailer SiteType = "retailer"
	SiteTypeUnknown  SiteType = "unknown"
)

// Site is a reachable candidate storefront discovered for one brand search.
// Sites live only for the duration of a search session.
type Site struct {
	URL        string   `json:"url"`
	Domain     string   `json:"domain"`
	Type       SiteType `json:"type"`
	RegionCode string   `json:"region"`
	Score      int      `json:"score"`
}

// ProductRecord is one scraped candidate product. Records are value
// objects; identity is (name, source URL) for de-duplication purposes.
type ProductRecord struct {
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	SourceURL   string    `json:"source_url"`
	ImageURL    string    `json:"image_url,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// RegionalPriceEntry is the best observed price for a product in one
// region. The aggregator guarantees at most one entry per region.
type RegionalPriceEntry struct {
	RegionCode     string   `json:"region"`
	RegionName     string   `json:"region_name"`
	ProductName    string   `json:"product_name"`
	Price          float64  `json:"price"`
	CurrencyCode   string   `json:"currency_code"`
	CurrencySymbol string   `json:"currency_symbol"`
	SourceSite     string   `json:"source_site"`
	SourceURL      string   `json:"source_url"`
	SiteType       SiteType `json:"site_type"`
}

// BestDeal identifies the cheapest regional entry of a comparison.
type BestDeal struct {
	RegionCode     string  `json:"region"`
	RegionName     string  `json:"region_name"`
	Price          float64 `json:"price"`
	CurrencyCode   string  `json:"currency_code"`
	CurrencySymbol string  `json:"currency_symbol"`
	SourceSite     string  `json:"source_site"`
	SourceURL      string  `json:"source_url"`
}

// ComparisonResult is the output of one product aggregation across regions.
type ComparisonResult struct {
	ID          string                        `json:"id"`
	BrandName   string                        `json:"brand"`
	ProductName string                        `json:"product_name"`
	Entries     map[string]RegionalPriceEntry `json:"entries"`
	BestDeal    *BestDeal                     `json:"best_deal,omitempty"`
	SearchedAt  time.Time                     `json:"searched_at"`
}

// PriceRow is one row of the tabular output schema consumed by the
// presentation layer (UI tables and CSV export share this contract).
type PriceRow struct {
	Region       string `json:"region"`
	Price        string `json:"price"` // formatted with currency symbol
	CurrencyCode string `json:"currency_code"`
	SourceSite   string `json:"source_site"`
	ProductName  string `json:"product_name"`
}

// SearchBrandRequest asks for site discovery across all regions.
type SearchBrandRequest struct {
	BrandName string `json:"brand"`
}

// CompareProductRequest asks for a cross-region price comparison.
type CompareProductRequest struct {
	BrandName   string `json:"brand"`
	ProductName string `json:"product"`
}

// BrandWatch is a saved brand+product pair refreshed on a schedule.
type BrandWatch struct {
	ID          int        `json:"id" db:"id"`
	BrandName   string     `json:"brand" db:"brand"`
	ProductName string     `json:"product" db:"product"`
	LastChecked *time.Time `json:"last_checked" db:"last_checked"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	IsActive    bool       `json:"is_active" db:"is_active"`
}

// PriceSnapshot is one persisted regional best-price observation.
type PriceSnapshot struct {
	ID           int       `json:"id" db:"id"`
	WatchID      int       `json:"watch_id" db:"watch_id"`
	RegionCode   string    `json:"region" db:"region"`
	Price        float64   `json:"price" db:"price"`
	CurrencyCode string    `json:"currency_code" db:"currency_code"`
	SourceURL    string    `json:"source_url" db:"source_url"`
	CheckedAt    time.Time `json:"checked_at" db:"checked_at"`
}

// AddWatchRequest creates a new brand watch.
type AddWatchRequest struct {
	BrandName   string `json:"brand"`
	ProductName string `json:"product"`
}

// InsightSummary is the serialized summary handed to the AI collaborator.
type InsightSummary struct {
	Brand           string             `json:"brand"`
	Product         string             `json:"product"`
	TotalEntries    int                `json:"total_entries"`
	MinPrice        float64            `json:"min_price"`
	MaxPrice        float64            `json:"max_price"`
	AvgPrice        float64            `json:"avg_price"`
	PriceByRegion   map[string]float64 `json:"price_by_region"`
	CheapestRegion  string             `json:"cheapest_region"`
	PriceDifference float64            `json:"price_difference"`
}
