package scraper

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"pricelens/config"
	"pricelens/models"
)

// Aggregator drives a full product comparison: for every region's
// selected sites it searches for the product, extracts candidate
// records, and keeps the lowest matching price per region.
type Aggregator struct {
	selector  *SiteSelector
	extractor *Extractor
	cfg       *config.ScraperConfig
}

func NewAggregator(selector *SiteSelector, extractor *Extractor, cfg *config.ScraperConfig) *Aggregator {
	return &Aggregator{
		selector:  selector,
		extractor: extractor,
		cfg:       cfg,
	}
}

// searchURLVariants builds the candidate search URLs for a site. Most
// storefronts answer one of these shapes.
func searchURLVariants(siteURL, productName string) []string {
	root := siteRoot(siteURL)
	encoded := url.QueryEscape(productName)
	return []string{
		root + "/search?q=" + encoded,
		root + "/search?query=" + encoded,
		root + "?q=" + encoded,
		root + "?search=" + encoded,
		root + "/search/" + encoded,
	}
}

// Compare searches every selected site of every region for the product
// and aggregates the lowest matching price per region. Regions where
// nothing matched are omitted. Site failures are logged and skipped.
func (a *Aggregator) Compare(ctx context.Context, brandName, productName string) (*models.ComparisonResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.SearchTimeout)
	defer cancel()

	sitesByRegion := a.selector.SelectBestSites(ctx, brandName)
	if len(sitesByRegion) == 0 {
		return nil, fmt.Errorf("no reachable sites found for brand %q", brandName)
	}

	entries := make(map[string]models.RegionalPriceEntry)
	for regionCode, sites := range sitesByRegion {
		if ctx.Err() != nil {
			break
		}
		region, ok := config.RegionByCode(regionCode)
		if !ok {
			continue
		}
		if entry, found := a.compareRegion(ctx, region, sites, productName); found {
			entries[regionCode] = entry
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no prices found for %q across %d regions", productName, len(sitesByRegion))
	}

	result := &models.ComparisonResult{
		ID:          generateComparisonID(),
		BrandName:   brandName,
		ProductName: productName,
		Entries:     entries,
		BestDeal:    bestDeal(entries),
		SearchedAt:  time.Now(),
	}
	return result, nil
}

// compareRegion returns the lowest matching price found on any of the
// region's sites.
func (a *Aggregator) compareRegion(ctx context.Context, region config.Region, sites []models.Site, productName string) (models.RegionalPriceEntry, bool) {
	var best models.RegionalPriceEntry
	found := false

	for _, site := range sites {
		record, ok := a.searchSite(ctx, site, productName)
		if !ok {
			continue
		}
		if !found || record.Price < best.Price {
			best = models.RegionalPriceEntry{
				RegionCode:     region.Code,
				RegionName:     region.DisplayName,
				ProductName:    record.Name,
				Price:          record.Price,
				CurrencyCode:   region.CurrencyCode,
				CurrencySymbol: region.CurrencySymbol,
				SourceSite:     site.URL,
				SourceURL:      record.SourceURL,
				SiteType:       site.Type,
			}
			found = true
		}
	}
	return best, found
}

// searchSite tries each search URL variant on one site and returns the
// cheapest record whose name matches the product.
func (a *Aggregator) searchSite(ctx context.Context, site models.Site, productName string) (models.ProductRecord, bool) {
	for _, searchURL := range searchURLVariants(site.URL, productName) {
		if ctx.Err() != nil {
			return models.ProductRecord{}, false
		}
		records := a.extractor.ExtractFromURL(ctx, searchURL, a.cfg.MaxProductsPerSite)
		if len(records) == 0 {
			continue
		}

		var best models.ProductRecord
		found := false
		for _, record := range records {
			if !nameMatches(record.Name, productName) {
				continue
			}
			if !found || record.Price < best.Price {
				best = record
				found = true
			}
		}
		if found {
			return best, true
		}
	}
	log.Printf("Aggregator: no match for %q on %s", productName, site.URL)
	return models.ProductRecord{}, false
}

// nameMatches is a case-insensitive substring check between an extracted
// record name and the requested product name, in either direction.
func nameMatches(recordName, productName string) bool {
	r := strings.ToLower(strings.TrimSpace(recordName))
	p := strings.ToLower(strings.TrimSpace(productName))
	if r == "" || p == "" {
		return false
	}
	return strings.Contains(r, p) || strings.Contains(p, r)
}

func generateComparisonID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("cmp_%d", time.Now().UnixNano())
	}
	return "cmp_" + hex.EncodeToString(buf)
}

// bestDeal picks the entry with the lowest price across regions. Ties
// break on region code so repeated runs stay deterministic.
func bestDeal(entries map[string]models.RegionalPriceEntry) *models.BestDeal {
	codes := make([]string, 0, len(entries))
	for code := range entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var deal *models.BestDeal
	for _, code := range codes {
		entry := entries[code]
		if deal == nil || entry.Price < deal.Price {
			deal = &models.BestDeal{
				RegionCode:     entry.RegionCode,
				RegionName:     entry.RegionName,
				Price:          entry.Price,
				CurrencyCode:   entry.CurrencyCode,
				CurrencySymbol: entry.CurrencySymbol,
				SourceSite:     entry.SourceSite,
				SourceURL:      entry.SourceURL,
			}
		}
	}
	return deal
}
