package scraper

import (
	"context"
	"strings"

	"pricelens/models"

	"github.com/PuerkitoBio/goquery"
)

// catalogPaths are listing pages most storefront platforms expose at
// well-known locations.
var catalogPaths = []string{
	"/collections/all",
	"/products",
	"/shop",
}

// catalogProbe fetches the known catalog paths under the site root and
// runs the structured scan over each until one yields records.
type catalogProbe struct {
	fetcher *Fetcher
	parser  *PriceParser
}

func (c *catalogProbe) Name() string { return "catalog-paths" }

func (c *catalogProbe) TryExtract(ctx context.Context, _ *goquery.Document, baseURL string, limit int) []models.ProductRecord {
	scan := &structuredScan{parser: c.parser}
	root := siteRoot(baseURL)

	for _, path := range catalogPaths {
		if ctx.Err() != nil {
			return nil
		}
		pageURL := root + path
		doc, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			continue
		}
		if records := scan.TryExtract(ctx, doc, pageURL, limit); len(records) > 0 {
			return records
		}
	}
	return nil
}

// categoryHints mark anchors that likely lead to product listings.
var categoryHints = []string{"collection", "category", "categories", "shop", "products", "catalog"}

// categoryDiscovery walks links on the landing page that look like
// category or collection pages and scans the first few of them.
type categoryDiscovery struct {
	fetcher  *Fetcher
	parser   *PriceParser
	maxPages int
}

func (c *categoryDiscovery) Name() string { return "category-links" }

func (c *categoryDiscovery) TryExtract(ctx context.Context, doc *goquery.Document, baseURL string, limit int) []models.ProductRecord {
	if doc == nil {
		return nil
	}

	links := discoverCategoryLinks(doc, baseURL, c.maxPages)
	scan := &structuredScan{parser: c.parser}

	var records []models.ProductRecord
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		page, err := c.fetcher.Fetch(ctx, link)
		if err != nil {
			continue
		}
		for _, record := range scan.TryExtract(ctx, page, link, limit-len(records)) {
			records = append(records, record)
			if len(records) >= limit {
				return records
			}
		}
	}
	return records
}

// discoverCategoryLinks returns up to max in-site anchors whose href or
// text suggests a product listing page, deduplicated by URL.
func discoverCategoryLinks(doc *goquery.Document, baseURL string, max int) []string {
	seen := make(map[string]bool)
	var links []string
	root := siteRoot(baseURL)

	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		text := strings.ToLower(strings.TrimSpace(anchor.Text()))
		hrefLower := strings.ToLower(href)

		if !looksLikeCategory(hrefLower, text) {
			return true
		}
		full := absolutizeURL(baseURL, href)
		if !strings.HasPrefix(full, root) || seen[full] {
			return true
		}
		seen[full] = true
		links = append(links, full)
		return len(links) < max
	})
	return links
}

func looksLikeCategory(href, text string) bool {
	for _, hint := range categoryHints {
		if strings.Contains(href, hint) || strings.Contains(text, hint) {
			return true
		}
	}
	return false
}

// siteRoot reduces a page URL to its scheme and host.
func siteRoot(pageURL string) string {
	trimmed := pageURL
	scheme := "https://"
	if strings.HasPrefix(trimmed, "http://") {
		scheme = "http://"
		trimmed = strings.TrimPrefix(trimmed, "http://")
	} else {
		trimmed = strings.TrimPrefix(trimmed, "https://")
	}
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return scheme + trimmed
}
