package scraper

import (
	"context"
	"log"
	"net/url"
	"strings"

	"pricelens/config"

	"github.com/PuerkitoBio/goquery"
)

// Prober discovers reachable candidate storefronts for a brand in one
// region. Unreachable candidates are silently excluded; probing never
// returns an error.
type Prober struct {
	fetcher *Fetcher
	cfg     *config.ScraperConfig
}

// NewProber creates a prober sharing the pipeline fetcher.
func NewProber(fetcher *Fetcher, cfg *config.ScraperConfig) *Prober {
	return &Prober{fetcher: fetcher, cfg: cfg}
}

// CandidateURLs builds the fixed guess list for a brand and region:
// {www.,""} x normalized brand x candidate domains.
func CandidateURLs(brandName string, region config.Region) []string {
	brand := NormalizeBrand(brandName)
	if brand == "" {
		return nil
	}

	var candidates []string
	for _, domain := range region.Domains {
		candidates = append(candidates,
			"https://www."+brand+"."+domain,
			"https://"+brand+"."+domain,
		)
	}
	return candidates
}

// Probe returns the subset of candidate URLs that respond with a status
// below 400. When no guessed domain is reachable it falls back to a
// general web search before giving up with an empty slice.
func (p *Prober) Probe(ctx context.Context, brandName string, region config.Region) []string {
	var reachable []string
	for _, candidate := range CandidateURLs(brandName, region) {
		if ctx.Err() != nil {
			return reachable
		}
		if p.fetcher.Head(ctx, candidate) {
			reachable = append(reachable, candidate)
		}
	}

	if len(reachable) == 0 {
		reachable = p.searchFallback(ctx, brandName, region)
	}
	return reachable
}

// searchFallback scrapes a web search results page for candidate links.
// Best effort: any failure yields an empty result, never an error.
func (p *Prober) searchFallback(ctx context.Context, brandName string, region config.Region) []string {
	queries := []string{
		brandName + " official store " + region.DisplayName,
		brandName + " official website " + region.DisplayName,
	}

	seen := make(map[string]bool)
	var found []string

	for _, query := range queries {
		searchURL := p.cfg.SearchEngineURL + "?q=" + url.QueryEscape(query)
		doc, err := p.fetcher.Fetch(ctx, searchURL)
		if err != nil {
			log.Printf("Search fallback failed for %q: %v", query, err)
			continue
		}

		for _, link := range extractSearchResultLinks(doc) {
			if seen[link] {
				continue
			}
			seen[link] = true
			found = append(found, link)
			if len(found) >= 10 {
				return found
			}
		}
		if len(found) > 0 {
			break
		}
	}
	return found
}

// extractSearchResultLinks pulls result URLs from a search results page.
// Three shapes are tried: cite elements, /url?q= redirect hrefs and
// data-url attributes.
func extractSearchResultLinks(doc *goquery.Document) []string {
	var links []string

	doc.Find("cite").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if strings.HasPrefix(text, "http") {
			links = append(links, text)
		}
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, "/url?q=") {
			return
		}
		target := strings.TrimPrefix(href, "/url?q=")
		if idx := strings.Index(target, "&"); idx >= 0 {
			target = target[:idx]
		}
		if decoded, err := url.QueryUnescape(target); err == nil {
			target = decoded
		}
		if strings.HasPrefix(target, "http") {
			links = append(links, target)
		}
	})

	doc.Find("[data-url]").Each(func(_ int, sel *goquery.Selection) {
		if target, ok := sel.Attr("data-url"); ok && strings.HasPrefix(target, "http") {
			links = append(links, target)
		}
	})

	return links
}
