package scraper

import (
	"context"
	"testing"

	"pricelens/config"
	"pricelens/models"
)

func newTestSelector(responses map[string]stubResponse) (*SiteSelector, *config.ScraperConfig) {
	fetcher, cfg := newStubFetcher(responses)
	prober := NewProber(fetcher, cfg)
	classifier := NewClassifier(config.KnownRetailers())
	return NewSiteSelector(prober, classifier, cfg), cfg
}

func TestSelectRegionSitesRanksOfficialFirst(t *testing.T) {
	// Guessed domains are unreachable, so discovery goes through search.
	// The search page lists an unknown site before a retailer; ranking
	// must still put the retailer first.
	searchHTML := `<html><body>
		<cite>https://some-blog.example/acme-review</cite>
		<cite>https://www.amazon.com/stores/acme</cite>
		<cite>https://www.acme-shop.example</cite>
	</body></html>`

	selector, _ := newTestSelector(map[string]stubResponse{
		"https://search.test/search?q=Acme+official+store+United+States": {status: 200, body: searchHTML},
	})

	sites := selector.SelectRegionSites(context.Background(), "Acme", testRegionUS)
	if len(sites) != 3 {
		t.Fatalf("expected 3 sites, got %d", len(sites))
	}
	if sites[0].Type != models.SiteTypeOfficial {
		t.Fatalf("sites[0].Type = %s, want official", sites[0].Type)
	}
	if sites[1].Type != models.SiteTypeRetailer {
		t.Fatalf("sites[1].Type = %s, want retailer", sites[1].Type)
	}
	if sites[2].Type != models.SiteTypeUnknown {
		t.Fatalf("sites[2].Type = %s, want unknown", sites[2].Type)
	}
}

func TestSelectRegionSitesHonorsCap(t *testing.T) {
	selector, cfg := newTestSelector(map[string]stubResponse{
		"https://www.acme.com": {status: 200},
		"https://acme.com":     {status: 200},
		"https://www.acme.us":  {status: 200},
	})
	cfg.MaxSitesPerRegion = 2

	sites := selector.SelectRegionSites(context.Background(), "Acme", testRegionUS)
	if len(sites) != 2 {
		t.Fatalf("expected cap of 2 sites, got %d", len(sites))
	}
}

func TestSelectBestSitesOmitsEmptyRegions(t *testing.T) {
	// Only the US storefront exists. Every other region must be absent
	// from the map rather than mapped to an empty slice.
	selector, _ := newTestSelector(map[string]stubResponse{
		"https://www.acme.com": {status: 200},
	})

	result := selector.SelectBestSites(context.Background(), "Acme")
	if len(result) != 1 {
		t.Fatalf("expected exactly one region, got %d: %v", len(result), result)
	}
	sites, ok := result["US"]
	if !ok {
		t.Fatalf("expected US region in result, got %v", result)
	}
	if len(sites) != 1 || sites[0].URL != "https://www.acme.com" {
		t.Fatalf("unexpected US sites: %v", sites)
	}
	if sites[0].RegionCode != "US" {
		t.Fatalf("site region = %q, want US", sites[0].RegionCode)
	}
}

func TestSelectRegionSitesNeverPanicsOnUnreachableBrand(t *testing.T) {
	selector, _ := newTestSelector(nil)

	sites := selector.SelectRegionSites(context.Background(), "Nonexistent Brand", testRegionUS)
	if len(sites) != 0 {
		t.Fatalf("expected no sites, got %v", sites)
	}
}
