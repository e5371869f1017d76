package scraper

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"pricelens/config"

	"github.com/PuerkitoBio/goquery"
)

var testRegionUS = config.Region{
	Code:           "US",
	DisplayName:    "United States",
	CurrencyCode:   "USD",
	CurrencySymbol: "$",
	Domains:        []string{"com", "us"},
}

func TestCandidateURLs(t *testing.T) {
	got := CandidateURLs("Acme Co", testRegionUS)
	want := []string{
		"https://www.acmeco.com",
		"https://acmeco.com",
		"https://www.acmeco.us",
		"https://acmeco.us",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CandidateURLs = %v, want %v", got, want)
	}
}

func TestCandidateURLsEmptyBrand(t *testing.T) {
	if got := CandidateURLs("   ", testRegionUS); got != nil {
		t.Fatalf("expected nil for blank brand, got %v", got)
	}
}

func TestProbeKeepsOnlyReachableCandidates(t *testing.T) {
	fetcher, cfg := newStubFetcher(map[string]stubResponse{
		"https://www.acme.com": {status: 200},
		"https://acme.com":     {status: 500}, // responds, but broken
	})
	prober := NewProber(fetcher, cfg)

	got := prober.Probe(context.Background(), "Acme", testRegionUS)
	want := []string{"https://www.acme.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Probe = %v, want %v", got, want)
	}
}

func TestProbeRedirectStatusCountsAsReachable(t *testing.T) {
	fetcher, cfg := newStubFetcher(map[string]stubResponse{
		"https://www.acme.com": {status: 301},
	})
	prober := NewProber(fetcher, cfg)

	got := prober.Probe(context.Background(), "Acme", testRegionUS)
	if len(got) != 1 {
		t.Fatalf("expected redirect status to count as reachable, got %v", got)
	}
}

func TestProbeFallsBackToSearchWhenNothingReachable(t *testing.T) {
	searchHTML := `<html><body>
		<cite>https://shop-acme.example</cite>
		<a href="/url?q=https%3A%2F%2Fwww.amazon.com%2Fstores%2Facme&amp;sa=U">result</a>
		<div data-url="https://acme-outlet.example">result</div>
	</body></html>`

	fetcher, cfg := newStubFetcher(map[string]stubResponse{
		"https://search.test/search?q=Acme+official+store+United+States": {status: 200, body: searchHTML},
	})
	prober := NewProber(fetcher, cfg)

	got := prober.Probe(context.Background(), "Acme", testRegionUS)
	want := []string{
		"https://shop-acme.example",
		"https://www.amazon.com/stores/acme",
		"https://acme-outlet.example",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Probe fallback = %v, want %v", got, want)
	}
}

func TestProbeReturnsEmptyWhenEverythingFails(t *testing.T) {
	fetcher, cfg := newStubFetcher(nil)
	prober := NewProber(fetcher, cfg)

	if got := prober.Probe(context.Background(), "Acme", testRegionUS); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestExtractSearchResultLinksIgnoresRelativeAndJunk(t *testing.T) {
	html := `<html><body>
		<cite>www.acme.com (no scheme, skipped)</cite>
		<a href="/settings">internal</a>
		<a href="/url?q=not-a-url">junk redirect</a>
		<a href="/url?q=https://acme.example/page&amp;ved=xyz">good</a>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	got := extractSearchResultLinks(doc)
	want := []string{"https://acme.example/page"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("extractSearchResultLinks = %v, want %v", got, want)
	}
}
