package scraper

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

const productGridHTML = `<html><body>
	<div class="product-card"><h3>Align Leggings</h3><span class="price">$98.00</span><a href="/p/align"><img src="/img/align.jpg"></a></div>
	<div class="product-card"><h3>Wunder Train Tights</h3><span class="price">$108.00</span><a href="/p/wunder"></a></div>
	<div class="product-card"><h3>Define Jacket</h3><span class="price">$128.00</span><a href="/p/define"></a></div>
	<div class="product-card"><h3>Scuba Hoodie</h3><span class="price">$118.00</span><a href="/p/scuba"></a></div>
	<div class="product-card"><h3>Swiftly Tech Shirt</h3><span class="price">$78.00</span><a href="/p/swiftly"></a></div>
</body></html>`

func TestStructuredScanExtractsAllCards(t *testing.T) {
	doc := mustParse(t, productGridHTML)
	scan := &structuredScan{parser: NewPriceParser()}

	records := scan.TryExtract(context.Background(), doc, "https://www.acme.com/shop", 10)
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	for _, record := range records {
		if record.Price <= 0 {
			t.Fatalf("record %q has non-positive price %.2f", record.Name, record.Price)
		}
		if record.Name == "" {
			t.Fatalf("record with empty name: %+v", record)
		}
	}
	if records[0].Name != "Align Leggings" || records[0].Price != 98.00 {
		t.Fatalf("first record = %q %.2f, want Align Leggings 98.00", records[0].Name, records[0].Price)
	}
	if records[0].SourceURL != "https://www.acme.com/p/align" {
		t.Fatalf("relative link not resolved: %s", records[0].SourceURL)
	}
	if records[0].ImageURL != "https://www.acme.com/img/align.jpg" {
		t.Fatalf("relative image not resolved: %s", records[0].ImageURL)
	}
}

func TestStructuredScanHonorsLimit(t *testing.T) {
	doc := mustParse(t, productGridHTML)
	scan := &structuredScan{parser: NewPriceParser()}

	records := scan.TryExtract(context.Background(), doc, "https://www.acme.com", 2)
	if len(records) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(records))
	}
}

func TestStructuredScanSkipsCardsWithoutPrices(t *testing.T) {
	html := `<html><body>
		<div class="product-card"><h3>Coming Soon Jacket</h3><span class="price">Sold out</span></div>
		<div class="product-card"><h3>Align Leggings</h3><span class="price">$98.00</span></div>
	</body></html>`
	doc := mustParse(t, html)
	scan := &structuredScan{parser: NewPriceParser()}

	records := scan.TryExtract(context.Background(), doc, "https://www.acme.com", 10)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "Align Leggings" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestExtractAcceptsFirstStrategyOverThreshold(t *testing.T) {
	fetcher, cfg := newStubFetcher(nil)
	extractor := NewExtractor(fetcher, cfg)

	doc := mustParse(t, productGridHTML)
	records := extractor.Extract(context.Background(), doc, "https://www.acme.com", 10)
	if len(records) != 5 {
		t.Fatalf("expected 5 records from the structured scan, got %d", len(records))
	}
}

func TestExtractReturnsBestEffortBelowThreshold(t *testing.T) {
	// A single card never reaches the acceptance threshold, but the
	// cascade still returns it rather than nothing.
	html := `<html><body>
		<div class="product-card"><h3>Align Leggings</h3><span class="price">$98.00</span></div>
	</body></html>`
	fetcher, cfg := newStubFetcher(nil)
	extractor := NewExtractor(fetcher, cfg)

	records := extractor.Extract(context.Background(), mustParse(t, html), "https://www.acme.com", 10)
	if len(records) != 1 {
		t.Fatalf("expected best-effort single record, got %d", len(records))
	}
}

func TestExtractFromURLSwallowsFetchErrors(t *testing.T) {
	fetcher, cfg := newStubFetcher(nil)
	extractor := NewExtractor(fetcher, cfg)

	records := extractor.ExtractFromURL(context.Background(), "https://unreachable.example", 10)
	if records != nil {
		t.Fatalf("expected nil records for unreachable page, got %v", records)
	}
}

func TestCatalogProbeWalksKnownPaths(t *testing.T) {
	responses := map[string]stubResponse{
		"https://www.acme.com/collections/all": {status: 200, body: productGridHTML},
	}
	fetcher, _ := newStubFetcher(responses)
	probe := &catalogProbe{fetcher: fetcher, parser: NewPriceParser()}

	records := probe.TryExtract(context.Background(), nil, "https://www.acme.com/some/page", 10)
	if len(records) != 5 {
		t.Fatalf("expected 5 records from catalog path, got %d", len(records))
	}
}

func TestCategoryDiscoveryFollowsInSiteLinksOnly(t *testing.T) {
	landing := `<html><body>
		<a href="/collections/leggings">Leggings collection</a>
		<a href="https://other-site.example/collections/shoes">external collection</a>
		<a href="/about">About us</a>
	</body></html>`
	responses := map[string]stubResponse{
		"https://www.acme.com/collections/leggings": {status: 200, body: productGridHTML},
	}
	fetcher, _ := newStubFetcher(responses)
	discovery := &categoryDiscovery{fetcher: fetcher, parser: NewPriceParser(), maxPages: 3}

	records := discovery.TryExtract(context.Background(), mustParse(t, landing), "https://www.acme.com", 10)
	if len(records) != 5 {
		t.Fatalf("expected 5 records via category link, got %d", len(records))
	}
}

func TestPricePatternFallbackDeduplicatesByName(t *testing.T) {
	html := `<html><body>
		<div><h3>Classic Logo Tee</h3><span>$19.99</span></div>
		<div><h3>Classic Logo Tee</h3><span>$19.99</span></div>
	</body></html>`
	fallback := &pricePatternFallback{parser: NewPriceParser()}

	records := fallback.TryExtract(context.Background(), mustParse(t, html), "https://www.acme.com", 10)
	if len(records) != 1 {
		t.Fatalf("expected 1 deduplicated record, got %d", len(records))
	}
	if records[0].Name != "Classic Logo Tee" || records[0].Price != 19.99 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestPricePatternFallbackRejectsShortNames(t *testing.T) {
	html := `<html><body>
		<div><h3>Tee</h3><span>$19.99</span></div>
	</body></html>`
	fallback := &pricePatternFallback{parser: NewPriceParser()}

	records := fallback.TryExtract(context.Background(), mustParse(t, html), "https://www.acme.com", 10)
	if len(records) != 0 {
		t.Fatalf("expected no records for too-short name, got %v", records)
	}
}

func TestPricePatternFallbackInfersCurrency(t *testing.T) {
	html := `<html><body>
		<div><h3>Classic Logo Tee</h3><span>€24.99</span></div>
	</body></html>`
	fallback := &pricePatternFallback{parser: NewPriceParser()}

	records := fallback.TryExtract(context.Background(), mustParse(t, html), "https://www.acme.com", 10)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Currency != "EUR" {
		t.Fatalf("currency = %q, want EUR", records[0].Currency)
	}
}
