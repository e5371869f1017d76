package scraper

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"pricelens/config"
	"pricelens/models"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one heuristic for pulling product records out of a page.
// Strategies return an empty slice rather than errors; a failed fetch
// inside a strategy just means that candidate contributed nothing.
type Strategy interface {
	Name() string
	TryExtract(ctx context.Context, doc *goquery.Document, baseURL string, limit int) []models.ProductRecord
}

// Extractor runs an ordered strategy cascade over a fetched page and
// accepts the first strategy that yields enough records to look like real
// product cards rather than noise.
type Extractor struct {
	fetcher    *Fetcher
	parser     *PriceParser
	strategies []Strategy
	cfg        *config.ScraperConfig

	renderOnce sync.Once
	render     *RenderFetcher
}

// NewExtractor builds the default cascade: structured container scan,
// known catalog paths, category link discovery, then the price-pattern
// fallback.
func NewExtractor(fetcher *Fetcher, cfg *config.ScraperConfig) *Extractor {
	parser := NewPriceParser()
	ex := &Extractor{
		fetcher: fetcher,
		parser:  parser,
		cfg:     cfg,
	}
	ex.strategies = []Strategy{
		&structuredScan{parser: parser},
		&catalogProbe{fetcher: fetcher, parser: parser},
		&categoryDiscovery{fetcher: fetcher, parser: parser, maxPages: cfg.MaxCategoryPages},
		&pricePatternFallback{parser: parser},
	}
	return ex
}

// Strategies exposes the cascade for callers that want to append to it.
func (e *Extractor) Strategies() []Strategy {
	return e.strategies
}

// AddStrategy appends a strategy to the end of the cascade.
func (e *Extractor) AddStrategy(s Strategy) {
	e.strategies = append(e.strategies, s)
}

// Extract applies the cascade to an already fetched document. The first
// strategy producing at least the configured threshold wins; when none
// reaches it, the largest non-empty result is returned as best effort.
func (e *Extractor) Extract(ctx context.Context, doc *goquery.Document, baseURL string, limit int) []models.ProductRecord {
	if limit <= 0 {
		limit = e.cfg.MaxProductsPerSite
	}

	var best []models.ProductRecord
	for _, strategy := range e.strategies {
		if ctx.Err() != nil {
			break
		}
		records := strategy.TryExtract(ctx, doc, baseURL, limit)
		if len(records) >= e.cfg.MinCardThreshold {
			log.Printf("Extractor: strategy %q matched %d products on %s", strategy.Name(), len(records), baseURL)
			return records
		}
		if len(records) > len(best) {
			best = records
		}
	}
	return best
}

// ExtractFromURL fetches a page and runs the cascade against it.
// Fetch failures produce an empty result, never an error. When the
// static fetch finds nothing and the rendered fallback is enabled, the
// page is retried through a headless browser.
func (e *Extractor) ExtractFromURL(ctx context.Context, pageURL string, limit int) []models.ProductRecord {
	doc, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		log.Printf("Extractor: skipping %s: %v", pageURL, err)
		return e.extractRendered(ctx, pageURL, limit)
	}

	records := e.Extract(ctx, doc, pageURL, limit)
	if len(records) == 0 {
		return e.extractRendered(ctx, pageURL, limit)
	}
	return records
}

// extractRendered retries a page through the headless browser. The
// browser launches lazily on first use and only when enabled.
func (e *Extractor) extractRendered(ctx context.Context, pageURL string, limit int) []models.ProductRecord {
	if !e.cfg.RenderedFallback {
		return nil
	}

	e.renderOnce.Do(func() {
		render, err := NewRenderFetcher()
		if err != nil {
			log.Printf("Extractor: rendered fallback unavailable: %v", err)
			return
		}
		e.render = render
	})
	if e.render == nil {
		return nil
	}

	doc, err := e.render.Fetch(ctx, pageURL)
	if err != nil {
		log.Printf("Extractor: rendered fetch of %s failed: %v", pageURL, err)
		return nil
	}
	return e.Extract(ctx, doc, pageURL, limit)
}

// Close releases the rendered-fallback browser when one was launched.
func (e *Extractor) Close() error {
	if e.render != nil {
		return e.render.Close()
	}
	return nil
}

// productContainerSelectors target elements whose class or attribute
// names suggest product cards. Order matters: specific shapes first.
var productContainerSelectors = []string{
	"div[data-product]",
	"div.product-item",
	"div.product-card",
	"article.product",
	"div[class*='product']",
	"article[class*='product']",
	"li[class*='product']",
	"[class*='item-card']",
}

var productNameSelectors = []string{
	"h1", "h2", "h3",
	"span[class*='name']",
	"a[class*='title']",
	"[class*='product-name']",
	"[class*='title']",
}

var productPriceSelectors = []string{
	"[class*='price']",
	"span.price",
	"div.price",
	"[data-price]",
	"[class*='amount']",
}

// structuredScan is the primary strategy: find product containers and
// pull name, price, link and image out of each.
type structuredScan struct {
	parser *PriceParser
}

func (s *structuredScan) Name() string { return "structured-scan" }

func (s *structuredScan) TryExtract(_ context.Context, doc *goquery.Document, baseURL string, limit int) []models.ProductRecord {
	var records []models.ProductRecord

	for _, selector := range productContainerSelectors {
		elements := doc.Find(selector)
		if elements.Length() == 0 {
			continue
		}

		elements.EachWithBreak(func(_ int, card *goquery.Selection) bool {
			if record, ok := extractCard(card, baseURL, s.parser); ok {
				records = append(records, record)
			}
			return len(records) < limit
		})
		if len(records) > 0 {
			break
		}
	}
	return records
}

// extractCard pulls a single product record out of a container element.
func extractCard(card *goquery.Selection, baseURL string, parser *PriceParser) (models.ProductRecord, bool) {
	var name string
	for _, selector := range productNameSelectors {
		text := strings.TrimSpace(card.Find(selector).First().Text())
		if len(text) > 3 {
			name = collapseWhitespace(text)
			break
		}
	}
	if name == "" {
		return models.ProductRecord{}, false
	}

	var price float64
	var priceText string
	for _, selector := range productPriceSelectors {
		text := strings.TrimSpace(card.Find(selector).First().Text())
		if text == "" {
			continue
		}
		if value, _, err := parser.ParsePrice(text); err == nil {
			price = value
			priceText = text
			break
		}
	}
	if price <= 0 {
		return models.ProductRecord{}, false
	}

	link := baseURL
	if href, ok := card.Find("a[href]").First().Attr("href"); ok {
		link = absolutizeURL(baseURL, href)
	}
	image := ""
	if src, ok := card.Find("img").First().Attr("src"); ok {
		image = absolutizeURL(baseURL, src)
	}

	return models.ProductRecord{
		Name:        name,
		Price:       price,
		Currency:    InferCurrency(priceText),
		SourceURL:   link,
		ImageURL:    image,
		ExtractedAt: time.Now(),
	}, true
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// absolutizeURL resolves a possibly relative href against its page URL.
func absolutizeURL(baseURL, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
