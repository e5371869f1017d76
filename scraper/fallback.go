package scraper

import (
	"context"
	"regexp"
	"strings"
	"time"

	"pricelens/models"

	"github.com/PuerkitoBio/goquery"
)

// symbolPricePattern matches a currency symbol immediately followed by a
// number, the shape almost every storefront renders prices in.
var symbolPricePattern = regexp.MustCompile(`[$€£]\s*[0-9][0-9.,]*`)

// pricePatternFallback is the last resort of the cascade. It scans every
// element whose text contains a symbol-prefixed price and pairs it with
// the nearest heading, link or span as the product name. Looser than the
// structured scan, so results are filtered and deduplicated harder.
type pricePatternFallback struct {
	parser *PriceParser
}

func (p *pricePatternFallback) Name() string { return "price-pattern" }

func (p *pricePatternFallback) TryExtract(_ context.Context, doc *goquery.Document, baseURL string, limit int) []models.ProductRecord {
	if doc == nil {
		return nil
	}

	seen := make(map[string]bool)
	var records []models.ProductRecord

	doc.Find("span, div, p, td").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := strings.TrimSpace(el.Text())
		match := symbolPricePattern.FindString(text)
		if match == "" || len(text) > 120 {
			return true
		}

		price, _, err := p.parser.ParsePrice(match)
		if err != nil || price <= 0 {
			return true
		}

		name := nearbyProductName(el)
		if len(name) <= 5 {
			return true
		}
		key := strings.ToLower(name)
		if seen[key] {
			return true
		}
		seen[key] = true

		link := baseURL
		if href, ok := el.Closest("a[href]").Attr("href"); ok {
			link = absolutizeURL(baseURL, href)
		} else if href, ok := el.Parent().Find("a[href]").First().Attr("href"); ok {
			link = absolutizeURL(baseURL, href)
		}

		records = append(records, models.ProductRecord{
			Name:        name,
			Price:       price,
			Currency:    InferCurrency(match),
			SourceURL:   link,
			ExtractedAt: time.Now(),
		})
		return len(records) < limit
	})
	return records
}

// nearbyProductName walks outward from a price element looking for the
// closest text that reads like a product name.
func nearbyProductName(el *goquery.Selection) string {
	parent := el.Parent()
	for depth := 0; depth < 3 && parent.Length() > 0; depth++ {
		for _, selector := range []string{"h1", "h2", "h3", "h4", "a", "span[class*='name']", "span[class*='title']"} {
			candidate := strings.TrimSpace(parent.Find(selector).First().Text())
			candidate = collapseWhitespace(candidate)
			if len(candidate) > 5 && !symbolPricePattern.MatchString(candidate) {
				return candidate
			}
		}
		parent = parent.Parent()
	}
	return ""
}
