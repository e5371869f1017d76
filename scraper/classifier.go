package scraper

import (
	"net/url"
	"strings"

	"pricelens/models"
)

// Classifier labels discovered URLs as official, retailer or unknown.
// Classification is pure and deterministic; no I/O happens here.
type Classifier struct {
	retailers []string
}

// NewClassifier builds a classifier from a known-retailer substring list.
func NewClassifier(retailers []string) *Classifier {
	return &Classifier{retailers: retailers}
}

// Classify applies the rule order: brand substring in the registrable
// domain wins (official), then a known-retailer match, then unknown.
func (c *Classifier) Classify(siteURL, brandName string) models.SiteType {
	domain := ExtractDomain(siteURL)
	brand := NormalizeBrand(brandName)

	if brand != "" && strings.Contains(domain, brand) {
		return models.SiteTypeOfficial
	}
	for _, retailer := range c.retailers {
		if strings.Contains(domain, retailer) {
			return models.SiteTypeRetailer
		}
	}
	return models.SiteTypeUnknown
}

// Score maps a classification to its ranking weight.
func Score(t models.SiteType) int {
	switch t {
	case models.SiteTypeOfficial:
		return 10
	case models.SiteTypeRetailer:
		return 5
	default:
		return 0
	}
}

// NormalizeBrand lower-cases a brand name and strips all whitespace so it
// can be used as a hostname component.
func NormalizeBrand(brandName string) string {
	return strings.ToLower(strings.Join(strings.Fields(brandName), ""))
}

// ExtractDomain returns the host of a URL without a www. prefix. Invalid
// URLs fall back to the raw input, lower-cased.
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(rawURL)
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
