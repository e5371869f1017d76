package scraper

import (
	"testing"

	"pricelens/config"
	"pricelens/models"
)

func TestClassifyOfficialSite(t *testing.T) {
	c := NewClassifier(config.KnownRetailers())

	got := c.Classify("https://www.lululemon.com", "Lululemon")
	if got != models.SiteTypeOfficial {
		t.Fatalf("expected official, got %s", got)
	}
}

func TestClassifyRetailerSite(t *testing.T) {
	c := NewClassifier(config.KnownRetailers())

	got := c.Classify("https://www.amazon.co.uk/stores/lululemon", "Lululemon")
	if got != models.SiteTypeRetailer {
		t.Fatalf("expected retailer, got %s", got)
	}
}

func TestClassifyUnknownSite(t *testing.T) {
	c := NewClassifier(config.KnownRetailers())

	got := c.Classify("https://example.com", "Lululemon")
	if got != models.SiteTypeUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}

func TestClassifyBrandMatchBeatsRetailerMatch(t *testing.T) {
	c := NewClassifier([]string{"amazon"})

	// Domain contains both the brand and a retailer substring; the brand
	// rule is checked first.
	got := c.Classify("https://amazon-acme.com", "Acme")
	if got != models.SiteTypeOfficial {
		t.Fatalf("expected official, got %s", got)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier(config.KnownRetailers())

	first := c.Classify("https://www.ebay.com/b/nike", "Nike")
	for i := 0; i < 10; i++ {
		if got := c.Classify("https://www.ebay.com/b/nike", "Nike"); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestScoreWeights(t *testing.T) {
	if Score(models.SiteTypeOfficial) != 10 {
		t.Fatalf("official score = %d, want 10", Score(models.SiteTypeOfficial))
	}
	if Score(models.SiteTypeRetailer) != 5 {
		t.Fatalf("retailer score = %d, want 5", Score(models.SiteTypeRetailer))
	}
	if Score(models.SiteTypeUnknown) != 0 {
		t.Fatalf("unknown score = %d, want 0", Score(models.SiteTypeUnknown))
	}
}

func TestNormalizeBrand(t *testing.T) {
	cases := map[string]string{
		"Lululemon":    "lululemon",
		"Acme Co":      "acmeco",
		"  The  Row  ": "therow",
		"":             "",
	}
	for input, want := range cases {
		if got := NormalizeBrand(input); got != want {
			t.Fatalf("NormalizeBrand(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.lululemon.com/en/shop": "lululemon.com",
		"https://shop.acme.co.uk":           "shop.acme.co.uk",
		"not a url":                         "not a url",
	}
	for input, want := range cases {
		if got := ExtractDomain(input); got != want {
			t.Fatalf("ExtractDomain(%q) = %q, want %q", input, got, want)
		}
	}
}
