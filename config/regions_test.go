package config

import "testing"

func TestRegionRegistryContents(t *testing.T) {
	if len(Regions) != 8 {
		t.Fatalf("expected 8 regions, got %d", len(Regions))
	}

	want := map[string]string{
		"US":        "USD",
		"UK":        "GBP",
		"Canada":    "CAD",
		"UAE":       "AED",
		"Germany":   "EUR",
		"Australia": "AUD",
		"France":    "EUR",
		"Japan":     "JPY",
	}
	for _, region := range Regions {
		currency, ok := want[region.Code]
		if !ok {
			t.Fatalf("unexpected region code %q", region.Code)
		}
		if region.CurrencyCode != currency {
			t.Fatalf("region %s currency = %s, want %s", region.Code, region.CurrencyCode, currency)
		}
		if len(region.Domains) == 0 {
			t.Fatalf("region %s has no candidate domains", region.Code)
		}
		if region.CurrencySymbol == "" {
			t.Fatalf("region %s has no currency symbol", region.Code)
		}
	}
}

func TestRegionByCode(t *testing.T) {
	region, ok := RegionByCode("UK")
	if !ok {
		t.Fatalf("expected UK region")
	}
	if region.CurrencySymbol != "£" {
		t.Fatalf("UK symbol = %q, want £", region.CurrencySymbol)
	}

	if _, ok := RegionByCode("Mars"); ok {
		t.Fatalf("expected lookup miss for unknown code")
	}

	// Lookup is case-insensitive.
	if _, ok := RegionByCode("uk"); !ok {
		t.Fatalf("expected case-insensitive lookup to succeed")
	}
}

func TestRegionCodesOrder(t *testing.T) {
	codes := RegionCodes()
	if len(codes) != len(Regions) {
		t.Fatalf("expected %d codes, got %d", len(Regions), len(codes))
	}
	if codes[0] != "US" || codes[1] != "UK" {
		t.Fatalf("codes not in declaration order: %v", codes)
	}
}

func TestKnownRetailersOverride(t *testing.T) {
	t.Setenv("RETAILER_LIST", " Zalando , ASOS ,")

	retailers := KnownRetailers()
	if len(retailers) != 2 {
		t.Fatalf("expected 2 retailers, got %v", retailers)
	}
	if retailers[0] != "zalando" || retailers[1] != "asos" {
		t.Fatalf("override not normalized: %v", retailers)
	}
}

func TestKnownRetailersDefault(t *testing.T) {
	t.Setenv("RETAILER_LIST", "")

	retailers := KnownRetailers()
	if len(retailers) == 0 {
		t.Fatalf("expected built-in retailer list")
	}
	found := false
	for _, name := range retailers {
		if name == "amazon" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected amazon in default list: %v", retailers)
	}
}
