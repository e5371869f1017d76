package config

import (
	"os"
	"strings"
)

// Region describes a geographic market a brand may sell in.
type Region struct {
	Code           string   `json:"code"`
	DisplayName    string   `json:"display_name"`
	CurrencyCode   string   `json:"currency_code"`
	CurrencySymbol string   `json:"currency_symbol"`
	Domains        []string `json:"domains"` // candidate TLDs, in probe order
}

// Regions is the static region registry. Loaded once, never mutated.
// The codes, currencies and domain candidates must stay in sync with the
// presentation layer that consumes the comparison output.
var Regions = []Region{
	{Code: "US", DisplayName: "United States", CurrencyCode: "USD", CurrencySymbol: "$", Domains: []string{"com", "us"}},
	{Code: "UK", DisplayName: "United Kingdom", CurrencyCode: "GBP", CurrencySymbol: "£", Domains: []string{"co.uk", "uk"}},
	{Code: "Canada", DisplayName: "Canada", CurrencyCode: "CAD", CurrencySymbol: "C$", Domains: []string{"ca"}},
	{Code: "UAE", DisplayName: "United Arab Emirates", CurrencyCode: "AED", CurrencySymbol: "د.إ", Domains: []string{"ae"}},
	{Code: "Germany", DisplayName: "Germany", CurrencyCode: "EUR", CurrencySymbol: "€", Domains: []string{"de"}},
	{Code: "Australia", DisplayName: "Australia", CurrencyCode: "AUD", CurrencySymbol: "A$", Domains: []string{"au"}},
	{Code: "France", DisplayName: "France", CurrencyCode: "EUR", CurrencySymbol: "€", Domains: []string{"fr"}},
	{Code: "Japan", DisplayName: "Japan", CurrencyCode: "JPY", CurrencySymbol: "¥", Domains: []string{"jp"}},
}

// RegionByCode returns the region for a code, or false when unknown.
func RegionByCode(code string) (Region, bool) {
	for _, r := range Regions {
		if strings.EqualFold(r.Code, code) {
			return r, true
		}
	}
	return Region{}, false
}

// RegionCodes returns the registry codes in declaration order.
func RegionCodes() []string {
	codes := make([]string, 0, len(Regions))
	for _, r := range Regions {
		codes = append(codes, r.Code)
	}
	return codes
}

// defaultRetailers is the built-in known-retailer list used by the site
// classifier. Membership is not behavior-critical; it can be overridden
// with the RETAILER_LIST env variable (comma-separated, lowercase).
var defaultRetailers = []string{
	"amazon", "ebay", "ssense", "net-a-porter", "farfetch",
	"asos", "lookfantastic", "selfridges", "harrods",
	"sportsdirect", "jd", "footlocker", "finishline",
	"dickssportinggoods", "kohl",
	"nordstrom", "saks", "bloomingdale", "macy",
}

// KnownRetailers returns the retailer name substrings used for classification.
func KnownRetailers() []string {
	if value := os.Getenv("RETAILER_LIST"); value != "" {
		var retailers []string
		for _, name := range strings.Split(value, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				retailers = append(retailers, name)
			}
		}
		if len(retailers) > 0 {
			return retailers
		}
	}
	return defaultRetailers
}
