package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PriceParser handles the number formats seen across regional storefronts.
type PriceParser struct {
	patterns []pricePattern
}

type pricePattern struct {
	name string
	re   *regexp.Regexp
}

// NewPriceParser creates a locale-aware price parser. Patterns are tried
// in order of specificity.
func NewPriceParser() *PriceParser {
	return &PriceParser{
		patterns: []pricePattern{
			// US/UK: $1,234.56 or £1,234.56
			{"us_uk", regexp.MustCompile(`(?i)([$£€])?\s*([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{2})?)`)},
			// European: €1.234,56
			{"european", regexp.MustCompile(`(?i)([$£€])?\s*([0-9]{1,3}(?:\.[0-9]{3})+(?:,[0-9]{2})?)`)},
			// Currency symbol with plain decimal: €49.99
			{"currency_only", regexp.MustCompile(`(?i)([$£€])\s*([0-9]+(?:[.,][0-9]{2})?)`)},
			// Bare number: 49.99 or 49,99
			{"simple", regexp.MustCompile(`()([0-9]+(?:[.,][0-9]{2})?)`)},
		},
	}
}

// ParsePrice extracts the first price-like value from text. Commas and
// locale separators are normalized before parsing. Returns the numeric
// value and the currency symbol when one was present.
func (p *PriceParser) ParsePrice(text string) (float64, string, error) {
	text = strings.TrimSpace(text)

	for _, pattern := range p.patterns {
		matches := pattern.re.FindStringSubmatch(text)
		if matches == nil {
			continue
		}
		symbol := matches[1]
		clean := cleanNumberString(matches[2], pattern.name)
		if value, err := strconv.ParseFloat(clean, 64); err == nil && value > 0 {
			return value, symbol, nil
		}
	}
	return 0, "", fmt.Errorf("no valid price pattern found in: %s", text)
}

// cleanNumberString converts a locale-specific number to standard decimal.
func cleanNumberString(numberStr, locale string) string {
	switch locale {
	case "us_uk":
		return strings.ReplaceAll(numberStr, ",", "")
	case "european":
		// 1.234,56 -> 1234.56
		numberStr = strings.ReplaceAll(numberStr, ".", "")
		return strings.ReplaceAll(numberStr, ",", ".")
	case "simple", "currency_only":
		if strings.Contains(numberStr, ",") && !strings.Contains(numberStr, ".") {
			return strings.ReplaceAll(numberStr, ",", ".")
		}
		return numberStr
	default:
		return numberStr
	}
}

// InferCurrency guesses a currency code from matched text. This is a
// heuristic, not a reliable signal: when no symbol or code is present it
// defaults to USD even on non-US sites. Callers must treat the result as
// best-effort.
func InferCurrency(text string) string {
	switch {
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return "EUR"
	case strings.Contains(text, "£") || strings.Contains(text, "GBP"):
		return "GBP"
	default:
		return "USD"
	}
}
