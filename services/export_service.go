package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"pricelens/models"
)

// ExportService renders comparison results into the tabular row schema
// shared by the API and the CSV download.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// BuildRows flattens a comparison into display rows, one per region,
// ordered by region code. Prices carry the region's currency symbol.
func (s *ExportService) BuildRows(result *models.ComparisonResult) []models.PriceRow {
	codes := make([]string, 0, len(result.Entries))
	for code := range result.Entries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := make([]models.PriceRow, 0, len(codes))
	for _, code := range codes {
		entry := result.Entries[code]
		rows = append(rows, models.PriceRow{
			Region:       entry.RegionName,
			Price:        fmt.Sprintf("%s%.2f", entry.CurrencySymbol, entry.Price),
			CurrencyCode: entry.CurrencyCode,
			SourceSite:   entry.SourceSite,
			ProductName:  entry.ProductName,
		})
	}
	return rows
}

// WriteCSV streams the comparison as CSV, header row first.
func (s *ExportService) WriteCSV(w io.Writer, result *models.ComparisonResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"region", "price", "currency_code", "source_site", "product_name"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}
	for _, row := range s.BuildRows(result) {
		record := []string{row.Region, row.Price, row.CurrencyCode, row.SourceSite, row.ProductName}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %v", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
