package repository

import (
	"fmt"

	"pricelens/database"
	"pricelens/models"
)

type SnapshotRepository struct{}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{}
}

// AddSnapshot records one regional best-price observation for a watch.
func (r *SnapshotRepository) AddSnapshot(watchID int, entry models.RegionalPriceEntry) error {
	query := `
		INSERT INTO price_snapshots (watch_id, region, price, currency_code, source_url)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := database.DB.Exec(query, watchID, entry.RegionCode, entry.Price, entry.CurrencyCode, entry.SourceURL)
	if err != nil {
		return fmt.Errorf("failed to add snapshot: %v", err)
	}
	return nil
}

// GetHistory returns a watch's snapshots, newest first.
func (r *SnapshotRepository) GetHistory(watchID, limit int) ([]models.PriceSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, watch_id, region, price, currency_code, source_url, checked_at
		FROM price_snapshots
		WHERE watch_id = $1
		ORDER BY checked_at DESC
		LIMIT $2
	`

	rows, err := database.DB.Query(query, watchID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %v", err)
	}
	defer rows.Close()

	var snapshots []models.PriceSnapshot
	for rows.Next() {
		var snap models.PriceSnapshot
		err := rows.Scan(
			&snap.ID, &snap.WatchID, &snap.RegionCode,
			&snap.Price, &snap.CurrencyCode, &snap.SourceURL, &snap.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %v", err)
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}
