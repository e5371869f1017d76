package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricelens/database"
	"pricelens/models"
)

type WatchRepository struct{}

func NewWatchRepository() *WatchRepository {
	return &WatchRepository{}
}

// AddWatch registers a brand+product pair for scheduled refresh.
func (r *WatchRepository) AddWatch(brand, product string) (*models.BrandWatch, error) {
	query := `
		INSERT INTO brand_watches (brand, product, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (brand, product) DO UPDATE SET is_active = TRUE
		RETURNING id, brand, product, last_checked, created_at, is_active
	`

	var watch models.BrandWatch
	err := database.DB.QueryRow(query, brand, product, time.Now()).Scan(
		&watch.ID, &watch.BrandName, &watch.ProductName,
		&watch.LastChecked, &watch.CreatedAt, &watch.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add watch: %v", err)
	}

	return &watch, nil
}

// GetActiveWatches returns all watches due for refresh.
func (r *WatchRepository) GetActiveWatches() ([]models.BrandWatch, error) {
	query := `
		SELECT id, brand, product, last_checked, created_at, is_active
		FROM brand_watches
		WHERE is_active = true
		ORDER BY last_checked NULLS FIRST, created_at
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get watches: %v", err)
	}
	defer rows.Close()

	var watches []models.BrandWatch
	for rows.Next() {
		var watch models.BrandWatch
		err := rows.Scan(
			&watch.ID, &watch.BrandName, &watch.ProductName,
			&watch.LastChecked, &watch.CreatedAt, &watch.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch: %v", err)
		}
		watches = append(watches, watch)
	}

	return watches, rows.Err()
}

// GetWatchByID returns one active watch.
func (r *WatchRepository) GetWatchByID(id int) (*models.BrandWatch, error) {
	query := `
		SELECT id, brand, product, last_checked, created_at, is_active
		FROM brand_watches
		WHERE id = $1 AND is_active = true
	`

	var watch models.BrandWatch
	err := database.DB.QueryRow(query, id).Scan(
		&watch.ID, &watch.BrandName, &watch.ProductName,
		&watch.LastChecked, &watch.CreatedAt, &watch.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watch %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watch: %v", err)
	}

	return &watch, nil
}

// MarkChecked records a completed refresh.
func (r *WatchRepository) MarkChecked(id int) error {
	_, err := database.DB.Exec(
		`UPDATE brand_watches SET last_checked = $1 WHERE id = $2`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark watch checked: %v", err)
	}
	return nil
}

// DeactivateWatch soft-deletes a watch. Its snapshots are kept.
func (r *WatchRepository) DeactivateWatch(id int) error {
	result, err := database.DB.Exec(
		`UPDATE brand_watches SET is_active = FALSE WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate watch: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate watch: %v", err)
	}
	if affected == 0 {
		return fmt.Errorf("watch %d not found", id)
	}
	return nil
}
