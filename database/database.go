package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDatabase opens the Postgres connection from DATABASE_URL.
func InitDatabase() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	DB, err = sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")
	return nil
}

// CreateTables creates the watch and snapshot tables if they don't exist.
func CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS brand_watches (
			id SERIAL PRIMARY KEY,
			brand TEXT NOT NULL,
			product TEXT NOT NULL,
			last_checked TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE,
			UNIQUE (brand, product)
		)`,
		`CREATE TABLE IF NOT EXISTS price_snapshots (
			id SERIAL PRIMARY KEY,
			watch_id INTEGER REFERENCES brand_watches(id) ON DELETE CASCADE,
			region VARCHAR(8) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			currency_code VARCHAR(3) NOT NULL,
			source_url TEXT,
			checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_price_snapshots_watch ON price_snapshots (watch_id, checked_at)`,
		`CREATE INDEX IF NOT EXISTS idx_brand_watches_active ON brand_watches (is_active, last_checked)`,
	}

	for _, query := range queries {
		_, err := DB.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection.
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
