package allocation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Schema for the allocation_targets table
const Schema = `
CREATE TABLE IF NOT EXISTS allocation_targets (
    symbol TEXT PRIMARY KEY,
    weight REAL NOT NULL,
    updated_at TEXT NOT NULL
);
`

// InitSchema ensures the allocation_targets table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

// Repository handles allocation target database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new allocation repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "allocation").Logger(),
	}
}

// ReplaceAll swaps the stored target set for the given one
func (r *Repository) ReplaceAll(targets TargetSet) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM allocation_targets"); err != nil {
		return fmt.Errorf("failed to clear targets: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	for symbol, weight := range targets {
		_, err := tx.Exec(
			"INSERT INTO allocation_targets (symbol, weight, updated_at) VALUES (?, ?, ?)",
			symbol, weight, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert target %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit targets: %w", err)
	}

	r.log.Info().Int("symbols", len(targets)).Msg("Allocation targets replaced")
	return nil
}

// GetAll returns the stored target set
func (r *Repository) GetAll() (TargetSet, error) {
	rows, err := r.db.Query("SELECT symbol, weight FROM allocation_targets ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	targets := make(TargetSet)
	for rows.Next() {
		var symbol string
		var weight float64
		if err := rows.Scan(&symbol, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets[symbol] = weight
	}

	return targets, rows.Err()
}

// List returns the stored targets with metadata, ordered by symbol
func (r *Repository) List() ([]Target, error) {
	rows, err := r.db.Query("SELECT symbol, weight, updated_at FROM allocation_targets ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var targets []Target
	for rows.Next() {
		var t Target
		var updatedAt string
		if err := rows.Scan(&t.Symbol, &t.Weight, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		targets = append(targets, t)
	}

	return targets, rows.Err()
}
