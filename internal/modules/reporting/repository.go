package reporting

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Schema for the runs table
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    dry_run INTEGER NOT NULL,
    cash REAL NOT NULL,
    spent REAL NOT NULL,
    leftover REAL NOT NULL,
    report_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// InitSchema ensures the runs table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

// Repository persists run reports
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new run report repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "runs").Logger(),
	}
}

// Save inserts a run report
func (r *Repository) Save(report *RunReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	dryRun := 0
	if report.DryRun {
		dryRun = 1
	}

	_, err = r.db.Exec(
		`INSERT INTO runs (id, created_at, dry_run, cash, spent, leftover, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.CreatedAt.Format(time.RFC3339),
		dryRun,
		report.Cash,
		report.Spent,
		report.Leftover,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	r.log.Info().
		Str("run_id", report.ID).
		Bool("dry_run", report.DryRun).
		Float64("spent", report.Spent).
		Msg("Run report saved")

	return nil
}

// Recent returns the most recent run reports, newest first
func (r *Repository) Recent(limit int) ([]*RunReport, error) {
	rows, err := r.db.Query(
		"SELECT report_json FROM runs ORDER BY created_at DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var reports []*RunReport
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		var report RunReport
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}
