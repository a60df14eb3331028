package migration

import (
	"context"

	"goeda/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the report storage schema
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements lists the DDL in the order Run applies it
func (r *MigrationRunner) Statements() []string {
	return []string{createReportRuns, createReportRunsIndex}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, createReportRuns); err != nil {
		return errors.Wrap(err, "failed to create report_runs table")
	}
	if _, err := db.ExecContext(ctx, createReportRunsIndex); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

const createReportRuns = `
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		dataset TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		generated_at TIMESTAMP WITH TIME ZONE NOT NULL,
		report_dir TEXT NOT NULL,
		document JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`

const createReportRunsIndex = `
	CREATE INDEX IF NOT EXISTS idx_report_runs_generated_at ON report_runs (generated_at DESC)`
