package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"goeda/domain/core"
	"goeda/ports"

	"github.com/jmoiron/sqlx"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// Save inserts a report run, replacing an existing row with the same id.
// The document goes over the wire as text; lib/pq would send []byte as bytea.
func (r *reportRepository) Save(ctx context.Context, report *ports.StoredReport) error {
	query := `INSERT INTO report_runs (
		id, run_id, dataset, row_count, generated_at, report_dir, document
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7::jsonb
	)
	ON CONFLICT (id) DO UPDATE SET
		run_id = EXCLUDED.run_id,
		dataset = EXCLUDED.dataset,
		row_count = EXCLUDED.row_count,
		generated_at = EXCLUDED.generated_at,
		report_dir = EXCLUDED.report_dir,
		document = EXCLUDED.document`

	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.RunID, report.Dataset, report.Rows,
		report.GeneratedAt, report.ReportDir, string(report.Document),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Get retrieves a report run by its id
func (r *reportRepository) Get(ctx context.Context, id string) (*ports.StoredReport, error) {
	query := `SELECT id, run_id, dataset, row_count, generated_at, report_dir, document
	FROM report_runs WHERE id = $1`

	var report ports.StoredReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

// List retrieves the most recent report runs
func (r *reportRepository) List(ctx context.Context, limit int) ([]*ports.StoredReport, error) {
	query := `SELECT id, run_id, dataset, row_count, generated_at, report_dir, document
	FROM report_runs
	ORDER BY generated_at DESC
	LIMIT $1`

	var reports []*ports.StoredReport
	if err := r.db.SelectContext(ctx, &reports, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}
