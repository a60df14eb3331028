package ports

import (
	"context"
	"time"
)

// StoredReport is the persisted form of one finished report run
type StoredReport struct {
	ID          string    `db:"id"`
	RunID       string    `db:"run_id"`
	Dataset     string    `db:"dataset"`
	Rows        int       `db:"row_count"`
	GeneratedAt time.Time `db:"generated_at"`
	ReportDir   string    `db:"report_dir"`
	// Document is the JSON response served for the report
	Document []byte `db:"document"`
}

// ReportRepository stores report runs so they can be fetched again later
type ReportRepository interface {
	Save(ctx context.Context, report *StoredReport) error
	// Get returns an error matching core.ErrNotFound for unknown ids
	Get(ctx context.Context, id string) (*StoredReport, error)
	// List returns the most recent reports first
	List(ctx context.Context, limit int) ([]*StoredReport, error)
}
