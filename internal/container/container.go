package container

import (
	"context"
	"fmt"

	"goeda/adapters/excel"
	"goeda/adapters/plot"
	"goeda/adapters/postgres"
	"goeda/app"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/config"
	"goeda/internal/migration"
	"goeda/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Logger *internal.Logger

	// Analysis components
	Registry *analysis.StrategyRegistry
	Pipeline *app.Pipeline

	// Infrastructure, nil until InitWithDatabase
	DB      *sqlx.DB
	Reports ports.ReportRepository
}

// New creates a new dependency injection container
func New(logger *internal.Logger, opts ...app.ReportOption) (*Container, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	c := &Container{
		Logger:   logger,
		Registry: analysis.NewStrategyRegistry(),
	}
	c.Pipeline = app.NewPipeline(c.Registry, c.OpenSink, logger, opts...)
	return c, nil
}

// InitWithDatabase connects the query data source and the report store
func (c *Container) InitWithDatabase(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("database url cannot be empty")
	}

	db, err := postgres.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("database migration failed: %w", err)
	}
	c.DB = db
	c.Reports = postgres.NewReportRepository(db)

	c.Logger.Info("Container initialized with database connection")
	return nil
}

// OpenSink opens the plot sink selected by the run configuration
func (c *Container) OpenSink(ctx context.Context, reportDir, format string) (ports.PlotSink, func() error, error) {
	return plot.Open(ctx, reportDir, format, c.Logger.Named("plot"))
}

// FileReader returns the reader for a configured input file
func (c *Container) FileReader(rc *config.RunConfig) ports.DatasetReader {
	cfg := excel.DefaultReaderConfig(rc.InputPath)
	cfg.Encoding = rc.Encoding
	cfg.Sheet = rc.Sheet
	cfg.ParseDates = rc.ParseDates
	cfg.LenientNumbers = rc.LenientNumbers
	return excel.NewDataReader(cfg, c.Logger.Named("reader"))
}

// QueryReader returns a reader for a SELECT against the connected database,
// or nil when no database is configured
func (c *Container) QueryReader(name, query string) ports.DatasetReader {
	if c.DB == nil {
		return nil
	}
	return postgres.NewQueryReader(c.DB, name, query, c.Logger.Named("postgres"))
}

// Close releases infrastructure resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
