package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/eda"
	"goeda/domain/insight"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/ports"

	"golang.org/x/sync/errgroup"
)

// ReportService runs every enabled analysis over a dataset and assembles the report
type ReportService struct {
	factory     *analysis.Factory
	logger      *internal.Logger
	concurrency int
	now         func() time.Time
}

// ReportOption customizes a ReportService
type ReportOption func(*ReportService)

// WithConcurrency bounds how many analyzers run at once; n < 1 means sequential
func WithConcurrency(n int) ReportOption {
	return func(s *ReportService) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

// NewReportService creates a report service
func NewReportService(factory *analysis.Factory, logger *internal.Logger, opts ...ReportOption) *ReportService {
	if logger == nil {
		logger = internal.NewLoggerWithZap(internal.LogLevelError, nil)
	}
	s := &ReportService{
		factory:     factory,
		logger:      logger.Named("report"),
		concurrency: runtime.NumCPU(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs the enabled analyses and merges their results in configuration
// order. Analyzers may run in parallel; the merged report does not depend on
// which one finishes first. A broken analysis contract fails the whole run.
func (s *ReportService) Generate(ctx context.Context, table *dataset.Table, settings eda.Settings, sink ports.PlotSink) (*insight.Report, error) {
	if table == nil {
		return nil, fmt.Errorf("generate report: %w", core.ErrInsufficientData)
	}

	entries := settings.Enabled()
	analyzers := make([]analysis.Analyzer, 0, len(entries))
	for _, entry := range entries {
		a, err := s.factory.Build(entry, table, settings.Style)
		if err != nil {
			return nil, fmt.Errorf("build %s analyzer: %w", entry.ID, err)
		}
		analyzers = append(analyzers, a)
	}

	runID := core.NewRunID()
	start := s.now()
	s.logger.Info("report %s: running %d analyses over %s (%d rows)", runID, len(analyzers), table.Name(), table.Rows())

	results := make([]*insight.Result, len(analyzers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, a := range analyzers {
		g.Go(func() error {
			res, err := a.Run(gctx, settings.Toggles, sink)
			if err != nil {
				return fmt.Errorf("%s analysis: %w", a.ID(), err)
			}
			results[i] = res
			s.logger.Debug("report %s: %s produced %d records", runID, a.ID(), len(res.Records))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("report %s failed: %v", runID, err)
		return nil, err
	}

	report := insight.NewReport(runID, table.Name(), table.Rows(), start)
	for _, res := range results {
		report.Merge(res)
	}
	s.logger.Info("report %s: %d analyses, %d insights in %s", runID, len(report.Order()), len(report.Insights), s.now().Sub(start).Round(time.Millisecond))
	return report, nil
}
