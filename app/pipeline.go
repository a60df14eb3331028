package app

import (
	"context"
	"fmt"
	"time"

	"goeda/domain/dataset"
	"goeda/domain/insight"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/config"
	"goeda/ports"
)

// SinkOpener opens the plot sink for one run under the report folder. The
// returned finish func flushes the sink and is called once all analyses are done.
type SinkOpener func(ctx context.Context, reportDir, format string) (ports.PlotSink, func() error, error)

// RunResult is everything one pipeline run produced
type RunResult struct {
	Table     *dataset.Table  `json:"-"`
	Report    *insight.Report `json:"report"`
	Artifacts Artifacts       `json:"artifacts"`
	Elapsed   time.Duration   `json:"elapsed"`
}

// Pipeline turns a validated run configuration and a loaded dataset into a
// persisted report: sample, bind columns, analyze, render, write.
type Pipeline struct {
	registry *analysis.StrategyRegistry
	sinks    SinkOpener
	logger   *internal.Logger
	opts     []ReportOption
}

// NewPipeline creates a pipeline; a nil registry gets the built-in strategies
func NewPipeline(registry *analysis.StrategyRegistry, sinks SinkOpener, logger *internal.Logger, opts ...ReportOption) *Pipeline {
	if registry == nil {
		registry = analysis.NewStrategyRegistry()
	}
	if logger == nil {
		logger = internal.NewLoggerWithZap(internal.LogLevelError, nil)
	}
	return &Pipeline{registry: registry, sinks: sinks, logger: logger, opts: opts}
}

// Run executes one report run. Analyzer diagnostics go to diag, which may be a
// per-request fan-out rather than the process logger.
func (p *Pipeline) Run(ctx context.Context, rc *config.RunConfig, table *dataset.Table, diag ports.Diagnostics) (*RunResult, error) {
	start := time.Now()
	if diag == nil {
		diag = p.logger
	}

	if rc.Sample < 1 {
		before := table.Rows()
		table = table.Sample(rc.Sample, rc.Seed)
		p.logger.Info("sampled %d of %d rows (fraction %.2f, seed %d)", table.Rows(), before, rc.Sample, rc.Seed)
	}
	if err := rc.Bind(table, diag); err != nil {
		return nil, err
	}

	var sink ports.PlotSink
	finish := func() error { return nil }
	if rc.Settings.Toggles.SavePlots && p.sinks != nil {
		s, f, err := p.sinks(ctx, rc.ReportDir, rc.PlotFormat)
		if err != nil {
			return nil, fmt.Errorf("open plot sink: %w", err)
		}
		sink, finish = s, f
	}

	service := NewReportService(analysis.NewFactory(p.registry, diag), p.logger, p.opts...)
	report, err := service.Generate(ctx, table, rc.Settings, sink)
	if ferr := finish(); ferr != nil && err == nil {
		err = fmt.Errorf("finish plot sink: %w", ferr)
	}
	if err != nil {
		return nil, err
	}

	artifacts, err := NewArtifactWriter(rc.ReportDir, rc.InsightsJSONName, p.logger).Write(report, rc.Settings.Toggles)
	if err != nil {
		return nil, err
	}
	return &RunResult{Table: table, Report: report, Artifacts: artifacts, Elapsed: time.Since(start)}, nil
}
