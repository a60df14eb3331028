// Package analysis implements the per-analysis insight computations of a report
// run: distribution, outliers, correlation and category dominance. Each analyzer
// reads an immutable dataset and returns a fresh insight.Result.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"goeda/domain/eda"
	"goeda/domain/insight"
	"goeda/ports"
)

// Analyzer is one configured analysis over a dataset
type Analyzer interface {
	ID() eda.AnalysisID
	Run(ctx context.Context, toggles eda.Toggles, sink ports.PlotSink) (*insight.Result, error)
}

// emitter routes insight lines according to the auto/save toggles
type emitter struct {
	diag    ports.Diagnostics
	toggles eda.Toggles
	result  *insight.Result
}

func newEmitter(diag ports.Diagnostics, toggles eda.Toggles, result *insight.Result) emitter {
	return emitter{diag: diag, toggles: toggles, result: result}
}

// emit echoes the line live when auto insights are on and keeps it when insights are saved
func (e emitter) emit(line string) {
	if e.toggles.AutoInsights {
		e.diag.Info("%s", line)
	}
	if e.toggles.SaveInsights {
		e.result.AddInsight(line)
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)

// plotName builds the deterministic artifact stem {kind}_{column}. A column
// that needed sanitising also gets a short hash of its original name, so
// "unit price" and "unit_price" never share a chart.
func plotName(kind, column string) string {
	if column == "" {
		return kind
	}
	safe := unsafeName.ReplaceAllString(column, "_")
	if safe != column {
		sum := sha256.Sum256([]byte(column))
		safe += "_" + hex.EncodeToString(sum[:4])
	}
	return kind + "_" + safe
}

// savePlot asks the sink for a chart. A failing sink costs the chart, not the column.
func savePlot(ctx context.Context, sink ports.PlotSink, diag ports.Diagnostics, spec ports.ChartSpec, name string) string {
	if sink == nil {
		diag.Warn("no plot sink configured, chart %s not rendered", name)
		return ""
	}
	path, err := sink.SavePlot(ctx, spec, name)
	if err != nil {
		diag.Warn("chart %s not rendered: %v", name, err)
		return ""
	}
	return path
}
