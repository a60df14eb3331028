package ports

import (
	"context"

	"goeda/domain/eda"
)

// ChartKind is the kind of chart an analyzer asks for
type ChartKind string

const (
	ChartHistogram ChartKind = "histogram"
	ChartScatter   ChartKind = "scatter"
	ChartBar       ChartKind = "bar"
	ChartHeatmap   ChartKind = "heatmap"
)

// ChartSpec is a logical chart description. Analyzers decide what to plot;
// the sink decides how and where it is rendered.
type ChartSpec struct {
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string

	// histogram: raw values and bin count; scatter: X and Y point coordinates
	X    []float64
	Y    []float64
	Bins int

	// bar: one bar per category
	Categories []string
	Counts     []float64

	// heatmap: square matrix over Labels
	Labels []string
	Matrix [][]float64

	Palette  string
	Template eda.Template
}

// PlotSink renders a chart and returns a stable reference to the artifact.
// Implementations must accept repeated calls with distinct names; calls may
// arrive from several goroutines at once.
type PlotSink interface {
	SavePlot(ctx context.Context, spec ChartSpec, name string) (string, error)
}
