package analysis

import (
	"context"
	"fmt"

	"goeda/domain/dataset"
	"goeda/domain/eda"
	"goeda/domain/insight"
	"goeda/internal/profiling"
	"goeda/ports"
)

// DistributionAnalyzer summarises numeric columns and counts categorical cardinality
type DistributionAnalyzer struct {
	table   *dataset.Table
	columns []string
	style   eda.PlotStyle
	diag    ports.Diagnostics
}

// NewDistributionAnalyzer creates a distribution analyzer over the given columns
func NewDistributionAnalyzer(table *dataset.Table, columns []string, style eda.PlotStyle, diag ports.Diagnostics) *DistributionAnalyzer {
	return &DistributionAnalyzer{table: table, columns: columns, style: style, diag: diag}
}

func (a *DistributionAnalyzer) ID() eda.AnalysisID { return eda.Distribution }

// Run computes one record per classifiable column. Columns that are neither
// numeric nor categorical are logged and skipped.
func (a *DistributionAnalyzer) Run(ctx context.Context, toggles eda.Toggles, sink ports.PlotSink) (*insight.Result, error) {
	class := a.table.Classification()
	res := insight.NewResult(eda.Distribution)
	out := newEmitter(a.diag, toggles, res)

	for _, name := range a.columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col, ok := a.table.Column(name)
		if !ok {
			a.diag.Error("distribution: column %q is not in the dataset schema, skipping", name)
			continue
		}

		switch {
		case class.IsNumeric(name):
			a.numeric(ctx, col, toggles, sink, res, out)
		case class.IsCategorical(name):
			unique := uniqueCount(col)
			res.Add(name, insight.CategoricalDistribution{Type: "categorical", Unique: unique})
			out.emit(fmt.Sprintf("%s unique values = %d", name, unique))
		default:
			a.diag.Warn("distribution: column %q of type %s is neither numeric nor categorical, skipping", name, col.Type())
		}
	}
	return res, nil
}

func (a *DistributionAnalyzer) numeric(ctx context.Context, col *dataset.Column, toggles eda.Toggles, sink ports.PlotSink, res *insight.Result, out emitter) {
	values := col.Floats()
	s, err := profiling.Summarize(values)
	if err != nil {
		a.diag.Warn("distribution: column %q has no usable values: %v", col.Name(), err)
		return
	}

	skew := insight.SkewOf(s.Mean, s.Median)
	rec := insight.NumericDistribution{
		Type:       "numeric",
		Mean:       s.Mean,
		Median:     s.Median,
		Std:        s.StdDev,
		Percentile: [2]float64{s.P5, s.P95},
		Min:        s.Min,
		Max:        s.Max,
		Skew:       skew,
	}
	out.emit(fmt.Sprintf("- %s: mean=%.0f, median=%.2f, std=%.2f -> skew %s", col.Name(), s.Mean, s.Median, s.StdDev, skew))

	if toggles.SavePlots {
		spec := ports.ChartSpec{
			Kind:     ports.ChartHistogram,
			Title:    fmt.Sprintf("Distribution of %s", col.Name()),
			XLabel:   col.Name(),
			YLabel:   "count",
			X:        values,
			Bins:     a.style.HistogramBins,
			Palette:  a.style.ColorPalette,
			Template: a.style.Template,
		}
		rec.Plot = savePlot(ctx, sink, a.diag, spec, plotName("distribution", col.Name()))
	}
	res.Add(col.Name(), rec)
}

// uniqueCount counts distinct values; a null counts as one value of its own
func uniqueCount(col *dataset.Column) int {
	seen := make(map[string]struct{})
	for _, v := range col.Texts() {
		seen[v] = struct{}{}
	}
	n := len(seen)
	if col.NullCount() > 0 {
		n++
	}
	return n
}
