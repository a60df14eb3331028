package analysis

import (
	"context"
	"fmt"

	"goeda/domain/dataset"
	"goeda/domain/eda"
	"goeda/domain/insight"
	"goeda/ports"
)

// frameSampleRows is how many outlier rows are kept in a record
const frameSampleRows = 10

// OutlierAnalyzer runs a registered detection strategy over each column
type OutlierAnalyzer struct {
	table    *dataset.Table
	columns  []string
	method   string
	registry *StrategyRegistry
	style    eda.PlotStyle
	diag     ports.Diagnostics
}

// NewOutlierAnalyzer creates an outlier analyzer using method from registry
func NewOutlierAnalyzer(table *dataset.Table, columns []string, method string, registry *StrategyRegistry, style eda.PlotStyle, diag ports.Diagnostics) *OutlierAnalyzer {
	return &OutlierAnalyzer{
		table:    table,
		columns:  columns,
		method:   method,
		registry: registry,
		style:    style,
		diag:     diag,
	}
}

func (a *OutlierAnalyzer) ID() eda.AnalysisID { return eda.Outliers }

// Run records only the columns that have at least one outlier
func (a *OutlierAnalyzer) Run(ctx context.Context, toggles eda.Toggles, sink ports.PlotSink) (*insight.Result, error) {
	res := insight.NewResult(eda.Outliers)
	out := newEmitter(a.diag, toggles, res)

	for _, name := range a.columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		strategy, ok := a.registry.Lookup(a.method)
		if !ok {
			a.diag.Warn("outliers: method %q is not supported (known: %v), skipping column %q", a.method, a.registry.Methods(), name)
			continue
		}

		found, err := strategy(a.table, name)
		if err != nil {
			a.diag.Warn("outliers: column %q skipped: %v", name, err)
			continue
		}
		if found.Count == 0 {
			continue
		}

		out.emit(fmt.Sprintf("- %s: %d outliers (%.2f%%)", name, found.Count, found.Percent))

		rec := insight.OutlierRecord{
			Method:          a.method,
			TotalOutliers:   found.Count,
			PercentOutliers: found.Percent,
			LowerBound:      found.Lower,
			UpperBound:      found.Upper,
		}
		if toggles.SavePlots {
			rec.FrameSample = a.frameSample(found.Rows)
			rec.Plot = savePlot(ctx, sink, a.diag, a.scatter(name, found.Rows), plotName("outlier", name))
		}
		res.Add(name, rec)
	}
	return res, nil
}

func (a *OutlierAnalyzer) frameSample(rows []int) []map[string]any {
	n := len(rows)
	if n > frameSampleRows {
		n = frameSampleRows
	}
	sample := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		sample[i] = a.table.Row(rows[i])
	}
	return sample
}

// scatter plots the outlier values on a single line, y fixed at 0
func (a *OutlierAnalyzer) scatter(name string, rows []int) ports.ChartSpec {
	col, _ := a.table.Column(name)
	xs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := col.Float(r); ok {
			xs = append(xs, v)
		}
	}
	return ports.ChartSpec{
		Kind:     ports.ChartScatter,
		Title:    fmt.Sprintf("Outliers in %s", name),
		XLabel:   name,
		X:        xs,
		Y:        make([]float64, len(xs)),
		Palette:  a.style.ColorPalette,
		Template: a.style.Template,
	}
}
