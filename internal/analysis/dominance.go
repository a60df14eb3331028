package analysis

import (
	"context"
	"fmt"
	"sort"

	"goeda/domain/dataset"
	"goeda/domain/eda"
	"goeda/domain/insight"
	"goeda/ports"
)

// DominanceAnalyzer reports the most frequent categories of each column and
// detects rare ones.
type DominanceAnalyzer struct {
	table   *dataset.Table
	columns []string
	params  eda.DominanceParams
	style   eda.PlotStyle
	diag    ports.Diagnostics
}

// NewDominanceAnalyzer creates a category dominance analyzer
func NewDominanceAnalyzer(table *dataset.Table, columns []string, params eda.DominanceParams, style eda.PlotStyle, diag ports.Diagnostics) *DominanceAnalyzer {
	return &DominanceAnalyzer{table: table, columns: columns, params: params, style: style, diag: diag}
}

func (a *DominanceAnalyzer) ID() eda.AnalysisID { return eda.CategoryDominance }

// Run produces one record per column. No insight text is emitted; rare
// categories surface as a diagnostic and as RareCount in the record.
func (a *DominanceAnalyzer) Run(ctx context.Context, toggles eda.Toggles, sink ports.PlotSink) (*insight.Result, error) {
	res := insight.NewResult(eda.CategoryDominance)

	for _, name := range a.columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col, ok := a.table.Column(name)
		if !ok {
			a.diag.Error("category_dominance: column %q is not in the dataset schema, skipping", name)
			continue
		}

		counts := Frequencies(col)
		if len(counts) == 0 {
			a.diag.Warn("category_dominance: column %q has no values, skipping", name)
			continue
		}
		top := counts
		if a.params.TopN > 0 && len(top) > a.params.TopN {
			top = top[:a.params.TopN]
		}

		rec := insight.DominanceRecord{
			Top:       append([]insight.CategoryCount(nil), top...),
			RareCount: RareCount(counts, a.params.RareThreshold, a.table.Rows()),
		}
		if rec.RareCount > 0 {
			a.diag.Warn("category_dominance: column %q has %d rare categories (below %.2f%% of %d rows)",
				name, rec.RareCount, a.params.RareThreshold*100, a.table.Rows())
		}

		if toggles.SavePlots {
			rec.Plot = savePlot(ctx, sink, a.diag, a.bar(name, top), plotName("category_dominance", name))
		}
		res.Add(name, rec)
	}
	return res, nil
}

func (a *DominanceAnalyzer) bar(name string, top []insight.CategoryCount) ports.ChartSpec {
	spec := ports.ChartSpec{
		Kind:     ports.ChartBar,
		Title:    fmt.Sprintf("Top %d categories of %s", len(top), name),
		XLabel:   name,
		YLabel:   "count",
		Bins:     a.style.HistogramBins,
		Palette:  a.style.ColorPalette,
		Template: a.style.Template,
	}
	for _, c := range top {
		spec.Categories = append(spec.Categories, c.Value)
		spec.Counts = append(spec.Counts, float64(c.Count))
	}
	return spec
}

// Frequencies counts non-null values, most frequent first, ties by value
func Frequencies(col *dataset.Column) []insight.CategoryCount {
	index := make(map[string]int)
	var counts []insight.CategoryCount
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v := col.Format(i)
		pos, ok := index[v]
		if !ok {
			pos = len(counts)
			index[v] = pos
			counts = append(counts, insight.CategoryCount{Value: v})
		}
		counts[pos].Count++
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	return counts
}

// RareCount counts categories whose frequency is strictly below threshold * rows
func RareCount(counts []insight.CategoryCount, threshold float64, rows int) int {
	limit := threshold * float64(rows)
	n := 0
	for _, c := range counts {
		if float64(c.Count) < limit {
			n++
		}
	}
	return n
}
