package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/eda"
	"goeda/domain/insight"
	"goeda/ports"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationKey is the fixed record key of the correlation result
const CorrelationKey = "correlation"

// Pair is one off-diagonal cell of a correlation matrix in long form
type Pair struct {
	A string
	B string
	R float64
}

// CorrelationAnalyzer finds the strongest Pearson correlation among numeric columns
type CorrelationAnalyzer struct {
	table   *dataset.Table
	columns []string
	style   eda.PlotStyle
	diag    ports.Diagnostics
}

// NewCorrelationAnalyzer creates a correlation analyzer over at least two numeric columns
func NewCorrelationAnalyzer(table *dataset.Table, columns []string, style eda.PlotStyle, diag ports.Diagnostics) *CorrelationAnalyzer {
	return &CorrelationAnalyzer{table: table, columns: columns, style: style, diag: diag}
}

func (a *CorrelationAnalyzer) ID() eda.AnalysisID { return eda.Correlation }

// Run fails hard when the column contract is broken: fewer than two columns,
// an unknown column or a non-numeric one.
func (a *CorrelationAnalyzer) Run(ctx context.Context, toggles eda.Toggles, sink ports.PlotSink) (*insight.Result, error) {
	if err := a.checkColumns(); err != nil {
		a.diag.Error("correlation: %v", err)
		return nil, core.NewContractError("correlation", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := insight.NewResult(eda.Correlation)
	out := newEmitter(a.diag, toggles, res)

	matrix := PearsonMatrix(a.table, a.columns)
	pairs := RankPairs(a.columns, matrix)
	if len(pairs) == 0 {
		a.diag.Warn("correlation: no defined correlation among %v (constant or empty columns)", a.columns)
		return res, nil
	}
	top := pairs[0]

	out.emit(fmt.Sprintf("- Strongest correlation: %s vs %s (r=%.2f)", top.A, top.B, top.R))

	rec := insight.CorrelationRecord{
		Columns: append([]string(nil), a.columns...),
		TopA:    top.A,
		TopB:    top.B,
		RValue:  top.R,
	}
	if toggles.SavePlots {
		spec := ports.ChartSpec{
			Kind:     ports.ChartHeatmap,
			Title:    "Correlation matrix",
			Labels:   rec.Columns,
			Matrix:   denseRows(matrix),
			Palette:  a.style.ColorPalette,
			Template: a.style.Template,
		}
		rec.Plot = savePlot(ctx, sink, a.diag, spec, plotName("correlation", ""))
	}
	res.Add(CorrelationKey, rec)
	return res, nil
}

func (a *CorrelationAnalyzer) checkColumns() error {
	if len(a.columns) < 2 {
		return fmt.Errorf("%w: got %d, need at least 2", core.ErrTooFewColumns, len(a.columns))
	}
	class := a.table.Classification()
	for _, name := range a.columns {
		if !a.table.HasColumn(name) {
			return fmt.Errorf("%w: %v", core.ErrContractViolation, core.NewColumnNotFoundError(name))
		}
		if !class.IsNumeric(name) {
			return fmt.Errorf("%w: %q", core.ErrNonNumericColumn, name)
		}
	}
	return nil
}

// PearsonMatrix computes pairwise Pearson correlations using, for each pair,
// the rows where both columns hold a value. Undefined cells are NaN.
func PearsonMatrix(table *dataset.Table, columns []string) *mat.SymDense {
	n := len(columns)
	m := mat.NewSymDense(n, nil)
	cols := make([]*dataset.Column, n)
	for i, name := range columns {
		cols[i], _ = table.Column(name)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := completePairs(cols[i], cols[j])
			r := math.NaN()
			if len(x) >= 2 {
				r = stat.Correlation(x, y, nil)
			}
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.SetSym(i, j, r)
		}
	}
	return m
}

func completePairs(a, b *dataset.Column) (x, y []float64) {
	for r := 0; r < a.Len(); r++ {
		va, okA := a.Float(r)
		vb, okB := b.Float(r)
		if okA && okB {
			x = append(x, va)
			y = append(y, vb)
		}
	}
	return x, y
}

// RankPairs reshapes the matrix into long form, drops self pairs and undefined
// cells, and orders by absolute correlation descending. Equal magnitudes are
// ordered lexicographically by (A, B) so the ranking is reproducible.
func RankPairs(columns []string, m *mat.SymDense) []Pair {
	n := len(columns)
	pairs := make([]Pair, 0, n*(n-1))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if columns[i] == columns[j] {
				continue
			}
			r := m.At(i, j)
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, Pair{A: columns[i], B: columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai != aj {
			return ai > aj
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

func denseRows(m *mat.SymDense) [][]float64 {
	n := m.SymmetricDim()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}
