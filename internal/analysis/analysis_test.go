package analysis

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/eda"
	"goeda/domain/insight"
	"goeda/internal/testkit"
	"goeda/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	allOn   = eda.Toggles{SavePlots: true, SaveInsights: true}
	allOff  = eda.Toggles{}
	style   = eda.PlotStyle{HistogramBins: 10, ColorPalette: "Viridis", Template: eda.TemplatePlotlyWhite}
	ctxBase = context.Background()
)

func ageTable() *dataset.Table {
	return testkit.MustTable("people.csv",
		dataset.NewFloatColumn("age", []float64{10, 12, 11, 13, 90}),
		dataset.NewStringColumn("name", []string{"ann", "bob", "cid", "dee", "eve"}),
	)
}

func TestOutlierAnalyzer_IQRFlagsExtremeValue(t *testing.T) {
	diag := &testkit.Diagnostics{}
	sink := testkit.NewRecordingSink("plots")
	a := NewOutlierAnalyzer(ageTable(), []string{"age"}, MethodIQR, NewStrategyRegistry(), style, diag)

	res, err := a.Run(ctxBase, allOn, sink)
	require.NoError(t, err)

	rec, ok := res.Records["age"].(insight.OutlierRecord)
	require.True(t, ok)
	assert.Equal(t, "iqr", rec.Method)
	assert.Equal(t, 1, rec.TotalOutliers)
	assert.InDelta(t, 20.0, rec.PercentOutliers, 1e-9)
	assert.Equal(t, 8.0, rec.LowerBound)
	assert.Equal(t, 16.0, rec.UpperBound)
	require.Len(t, rec.FrameSample, 1)
	assert.Equal(t, 90.0, rec.FrameSample[0]["age"])
	assert.Equal(t, "eve", rec.FrameSample[0]["name"])
	assert.Equal(t, "plots/outlier_age.png", rec.Plot)

	assert.Equal(t, []string{"- age: 1 outliers (20.00%)"}, res.Insights)

	spec := sink.Specs["outlier_age"]
	assert.Equal(t, ports.ChartScatter, spec.Kind)
	assert.Equal(t, []float64{90}, spec.X)
	assert.Equal(t, []float64{0}, spec.Y)
}

func TestOutlierAnalyzer_SkipsColumnsWithoutOutliers(t *testing.T) {
	table := testkit.MustTable("flat.csv", dataset.NewFloatColumn("x", []float64{1, 2, 3, 4, 5}))
	a := NewOutlierAnalyzer(table, []string{"x"}, MethodIQR, NewStrategyRegistry(), style, &testkit.Diagnostics{})

	res, err := a.Run(ctxBase, allOn, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Insights)
}

func TestOutlierAnalyzer_UnknownMethodIsWarnedAndSkipped(t *testing.T) {
	diag := &testkit.Diagnostics{}
	sink := &testkit.MockPlotSink{}
	a := NewOutlierAnalyzer(ageTable(), []string{"age"}, "zscore", NewStrategyRegistry(), style, diag)

	res, err := a.Run(ctxBase, allOn, sink)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.True(t, diag.WarnedAbout(`"zscore" is not supported`))
	sink.AssertNotCalled(t, "SavePlot", mock.Anything, mock.Anything, mock.Anything)
}

func TestOutlierAnalyzer_RegisteredStrategyIsUsed(t *testing.T) {
	registry := NewStrategyRegistry()
	registry.Register("max", func(table *dataset.Table, column string) (OutlierResult, error) {
		return OutlierResult{Rows: []int{4}, Count: 1, Percent: 20, Lower: math.Inf(-1), Upper: 89}, nil
	})
	assert.Equal(t, []string{"iqr", "max"}, registry.Methods())

	a := NewOutlierAnalyzer(ageTable(), []string{"age"}, "max", registry, style, &testkit.Diagnostics{})
	res, err := a.Run(ctxBase, allOff, nil)
	require.NoError(t, err)

	rec := res.Records["age"].(insight.OutlierRecord)
	assert.Equal(t, "max", rec.Method)
	assert.Equal(t, 89.0, rec.UpperBound)
}

func TestOutlierAnalyzer_PlotsOffKeepsMetricsOnly(t *testing.T) {
	sink := &testkit.MockPlotSink{}
	a := NewOutlierAnalyzer(ageTable(), []string{"age"}, MethodIQR, NewStrategyRegistry(), style, &testkit.Diagnostics{})

	res, err := a.Run(ctxBase, eda.Toggles{SaveInsights: true}, sink)
	require.NoError(t, err)

	rec := res.Records["age"].(insight.OutlierRecord)
	assert.Empty(t, rec.Plot)
	assert.Nil(t, rec.FrameSample)
	assert.Equal(t, 1, rec.TotalOutliers)
	sink.AssertNotCalled(t, "SavePlot", mock.Anything, mock.Anything, mock.Anything)
}

func TestOutlierAnalyzer_BoundsContainNonOutliers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		values := make([]float64, 60)
		for i := range values {
			values[i] = rng.NormFloat64() * float64(trial+1)
		}
		values[0] = 1e6
		table := testkit.MustTable("t.csv", dataset.NewFloatColumn("v", values))

		found, err := IQRStrategy(1.5)(table, "v")
		require.NoError(t, err)
		flagged := make(map[int]bool)
		for _, r := range found.Rows {
			flagged[r] = true
		}
		for i, v := range values {
			inside := v >= found.Lower && v <= found.Upper
			assert.Equal(t, !inside, flagged[i], "row %d value %v", i, v)
		}
		assert.Contains(t, found.Rows, 0)
	}
}

func TestIQRStrategy_RejectsNonNumericAndMissing(t *testing.T) {
	strategy := IQRStrategy(1.5)

	_, err := strategy(ageTable(), "name")
	assert.True(t, errors.Is(err, core.ErrUnsupportedType))

	_, err = strategy(ageTable(), "height")
	assert.True(t, core.IsNotFoundError(err))
}

func correlatedTable() *dataset.Table {
	return testkit.MustTable("pairs.csv",
		dataset.NewFloatColumn("a", []float64{1, 2, 3, 4, 5}),
		dataset.NewFloatColumn("b", []float64{2, 4, 6, 8, 10}),
		dataset.NewFloatColumn("c", []float64{5, 3, 4, 1, 2}),
		dataset.NewStringColumn("label", []string{"x", "y", "x", "y", "x"}),
	)
}

func TestCorrelationAnalyzer_PicksPerfectPair(t *testing.T) {
	sink := testkit.NewRecordingSink("plots")
	a := NewCorrelationAnalyzer(correlatedTable(), []string{"a", "b", "c"}, style, &testkit.Diagnostics{})

	res, err := a.Run(ctxBase, allOn, sink)
	require.NoError(t, err)

	rec, ok := res.Records[CorrelationKey].(insight.CorrelationRecord)
	require.True(t, ok)
	assert.Equal(t, "a", rec.TopA)
	assert.Equal(t, "b", rec.TopB)
	assert.InDelta(t, 1.0, rec.RValue, 1e-9)
	assert.Equal(t, []string{"a", "b", "c"}, rec.Columns)
	assert.Equal(t, "plots/correlation.png", rec.Plot)
	assert.Equal(t, []string{"- Strongest correlation: a vs b (r=1.00)"}, res.Insights)

	spec := sink.Specs["correlation"]
	assert.Equal(t, ports.ChartHeatmap, spec.Kind)
	require.Len(t, spec.Matrix, 3)
	assert.InDelta(t, -0.8, spec.Matrix[0][2], 1e-9)
	assert.Equal(t, 1.0, spec.Matrix[2][2])
}

func TestCorrelationAnalyzer_ContractViolations(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		target  error
	}{
		{"single column", []string{"a"}, core.ErrTooFewColumns},
		{"non numeric", []string{"a", "label"}, core.ErrNonNumericColumn},
		{"missing column", []string{"a", "zz"}, core.ErrColumnNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag := &testkit.Diagnostics{}
			a := NewCorrelationAnalyzer(correlatedTable(), tt.columns, style, diag)

			res, err := a.Run(ctxBase, allOn, nil)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, core.IsContractError(err))
			assert.True(t, errors.Is(err, tt.target))
			assert.NotEmpty(t, diag.Errors)
		})
	}
}

func TestCorrelationAnalyzer_ConstantColumnsYieldNoPair(t *testing.T) {
	table := testkit.MustTable("const.csv",
		dataset.NewFloatColumn("x", []float64{1, 1, 1}),
		dataset.NewFloatColumn("y", []float64{2, 2, 2}),
	)
	diag := &testkit.Diagnostics{}
	res, err := NewCorrelationAnalyzer(table, []string{"x", "y"}, style, diag).Run(ctxBase, allOn, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.True(t, diag.WarnedAbout("no defined correlation"))
}

func TestRankPairs_MaximisesAbsoluteCorrelation(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	columns := []string{"p", "q", "r", "s"}
	for trial := 0; trial < 10; trial++ {
		cols := make([]*dataset.Column, len(columns))
		for i, name := range columns {
			values := make([]float64, 30)
			for j := range values {
				values[j] = rng.Float64()
			}
			cols[i] = dataset.NewFloatColumn(name, values)
		}
		table := testkit.MustTable("rand.csv", cols...)
		m := PearsonMatrix(table, columns)
		pairs := RankPairs(columns, m)

		require.Len(t, pairs, 12)
		for _, p := range pairs {
			assert.NotEqual(t, p.A, p.B)
			assert.LessOrEqual(t, math.Abs(p.R), math.Abs(pairs[0].R))
		}
	}
}

func TestRankPairs_TiesAreLexicographic(t *testing.T) {
	table := testkit.MustTable("ties.csv",
		dataset.NewFloatColumn("z", []float64{1, 2, 3}),
		dataset.NewFloatColumn("m", []float64{3, 2, 1}),
	)
	pairs := RankPairs([]string{"z", "m"}, PearsonMatrix(table, []string{"z", "m"}))
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{A: "m", B: "z", R: pairs[0].R}, pairs[0])
	assert.InDelta(t, -1.0, pairs[0].R, 1e-9)
}

func dominanceTable() *dataset.Table {
	values := make([]string, 0, 100)
	for v, n := range map[string]int{"A": 50, "B": 30, "C": 15, "D": 5} {
		for i := 0; i < n; i++ {
			values = append(values, v)
		}
	}
	return testkit.MustTable("cats.csv", dataset.NewStringColumn("category", values))
}

func TestDominanceAnalyzer_TopAndRare(t *testing.T) {
	diag := &testkit.Diagnostics{}
	sink := testkit.NewRecordingSink("plots")
	params := eda.DominanceParams{TopN: 2, RareThreshold: 0.1}
	a := NewDominanceAnalyzer(dominanceTable(), []string{"category"}, params, style, diag)

	res, err := a.Run(ctxBase, allOn, sink)
	require.NoError(t, err)

	rec, ok := res.Records["category"].(insight.DominanceRecord)
	require.True(t, ok)
	assert.Equal(t, []insight.CategoryCount{{Value: "A", Count: 50}, {Value: "B", Count: 30}}, rec.Top)
	assert.Equal(t, 1, rec.RareCount, "only D at 5% is below 10%")
	assert.Equal(t, "plots/category_dominance_category.png", rec.Plot)
	assert.Empty(t, res.Insights)
	assert.True(t, diag.WarnedAbout("1 rare categories"))

	spec := sink.Specs["category_dominance_category"]
	assert.Equal(t, []string{"A", "B"}, spec.Categories)
	assert.Equal(t, []float64{50, 30}, spec.Counts)
}

func TestRareCount_IsStrict(t *testing.T) {
	counts := []insight.CategoryCount{{Value: "a", Count: 90}, {Value: "b", Count: 10}}
	assert.Equal(t, 0, RareCount(counts, 0.1, 100))
	assert.Equal(t, 1, RareCount(counts, 0.11, 100))
}

func TestFrequencies_IgnoresNullsAndOrdersTies(t *testing.T) {
	col := dataset.NewStringColumn("c", []string{"b", "a", "b", "a", "", "c"}).WithNulls(4)
	counts := Frequencies(col)
	assert.Equal(t, []insight.CategoryCount{
		{Value: "a", Count: 2},
		{Value: "b", Count: 2},
		{Value: "c", Count: 1},
	}, counts)
}

func TestDistributionAnalyzer_NumericAndCategorical(t *testing.T) {
	table := testkit.MustTable("people.csv",
		dataset.NewFloatColumn("age", []float64{10, 12, 11, 13, 90}),
		dataset.NewStringColumn("city", []string{"a", "b", "a", "", "c"}).WithNulls(3),
		dataset.NewBoolColumn("member", []bool{true, false, true, true, false}),
	)
	diag := &testkit.Diagnostics{}
	sink := testkit.NewRecordingSink("plots")
	a := NewDistributionAnalyzer(table, []string{"age", "city", "member", "ghost"}, style, diag)

	res, err := a.Run(ctxBase, allOn, sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "city"}, res.Keys())
	num := res.Records["age"].(insight.NumericDistribution)
	assert.Equal(t, "numeric", num.Type)
	assert.InDelta(t, 27.2, num.Mean, 1e-9)
	assert.Equal(t, 12.0, num.Median)
	assert.InDelta(t, 35.124, num.Std, 1e-3)
	assert.Equal(t, [2]float64{10, 90}, num.Percentile)
	assert.Equal(t, insight.SkewPositive, num.Skew)
	assert.Equal(t, "plots/distribution_age.png", num.Plot)

	cat := res.Records["city"].(insight.CategoricalDistribution)
	assert.Equal(t, 4, cat.Unique)

	assert.Equal(t, []string{
		"- age: mean=27, median=12.00, std=35.12 -> skew positive",
		"city unique values = 4",
	}, res.Insights)
	assert.True(t, diag.WarnedAbout(`"member"`))
	assert.True(t, diag.ErroredAbout(`"ghost"`))

	spec := sink.Specs["distribution_age"]
	assert.Equal(t, ports.ChartHistogram, spec.Kind)
	assert.Equal(t, 10, spec.Bins)
	assert.Equal(t, "Viridis", spec.Palette)
}

func TestDistributionAnalyzer_SkewMatchesMeanVersusMedian(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 25; trial++ {
		values := make([]float64, 15+trial)
		for i := range values {
			values[i] = math.Floor(rng.ExpFloat64() * 10)
		}
		table := testkit.MustTable("t.csv", dataset.NewFloatColumn("v", values))
		res, err := NewDistributionAnalyzer(table, []string{"v"}, style, &testkit.Diagnostics{}).Run(ctxBase, allOff, nil)
		require.NoError(t, err)

		rec := res.Records["v"].(insight.NumericDistribution)
		switch {
		case rec.Mean > rec.Median:
			assert.Equal(t, insight.SkewPositive, rec.Skew)
		case rec.Mean < rec.Median:
			assert.Equal(t, insight.SkewNegative, rec.Skew)
		default:
			assert.Equal(t, insight.SkewSymmetric, rec.Skew)
		}
		assert.LessOrEqual(t, rec.Min, rec.Percentile[0])
		assert.LessOrEqual(t, rec.Percentile[1], rec.Max)
	}
}

func TestToggles_GateInsightsAndPlots(t *testing.T) {
	table := testkit.SalesTable()
	diag := &testkit.Diagnostics{}
	sink := &testkit.MockPlotSink{}

	res, err := NewDistributionAnalyzer(table, table.ColumnNames(), style, diag).Run(ctxBase, allOff, sink)
	require.NoError(t, err)

	assert.Empty(t, res.Insights)
	assert.Empty(t, diag.Infos)
	for _, key := range res.Keys() {
		assert.Empty(t, res.Records[key].PlotPath(), key)
	}
	sink.AssertNotCalled(t, "SavePlot", mock.Anything, mock.Anything, mock.Anything)
}

func TestAutoInsights_EchoThroughDiagnostics(t *testing.T) {
	diag := &testkit.Diagnostics{}
	a := NewOutlierAnalyzer(ageTable(), []string{"age"}, MethodIQR, NewStrategyRegistry(), style, diag)

	res, err := a.Run(ctxBase, eda.Toggles{AutoInsights: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Insights)
	assert.Equal(t, []string{"- age: 1 outliers (20.00%)"}, diag.Infos)
}

func TestSinkFailure_DropsOnlyThePlot(t *testing.T) {
	diag := &testkit.Diagnostics{}
	sink := &testkit.MockPlotSink{}
	sink.On("SavePlot", mock.Anything, mock.Anything, "distribution_age").Return("", errors.New("disk full"))

	table := testkit.MustTable("t.csv", dataset.NewFloatColumn("age", []float64{10, 12, 11, 13, 90}))
	res, err := NewDistributionAnalyzer(table, []string{"age"}, style, diag).Run(ctxBase, allOn, sink)
	require.NoError(t, err)

	rec := res.Records["age"].(insight.NumericDistribution)
	assert.Empty(t, rec.Plot)
	assert.InDelta(t, 27.2, rec.Mean, 1e-9)
	assert.True(t, diag.WarnedAbout("disk full"))
	sink.AssertExpectations(t)
}

func TestAnalyzers_AreIdempotent(t *testing.T) {
	table := testkit.SalesTable()
	factory := NewFactory(nil, &testkit.Diagnostics{})
	entries := []eda.Entry{
		{ID: eda.Distribution, Enable: true, Columns: table.ColumnNames()},
		{ID: eda.Outliers, Enable: true, Columns: []string{"price", "revenue"}, Outliers: &eda.OutlierParams{Method: MethodIQR}},
		{ID: eda.Correlation, Enable: true, Columns: []string{"price", "quantity", "revenue", "discount"}},
		{ID: eda.CategoryDominance, Enable: true, Columns: []string{"city"}, Dominance: &eda.DominanceParams{TopN: 3, RareThreshold: 0.05}},
	}
	for _, entry := range entries {
		t.Run(string(entry.ID), func(t *testing.T) {
			a, err := factory.Build(entry, table, style)
			require.NoError(t, err)
			assert.Equal(t, entry.ID, a.ID())

			first, err := a.Run(ctxBase, allOn, testkit.NewRecordingSink("plots"))
			require.NoError(t, err)
			second, err := a.Run(ctxBase, allOn, testkit.NewRecordingSink("plots"))
			require.NoError(t, err)
			assert.Equal(t, first, second)
			assert.NotEmpty(t, first.Records)
		})
	}
}

func TestFactory_RejectsIncompleteEntries(t *testing.T) {
	factory := NewFactory(nil, &testkit.Diagnostics{})
	table := ageTable()

	_, err := factory.Build(eda.Entry{ID: eda.Outliers, Columns: []string{"age"}}, table, style)
	assert.True(t, core.IsContractError(err))

	_, err = factory.Build(eda.Entry{ID: eda.CategoryDominance, Columns: []string{"name"}}, table, style)
	assert.True(t, core.IsContractError(err))

	_, err = factory.Build(eda.Entry{ID: "clustering"}, table, style)
	assert.True(t, core.IsContractError(err))
}

func TestRun_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(ctxBase)
	cancel()
	_, err := NewDistributionAnalyzer(ageTable(), []string{"age"}, style, &testkit.Diagnostics{}).Run(ctx, allOn, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlotName_SanitisesColumn(t *testing.T) {
	assert.Equal(t, "distribution_unit_price", plotName("distribution", "unit_price"))
	assert.Equal(t, "correlation", plotName("correlation", ""))

	spaced := plotName("distribution", "unit price")
	assert.Regexp(t, `^distribution_unit_price_[0-9a-f]{8}$`, spaced)
	assert.Equal(t, spaced, plotName("distribution", "unit price"), "stems are deterministic")

	stems := map[string]string{}
	for _, col := range []string{"unit price", "unit_price", "unit-price", "unit$price", "unit  price"} {
		stem := plotName("distribution", col)
		prev, dup := stems[stem]
		assert.False(t, dup, "%q and %q share the stem %s", prev, col, stem)
		stems[stem] = col
	}
}

func TestDistributionAnalyzer_SimilarColumnNamesKeepSeparateCharts(t *testing.T) {
	table := testkit.MustTable("prices.csv",
		dataset.NewFloatColumn("unit price", []float64{1, 2, 3, 4}),
		dataset.NewFloatColumn("unit_price", []float64{10, 20, 30, 40}),
	)
	sink := testkit.NewRecordingSink("plots")
	res, err := NewDistributionAnalyzer(table, []string{"unit price", "unit_price"}, style, &testkit.Diagnostics{}).Run(ctxBase, allOn, sink)
	require.NoError(t, err)

	a := res.Records["unit price"].(insight.NumericDistribution)
	b := res.Records["unit_price"].(insight.NumericDistribution)
	assert.NotEqual(t, a.Plot, b.Plot)
	assert.Len(t, sink.Specs, 2)
}
