package plot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"goeda/domain/eda"
	"goeda/internal"
	apperrors "goeda/internal/errors"
	"goeda/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testLogger(t *testing.T) *internal.Logger {
	return internal.NewLoggerWithZap(internal.LogLevelDebug, zaptest.NewLogger(t))
}

func specs() map[string]ports.ChartSpec {
	return map[string]ports.ChartSpec{
		"distribution_age": {
			Kind: ports.ChartHistogram, Title: "Distribution of age", XLabel: "age", YLabel: "count",
			X: []float64{10, 12, 11, 13, 90}, Bins: 5, Palette: "Viridis", Template: eda.TemplatePlotlyDark,
		},
		"outlier_age": {
			Kind: ports.ChartScatter, Title: "Outliers in age", XLabel: "age",
			X: []float64{90}, Y: []float64{0},
		},
		"category_dominance_city": {
			Kind: ports.ChartBar, Title: "Top 2 categories of city", XLabel: "city", YLabel: "count",
			Categories: []string{"Lima", "Quito"}, Counts: []float64{50, 30}, Palette: "Set2",
		},
		"correlation": {
			Kind: ports.ChartHeatmap, Title: "Correlation matrix",
			Labels: []string{"a", "b"},
			Matrix: [][]float64{{1, -0.4}, {-0.4, 1}},
			Palette: "RdBu", Template: eda.TemplateSeaborn,
		},
	}
}

func TestHistogram_CountsEveryValue(t *testing.T) {
	bins := Histogram([]float64{10, 12, 11, 13, 90}, 4)
	require.Len(t, bins.Edges, 5)
	require.Len(t, bins.Counts, 4)
	assert.Equal(t, 10.0, bins.Edges[0])
	assert.Equal(t, []float64{4, 0, 0, 1}, bins.Counts)

	total := 0.0
	for _, c := range bins.Counts {
		total += c
	}
	assert.Equal(t, 5.0, total)
}

func TestHistogram_ConstantAndEmpty(t *testing.T) {
	bins := Histogram([]float64{3, 3, 3}, 0)
	require.Len(t, bins.Counts, DefaultBins)
	assert.InDelta(t, 2.5, bins.Edges[0], 1e-12)

	sum := 0.0
	for _, c := range bins.Counts {
		sum += c
	}
	assert.Equal(t, 3.0, sum)

	assert.Empty(t, Histogram(nil, 5).Counts)
}

func TestPNGSink_WritesEveryChartKind(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	sink, err := NewPNGSink(dir, testLogger(t))
	require.NoError(t, err)

	for name, spec := range specs() {
		t.Run(name, func(t *testing.T) {
			path, err := sink.SavePlot(context.Background(), spec, name)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, name+".png"), path)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, pngMagic))
		})
	}
}

func TestPNGSink_RejectsEmptyCharts(t *testing.T) {
	sink, err := NewPNGSink(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = sink.SavePlot(context.Background(), ports.ChartSpec{Kind: ports.ChartBar, Title: "empty"}, "empty")
	assert.Error(t, err)

	_, err = sink.SavePlot(context.Background(), ports.ChartSpec{Kind: "pie"}, "pie")
	assert.Error(t, err)
}

func TestWorkbookSink_CollectsChartsIntoSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	sink, err := NewWorkbookSink(path, testLogger(t))
	require.NoError(t, err)
	defer sink.Close()

	ctx := context.Background()
	all := specs()
	for _, name := range []string{"distribution_age", "outlier_age", "category_dominance_city", "correlation"} {
		ref, err := sink.SavePlot(ctx, all[name], name)
		require.NoError(t, err)
		assert.Equal(t, path+"#"+name, ref)
	}
	require.NoError(t, sink.Save())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"charts", "distribution_age", "outlier_age", "category_dominance_city", "correlation"}, f.GetSheetList())

	v, err := f.GetCellValue("category_dominance_city", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Lima", v)

	v, err = f.GetCellValue("correlation", "C2")
	require.NoError(t, err)
	assert.Equal(t, "-0.4", v)

	v, err = f.GetCellValue("charts", "A5")
	require.NoError(t, err)
	assert.Equal(t, "correlation", v)
}

func TestWorkbookSink_SheetNamesAreUniqueAndShort(t *testing.T) {
	sink, err := NewWorkbookSink(filepath.Join(t.TempDir(), "r.xlsx"), nil)
	require.NoError(t, err)
	defer sink.Close()

	long := "category_dominance_a_really_long_column_name"
	spec := specs()["category_dominance_city"]
	first, err := sink.SavePlot(context.Background(), spec, long)
	require.NoError(t, err)
	second, err := sink.SavePlot(context.Background(), spec, long)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	for _, s := range sink.Sheets() {
		assert.LessOrEqual(t, len(s), maxSheetName)
	}
	assert.Len(t, sink.Sheets(), 2)
}

func TestColours_ScaleEndpoints(t *testing.T) {
	c := newColours("RdBu", eda.TemplatePlotly)
	assert.Equal(t, c.series[0], c.scale(-1))
	assert.Equal(t, c.series[len(c.series)-1], c.scale(1))
	assert.Equal(t, c.grid, c.scale(nan()))
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestNullSink_ReturnsEmptyReference(t *testing.T) {
	ref, err := NullSink{}.SavePlot(context.Background(), specs()["correlation"], "correlation")
	require.NoError(t, err)
	assert.Empty(t, ref)
}

func TestOpen_SelectsSinkByFormat(t *testing.T) {
	dir := t.TempDir()

	sink, finish, err := Open(context.Background(), dir, "png", nil)
	require.NoError(t, err)
	assert.IsType(t, &PNGSink{}, sink)
	assert.NoError(t, finish())
	assert.DirExists(t, filepath.Join(dir, "plots"))

	sink, finish, err = Open(context.Background(), dir, "xlsx", nil)
	require.NoError(t, err)
	_, err = sink.SavePlot(context.Background(), ports.ChartSpec{Kind: ports.ChartBar, Title: "city", Categories: []string{"a"}, Counts: []float64{1}}, "dominance_city")
	require.NoError(t, err)
	require.NoError(t, finish())
	assert.FileExists(t, filepath.Join(dir, "plots.xlsx"))

	_, _, err = Open(context.Background(), dir, "svg", nil)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}
