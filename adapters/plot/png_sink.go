// Package plot renders chart specs into artifacts: PNG files through go-chart
// and native spreadsheet charts through excelize.
package plot

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"goeda/internal"
	apperrors "goeda/internal/errors"
	"goeda/ports"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	defaultWidth  = 1024
	defaultHeight = 576
)

// PNGSink writes one PNG file per chart under a directory
type PNGSink struct {
	dir    string
	width  int
	height int
	logger *internal.Logger
}

var _ ports.PlotSink = (*PNGSink)(nil)

// NewPNGSink creates the output directory if needed
func NewPNGSink(dir string, logger *internal.Logger) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrapf(err, "create plot directory %s", dir)
	}
	if logger == nil {
		logger = internal.NewLoggerWithZap(internal.LogLevelError, nil)
	}
	return &PNGSink{dir: dir, width: defaultWidth, height: defaultHeight, logger: logger}, nil
}

// SavePlot renders spec to <dir>/<name>.png and returns that path
func (s *PNGSink) SavePlot(ctx context.Context, spec ports.ChartSpec, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	var err error
	switch spec.Kind {
	case ports.ChartHistogram:
		err = s.histogram(spec, &buf)
	case ports.ChartBar:
		err = s.bar(spec.Title, spec.YLabel, spec.Categories, spec.Counts, newColours(spec.Palette, spec.Template), &buf)
	case ports.ChartScatter:
		err = s.scatter(spec, &buf)
	case ports.ChartHeatmap:
		err = renderHeatmap(spec, s.width, s.height, &buf)
	default:
		err = fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return "", apperrors.RenderError(name, err)
	}

	path := filepath.Join(s.dir, name+".png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", apperrors.RenderError(name, err)
	}
	s.logger.Debug("[PNGSink] wrote %s (%s, %d bytes)", path, spec.Kind, buf.Len())
	return path, nil
}

func (s *PNGSink) histogram(spec ports.ChartSpec, buf *bytes.Buffer) error {
	bins := Histogram(spec.X, spec.Bins)
	if len(bins.Counts) == 0 {
		return fmt.Errorf("histogram %q has no values", spec.Title)
	}
	return s.bar(spec.Title, spec.YLabel, bins.Labels(), bins.Counts, newColours(spec.Palette, spec.Template), buf)
}

func (s *PNGSink) bar(title, yLabel string, labels []string, values []float64, c colours, buf *bytes.Buffer) error {
	if len(values) == 0 {
		return fmt.Errorf("bar chart %q has no bars", title)
	}
	bars := make([]chart.Value, len(values))
	for i, v := range values {
		bars[i] = chart.Value{
			Label: labels[i],
			Value: v,
			Style: chart.Style{FillColor: c.at(0), StrokeColor: c.at(0)},
		}
	}

	const barWidth, spacing = 24, 8
	width := s.width
	if need := 200 + len(bars)*(barWidth+spacing); need > width {
		width = need
	}

	bc := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: c.foreground},
		Width:      width,
		Height:     s.height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{
			FillColor: c.background,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: c.canvas},
		XAxis:  chart.Style{FontColor: c.foreground, StrokeColor: c.foreground},
		YAxis: chart.YAxis{
			Name:  yLabel,
			Style: chart.Style{FontColor: c.foreground, StrokeColor: c.foreground},
			Range: &chart.ContinuousRange{Min: 0, Max: maxOf(values) * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, buf)
}

func (s *PNGSink) scatter(spec ports.ChartSpec, buf *bytes.Buffer) error {
	if len(spec.X) == 0 {
		return fmt.Errorf("scatter %q has no points", spec.Title)
	}
	c := newColours(spec.Palette, spec.Template)
	lo, hi := minOf(spec.X), maxOf(spec.X)
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	ylo, yhi := minOf(spec.Y), maxOf(spec.Y)
	if ylo == yhi {
		ylo, yhi = ylo-1, yhi+1
	}

	ch := chart.Chart{
		Title:      spec.Title,
		TitleStyle: chart.Style{FontColor: c.foreground},
		Width:      s.width,
		Height:     s.height,
		Background: chart.Style{
			FillColor: c.background,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: c.canvas},
		XAxis: chart.XAxis{
			Name:  spec.XLabel,
			Style: chart.Style{FontColor: c.foreground},
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Style: chart.Style{FontColor: c.foreground},
			Range: &chart.ContinuousRange{Min: ylo, Max: yhi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.XLabel,
				XValues: spec.X,
				YValues: spec.Y,
				Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 5, DotColor: c.at(1)},
			},
		},
	}
	return ch.Render(chart.PNG, buf)
}

func minOf(xs []float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		m = math.Min(m, x)
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = math.Max(m, x)
	}
	return m
}
