package plot

import (
	"fmt"
	"io"
	"math"

	"goeda/ports"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const heatmapMargin = 120

// renderHeatmap draws an annotated square matrix with go-chart's raster
// renderer. go-chart has no heatmap series, so cells are filled paths.
func renderHeatmap(spec ports.ChartSpec, width, height int, w io.Writer) error {
	n := len(spec.Labels)
	if n == 0 || len(spec.Matrix) != n {
		return fmt.Errorf("heatmap %q needs a %dx%d matrix", spec.Title, n, n)
	}
	c := newColours(spec.Palette, spec.Template)

	r, err := chart.PNG(width, height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)

	fillRect(r, 0, 0, width, height, c.background)

	side := min(width, height) - 2*heatmapMargin
	cell := side / n
	if cell < 1 {
		return fmt.Errorf("heatmap %q: %d labels do not fit %dx%d", spec.Title, n, width, height)
	}
	left := (width - cell*n) / 2
	top := heatmapMargin

	r.SetFontColor(c.foreground)
	r.SetFontSize(14)
	r.Text(spec.Title, left, top/2)

	r.SetFontSize(10)
	for i, label := range spec.Labels {
		box := r.MeasureText(label)
		r.Text(label, left-box.Width()-6, top+i*cell+cell/2+box.Height()/2)
		r.Text(label, left+i*cell+(cell-box.Width())/2, top+n*cell+box.Height()+6)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := spec.Matrix[i][j]
			x, y := left+j*cell, top+i*cell
			fillRect(r, x, y, cell, cell, c.scale(v))

			text := "nan"
			if !math.IsNaN(v) {
				text = fmt.Sprintf("%.2f", v)
			}
			box := r.MeasureText(text)
			r.SetFontColor(c.foreground)
			r.Text(text, x+(cell-box.Width())/2, y+(cell+box.Height())/2)
		}
	}
	return r.Save(w)
}

func fillRect(r chart.Renderer, x, y, w, h int, col drawing.Color) {
	r.SetFillColor(col)
	r.MoveTo(x, y)
	r.LineTo(x+w, y)
	r.LineTo(x+w, y+h)
	r.LineTo(x, y+h)
	r.Close()
	r.Fill()
}
