package plot

import (
	"fmt"
	"math"
	"strings"

	"goeda/domain/eda"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// colours resolves a palette and template into go-chart colours
type colours struct {
	series     []drawing.Color
	background drawing.Color
	canvas     drawing.Color
	foreground drawing.Color
	grid       drawing.Color
}

func newColours(palette string, template eda.Template) colours {
	th := template.Theme()
	c := colours{
		background: hexColor(th.Background),
		canvas:     hexColor(th.Plot),
		foreground: hexColor(th.Foreground),
		grid:       hexColor(th.Grid),
	}
	for _, h := range eda.PaletteColors(palette) {
		c.series = append(c.series, hexColor(h))
	}
	return c
}

// at cycles through the palette
func (c colours) at(i int) drawing.Color {
	return c.series[i%len(c.series)]
}

// scale maps v in [-1, 1] onto the palette as a continuous colour scale
func (c colours) scale(v float64) drawing.Color {
	if math.IsNaN(v) {
		return c.grid
	}
	if len(c.series) == 1 {
		return c.series[0]
	}
	t := (math.Max(-1, math.Min(1, v)) + 1) / 2 * float64(len(c.series)-1)
	i := int(math.Floor(t))
	if i >= len(c.series)-1 {
		return c.series[len(c.series)-1]
	}
	return lerp(c.series[i], c.series[i+1], t-float64(i))
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func hexColor(h string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(h, "#"))
}

func hexOf(c drawing.Color) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
