package eda

import (
	"fmt"
	"sort"
)

// Template is a named chart theme
type Template string

const (
	TemplatePlotly      Template = "plotly"
	TemplatePlotlyWhite Template = "plotly_white"
	TemplatePlotlyDark  Template = "plotly_dark"
	TemplateGGPlot2     Template = "ggplot2"
	TemplateSeaborn     Template = "seaborn"
)

// Theme is the concrete colour set behind a template
type Theme struct {
	Background string
	Plot       string
	Foreground string
	Grid       string
}

var themes = map[Template]Theme{
	TemplatePlotly:      {Background: "#FFFFFF", Plot: "#E5ECF6", Foreground: "#2A3F5F", Grid: "#FFFFFF"},
	TemplatePlotlyWhite: {Background: "#FFFFFF", Plot: "#FFFFFF", Foreground: "#2A3F5F", Grid: "#EBF0F8"},
	TemplatePlotlyDark:  {Background: "#111111", Plot: "#111111", Foreground: "#F2F5FA", Grid: "#283442"},
	TemplateGGPlot2:     {Background: "#FFFFFF", Plot: "#EBEBEB", Foreground: "#000000", Grid: "#FFFFFF"},
	TemplateSeaborn:     {Background: "#FFFFFF", Plot: "#EAEAF2", Foreground: "#000000", Grid: "#FFFFFF"},
}

// ParseTemplate validates a template name
func ParseTemplate(s string) (Template, error) {
	t := Template(s)
	if _, ok := themes[t]; !ok {
		return "", fmt.Errorf("unknown plot template %q: expected one of %v", s, Templates())
	}
	return t, nil
}

// Templates lists the supported template names
func Templates() []string {
	out := make([]string, 0, len(themes))
	for t := range themes {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

// Theme returns the colours for the template, falling back to plotly
func (t Template) Theme() Theme {
	if th, ok := themes[t]; ok {
		return th
	}
	return themes[TemplatePlotly]
}

// palettes holds qualitative and sequential colour scales by name
var palettes = map[string][]string{
	"Plotly":   {"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A", "#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52"},
	"D3":       {"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728", "#9467BD", "#8C564B", "#E377C2", "#7F7F7F", "#BCBD22", "#17BECF"},
	"G10":      {"#3366CC", "#DC3912", "#FF9900", "#109618", "#990099", "#0099C6", "#DD4477", "#66AA00", "#B82E2E", "#316395"},
	"T10":      {"#4C78A8", "#F58518", "#E45756", "#72B7B2", "#54A24B", "#EECA3B", "#B279A2", "#FF9DA6", "#9D755D", "#BAB0AC"},
	"Set1":     {"#E41A1C", "#377EB8", "#4DAF4A", "#984EA3", "#FF7F00", "#FFFF33", "#A65628", "#F781BF", "#999999"},
	"Set2":     {"#66C2A5", "#FC8D62", "#8DA0CB", "#E78AC3", "#A6D854", "#FFD92F", "#E5C494", "#B3B3B3"},
	"Pastel1":  {"#FBB4AE", "#B3CDE3", "#CCEBC5", "#DECBE4", "#FED9A6", "#FFFFCC", "#E5D8BD", "#FDDAEC", "#F2F2F2"},
	"Dark2":    {"#1B9E77", "#D95F02", "#7570B3", "#E7298A", "#66A61E", "#E6AB02", "#A6761D", "#666666"},
	"Viridis":  {"#440154", "#482878", "#3E4989", "#31688E", "#26828E", "#1F9E89", "#35B779", "#6ECE58", "#B5DE2B", "#FDE725"},
	"Plasma":   {"#0D0887", "#46039F", "#7201A8", "#9C179E", "#BD3786", "#D8576B", "#ED7953", "#FB9F3A", "#FDCA26", "#F0F921"},
	"Inferno":  {"#000004", "#1B0C41", "#4A0C6B", "#781C6D", "#A52C60", "#CF4446", "#ED6925", "#FB9B06", "#F7D13D", "#FCFFA4"},
	"Magma":    {"#000004", "#180F3D", "#440F76", "#721F81", "#9E2F7F", "#CD4071", "#F1605D", "#FD9668", "#FECA8D", "#FCFDBF"},
	"Cividis":  {"#00224E", "#123570", "#3B496C", "#575D6D", "#707173", "#8A8678", "#A59C74", "#C3B369", "#E1CC55", "#FEE838"},
	"Blues":    {"#F7FBFF", "#DEEBF7", "#C6DBEF", "#9ECAE1", "#6BAED6", "#4292C6", "#2171B5", "#08519C", "#08306B"},
	"Reds":     {"#FFF5F0", "#FEE0D2", "#FCBBA1", "#FC9272", "#FB6A4A", "#EF3B2C", "#CB181D", "#A50F15", "#67000D"},
	"Greens":   {"#F7FCF5", "#E5F5E0", "#C7E9C0", "#A1D99B", "#74C476", "#41AB5D", "#238B45", "#006D2C", "#00441B"},
	"RdBu":     {"#67001F", "#B2182B", "#D6604D", "#F4A582", "#FDDBC7", "#F7F7F7", "#D1E5F0", "#92C5DE", "#4393C3", "#2166AC", "#053061"},
	"Turbo":    {"#30123B", "#4145AB", "#4675ED", "#39A2FC", "#1BCFD4", "#24ECA6", "#61FC6C", "#A4FC3B", "#D1E834", "#F3C63A", "#FE9B2D", "#F36315", "#D93806", "#B11901", "#7A0402"},
	"Alphabet": {"#AA0DFE", "#3283FE", "#85660D", "#782AB6", "#565656", "#1C8356", "#16FF32", "#F7E1A0", "#E2E2E2", "#1CBE4F"},
}

// DefaultPalette is used when no palette is configured
const DefaultPalette = "Plotly"

// IsPalette reports whether name is a known palette
func IsPalette(name string) bool {
	_, ok := palettes[name]
	return ok
}

// Palettes lists the known palette names
func Palettes() []string {
	out := make([]string, 0, len(palettes))
	for p := range palettes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// PaletteColors returns the hex colours of a palette, falling back to the default one
func PaletteColors(name string) []string {
	if c, ok := palettes[name]; ok {
		return c
	}
	return palettes[DefaultPalette]
}
