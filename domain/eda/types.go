// Package eda holds the typed, already-validated settings a report run consumes.
// Values here are produced once by internal/config and only read afterwards.
package eda

import "fmt"

// AnalysisID identifies one kind of analysis entry
type AnalysisID string

const (
	Distribution      AnalysisID = "distribution"
	Outliers          AnalysisID = "outliers"
	Correlation       AnalysisID = "correlation"
	CategoryDominance AnalysisID = "category_dominance"
)

// AnalysisIDs lists every supported id in canonical order
var AnalysisIDs = []AnalysisID{Distribution, Outliers, Correlation, CategoryDominance}

// ParseAnalysisID validates an id coming from configuration
func ParseAnalysisID(s string) (AnalysisID, error) {
	for _, id := range AnalysisIDs {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown analysis id %q: expected one of %v", s, AnalysisIDs)
}

// Toggles are the global output and behaviour switches of a report run
type Toggles struct {
	SavePlots    bool `json:"save_plots"`
	SaveInsights bool `json:"save_insights"`
	AutoInsights bool `json:"auto_insights"`
}

// PlotStyle is opaque styling handed through to the plot sink
type PlotStyle struct {
	HistogramBins int      `json:"histogram_bins"`
	ColorPalette  string   `json:"color_palette"`
	Template      Template `json:"plotly_template"`
}

// Entry is one enabled or disabled analysis with its columns and parameters.
// Exactly one of the parameter pointers matching ID is set.
type Entry struct {
	ID      AnalysisID `json:"id"`
	Enable  bool       `json:"enable"`
	Columns []string   `json:"columns"`

	Outliers  *OutlierParams   `json:"outliers,omitempty"`
	Dominance *DominanceParams `json:"category_dominance,omitempty"`
}

// OutlierParams configure the outlier analysis
type OutlierParams struct {
	Method string `json:"method"`
}

// DominanceParams configure the category dominance analysis
type DominanceParams struct {
	TopN          int     `json:"top_n"`
	RareThreshold float64 `json:"rare_threshold"`
}

// Settings is everything the report assembler needs for one run
type Settings struct {
	Toggles Toggles   `json:"toggles"`
	Style   PlotStyle `json:"style"`
	Entries []Entry   `json:"entries"`
}

// Enabled returns the enabled entries in configuration order
func (s Settings) Enabled() []Entry {
	out := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Enable {
			out = append(out, e)
		}
	}
	return out
}
