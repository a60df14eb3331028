package config

import (
	"os"
	"path/filepath"

	apperrors "goeda/internal/errors"

	"gopkg.in/yaml.v3"
)

// Template returns a complete starter configuration for inputPath
func Template(inputPath string) *File {
	enabled := true
	return &File{
		Data: DataSection{InputPath: inputPath, Sample: 1, Encoding: "utf-8", Seed: 42},
		EDA:  EDASection{Thresholds: ThresholdsSection{NullThreshold: 0.3}},
		AnalysisConfig: AnalysisSection{
			Plots: PlotsSection{
				HistogramBins:  20,
				ColorPalette:   "Plotly",
				PlotlyTemplate: "plotly_white",
				Format:         FormatPNG,
			},
			Output: OutputSection{
				ReportFolderName: "reports",
				SavePlots:        true,
				InsightsJSONName: "insights.json",
				SaveInsights:     true,
			},
		},
		DataAnalysis: DataAnalysisSection{
			RepresentativeColumns: []string{},
			AutoInsights:          true,
			InsightQuestions: []Question{
				{ID: "distribution", Enable: &enabled, Columns: []string{}},
				{ID: "outliers", Enable: &enabled, Columns: []string{}, Method: "iqr"},
				{ID: "correlation", Enable: &enabled, Columns: []string{}, MinNumericCol: 2},
				{ID: "category_dominance", Enable: &enabled, Columns: []string{}, TopN: 5, RareThreshold: 0.01},
			},
		},
	}
}

// WriteTemplate writes f as yaml to path, refusing to overwrite unless force is set
func WriteTemplate(f *File, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return apperrors.InvalidInput(path + " already exists, use --force to overwrite")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.Wrapf(err, "mkdir %s", dir)
		}
	}
	b, err := yaml.Marshal(f)
	if err != nil {
		return apperrors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return apperrors.Wrapf(err, "write config %s", path)
	}
	return nil
}
