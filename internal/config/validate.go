package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goeda/domain/dataset"
	"goeda/domain/eda"
	apperrors "goeda/internal/errors"
	"goeda/ports"
)

// Plot output formats
const (
	FormatPNG  = "png"
	FormatXLSX = "xlsx"
)

var encodings = []string{"utf-8", "ascii", "latin-1"}

// RunConfig is a validated configuration, ready to drive one report run.
// Settings.Entries is only populated once Bind has seen the dataset schema.
type RunConfig struct {
	InputPath        string
	Sample           float64
	Seed             int64
	Encoding         string
	Sheet            string
	ParseDates       bool
	LenientNumbers   bool
	NullThreshold    float64
	ReportDir        string
	InsightsJSONName string
	PlotFormat       string

	RepresentativeColumns []string
	Settings              eda.Settings

	questions []Question
}

// Validate checks every field that does not need the dataset and returns the
// run configuration. The insights file name is dated with now.
func Validate(f *File, now time.Time) (*RunConfig, error) {
	if err := checkInput(f.Data.InputPath); err != nil {
		return nil, err
	}
	return ValidateSettings(f, now)
}

// ValidateSettings is Validate without the input file checks, for datasets
// that do not come from data.input_path (uploads, database queries).
func ValidateSettings(f *File, now time.Time) (*RunConfig, error) {
	d := f.Data
	if d.Sample < 0.01 || d.Sample > 1 {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("data.sample must be within [0.01, 1], got %v", d.Sample))
	}
	if !contains(encodings, d.Encoding) {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("data.encoding %q is not one of %v", d.Encoding, encodings))
	}

	nt := f.EDA.Thresholds.NullThreshold
	if nt <= 0.01 || nt > 1 {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("eda.thresholds.null_threshold must be within (0.01, 1], got %v", nt))
	}

	plots := f.AnalysisConfig.Plots
	if plots.HistogramBins <= 0 || plots.HistogramBins > 30 {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("histogram_bins must be within (0, 30], got %d", plots.HistogramBins))
	}
	if !eda.IsPalette(plots.ColorPalette) {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("the color %s does not exist in the palette catalog. Available palettes: %v", plots.ColorPalette, eda.Palettes()))
	}
	template, err := eda.ParseTemplate(plots.PlotlyTemplate)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeConfigInvalid, err)
	}
	format := strings.ToLower(plots.Format)
	if format == "" {
		format = FormatPNG
	}
	if format != FormatPNG && format != FormatXLSX {
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("plots.format must be %q or %q, got %q", FormatPNG, FormatXLSX, plots.Format))
	}

	out := f.AnalysisConfig.Output
	if out.ReportFolderName == "" {
		return nil, apperrors.ConfigInvalid("output.report_folder_name is required")
	}
	jsonName, err := DatedJSONName(out.InsightsJSONName, now)
	if err != nil {
		return nil, err
	}

	for i, q := range f.DataAnalysis.InsightQuestions {
		if _, err := eda.ParseAnalysisID(q.ID); err != nil {
			return nil, apperrors.ConfigInvalid(fmt.Sprintf(`insight_questions[%d]: there cannot be fields other than "distribution", "outliers", "correlation" and "category_dominance", got %q`, i, q.ID))
		}
		if q.Enable == nil {
			return nil, apperrors.ConfigInvalid(fmt.Sprintf(`there must be an "enable" field in %s`, q.ID))
		}
		if err := checkRequired(q); err != nil {
			return nil, err
		}
	}

	return &RunConfig{
		InputPath:             d.InputPath,
		Sample:                d.Sample,
		Seed:                  d.Seed,
		Encoding:              d.Encoding,
		Sheet:                 d.Sheet,
		ParseDates:            d.ParseDates,
		LenientNumbers:        d.LenientNumbers,
		NullThreshold:         nt,
		ReportDir:             out.ReportFolderName,
		InsightsJSONName:      jsonName,
		PlotFormat:            format,
		RepresentativeColumns: f.DataAnalysis.RepresentativeColumns,
		Settings: eda.Settings{
			Toggles: eda.Toggles{
				SavePlots:    out.SavePlots,
				SaveInsights: out.SaveInsights,
				AutoInsights: f.DataAnalysis.AutoInsights,
			},
			Style: eda.PlotStyle{
				HistogramBins: plots.HistogramBins,
				ColorPalette:  plots.ColorPalette,
				Template:      template,
			},
		},
		questions: f.DataAnalysis.InsightQuestions,
	}, nil
}

// DatedJSONName turns report.json into report_YYYY-MM-DD.json
func DatedJSONName(name string, now time.Time) (string, error) {
	if strings.ToLower(filepath.Ext(name)) != ".json" {
		return "", apperrors.ConfigInvalid(fmt.Sprintf("the file %s should be a JSON file", filepath.Base(name)))
	}
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s.json", stem, now.Format("2006-01-02")), nil
}

// Bind checks column references against the dataset schema and resolves the
// analysis entries, defaulting empty column lists by analysis kind.
func (rc *RunConfig) Bind(table *dataset.Table, diag ports.Diagnostics) error {
	for _, col := range rc.RepresentativeColumns {
		if !table.HasColumn(col) {
			return columnError(col, table)
		}
	}

	class := table.Classification()
	entries := make([]eda.Entry, 0, len(rc.questions))
	for _, q := range rc.questions {
		id, _ := eda.ParseAnalysisID(q.ID)
		entry := eda.Entry{ID: id, Enable: *q.Enable, Columns: append([]string(nil), q.Columns...)}

		if len(entry.Columns) == 0 {
			switch id {
			case eda.Distribution:
				diag.Warn(`there is no "columns" field in %s, the analysis will use all the columns`, id)
				entry.Columns = table.ColumnNames()
			case eda.Outliers:
				diag.Warn(`there is no "columns" field in %s, the analysis will use all the numeric columns`, id)
				entry.Columns = append([]string(nil), class.Numeric...)
			case eda.Correlation:
				need := int(math.Max(2, float64(q.MinNumericCol)))
				if len(class.Numeric) >= need {
					diag.Warn(`there is no "columns" field in %s, the %d numeric columns will be used`, id, len(class.Numeric))
					entry.Columns = append([]string(nil), class.Numeric...)
				} else {
					diag.Warn("there are fewer than %d numeric columns to correlate, the correlation analysis is disabled", need)
					entry.Enable = false
				}
			case eda.CategoryDominance:
				diag.Warn(`there is no "columns" field in %s, the analysis will use all the categorical columns`, id)
				entry.Columns = append([]string(nil), class.Categorical...)
			}
		} else {
			for _, col := range entry.Columns {
				if !table.HasColumn(col) {
					return columnError(col, table)
				}
			}
			if id == eda.Correlation && entry.Enable {
				if err := checkCorrelationColumns(entry.Columns, q.MinNumericCol, class); err != nil {
					return err
				}
			}
		}

		switch id {
		case eda.Outliers:
			entry.Outliers = &eda.OutlierParams{Method: q.Method}
		case eda.CategoryDominance:
			entry.Dominance = &eda.DominanceParams{TopN: q.TopN, RareThreshold: q.RareThreshold}
		}
		entries = append(entries, entry)
	}
	rc.Settings.Entries = entries
	return nil
}

func checkInput(path string) error {
	if path == "" {
		return apperrors.ConfigInvalid("data.input_path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return apperrors.ConfigInvalid(fmt.Sprintf("the file %s does not exist", filepath.Base(path)))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return nil
	}
	return apperrors.ConfigInvalid("only CSV and XLSX files are supported")
}

func checkRequired(q Question) error {
	missing := func(field string) error {
		return apperrors.ConfigInvalid(fmt.Sprintf(`there must be a %q field for %s`, field, q.ID))
	}
	switch eda.AnalysisID(q.ID) {
	case eda.Outliers:
		if q.Method == "" {
			return missing("method")
		}
	case eda.Correlation:
		if q.MinNumericCol == 0 {
			return missing("min_numeric_col")
		}
	case eda.CategoryDominance:
		if q.TopN == 0 {
			return missing("top_n")
		}
		if q.TopN < 1 {
			return apperrors.Newf(apperrors.CodeConfigInvalid, "top_n must be at least 1, got %d", q.TopN)
		}
		if q.RareThreshold == 0 {
			return missing("rare_threshold")
		}
		if q.RareThreshold < 0 || q.RareThreshold >= 1 {
			return apperrors.Newf(apperrors.CodeConfigInvalid, "rare_threshold must be in (0, 1), got %v", q.RareThreshold)
		}
	}
	return nil
}

// checkCorrelationColumns requires max(2, minNumeric) listed columns, all numeric
func checkCorrelationColumns(cols []string, minNumeric int, class dataset.Classification) error {
	need := int(math.Max(2, float64(minNumeric)))
	if len(cols) < need {
		return apperrors.Newf(apperrors.CodeValidationError, "correlation needs at least %d numeric columns, got %v", need, cols)
	}
	for _, col := range cols {
		if !class.IsNumeric(col) {
			return apperrors.Newf(apperrors.CodeValidationError, "the column %s is not numeric and cannot be correlated", col)
		}
	}
	return nil
}

func columnError(col string, table *dataset.Table) error {
	return apperrors.ValidationError(fmt.Sprintf("the column %s is not in the schema. Existing columns: %v", col, table.ColumnNames()))
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
