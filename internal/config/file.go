// Package config loads, validates and resolves report configuration files.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "goeda/internal/errors"

	"github.com/spf13/viper"
)

// DefaultDir is where config files are discovered when no path is given
const DefaultDir = "config"

var discoveryExts = []string{".yml", ".yaml", ".toml"}

// File mirrors the on-disk configuration document
type File struct {
	Data           DataSection         `mapstructure:"data" yaml:"data"`
	EDA            EDASection          `mapstructure:"eda" yaml:"eda"`
	AnalysisConfig AnalysisSection     `mapstructure:"analysis_config" yaml:"analysis_config"`
	DataAnalysis   DataAnalysisSection `mapstructure:"data_analysis" yaml:"data_analysis"`
}

// DataSection locates and samples the input dataset
type DataSection struct {
	InputPath string  `mapstructure:"input_path" yaml:"input_path"`
	Sample    float64 `mapstructure:"sample" yaml:"sample"`
	Encoding  string  `mapstructure:"encoding" yaml:"encoding"`
	Seed      int64   `mapstructure:"seed" yaml:"seed"`

	// Sheet picks the xlsx sheet; empty reads the first one
	Sheet          string `mapstructure:"sheet" yaml:"sheet,omitempty"`
	ParseDates     bool   `mapstructure:"parse_dates" yaml:"parse_dates"`
	LenientNumbers bool   `mapstructure:"lenient_numbers" yaml:"lenient_numbers"`
}

// EDASection holds the console overview thresholds
type EDASection struct {
	Thresholds ThresholdsSection `mapstructure:"thresholds" yaml:"thresholds"`
}

// ThresholdsSection holds data quality thresholds
type ThresholdsSection struct {
	NullThreshold float64 `mapstructure:"null_threshold" yaml:"null_threshold"`
}

// AnalysisSection holds plot styling and output settings
type AnalysisSection struct {
	Plots  PlotsSection  `mapstructure:"plots" yaml:"plots"`
	Output OutputSection `mapstructure:"output" yaml:"output"`
}

// PlotsSection is the chart styling handed to the plot sink
type PlotsSection struct {
	HistogramBins  int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	ColorPalette   string `mapstructure:"color_palette" yaml:"color_palette"`
	PlotlyTemplate string `mapstructure:"plotly_template" yaml:"plotly_template"`
	// Format selects the sink: png files or a single xlsx workbook
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputSection controls what is persisted and where
type OutputSection struct {
	ReportFolderName string `mapstructure:"report_folder_name" yaml:"report_folder_name"`
	SavePlots        bool   `mapstructure:"save_plots" yaml:"save_plots"`
	InsightsJSONName string `mapstructure:"insights_json_name" yaml:"insights_json_name"`
	SaveInsights     bool   `mapstructure:"save_insights" yaml:"save_insights"`
}

// DataAnalysisSection lists the analyses to run
type DataAnalysisSection struct {
	RepresentativeColumns []string   `mapstructure:"representative_columns" yaml:"representative_columns"`
	AutoInsights          bool       `mapstructure:"auto_insights" yaml:"auto_insights"`
	InsightQuestions      []Question `mapstructure:"insight_questions" yaml:"insight_questions"`
}

// Question is one raw analysis entry. Which parameters are required depends on ID.
type Question struct {
	ID            string   `mapstructure:"id" yaml:"id"`
	Enable        *bool    `mapstructure:"enable" yaml:"enable"`
	Columns       []string `mapstructure:"columns" yaml:"columns"`
	Method        string   `mapstructure:"method" yaml:"method,omitempty"`
	MinNumericCol int      `mapstructure:"min_numeric_col" yaml:"min_numeric_col,omitempty"`
	TopN          int      `mapstructure:"top_n" yaml:"top_n,omitempty"`
	RareThreshold float64  `mapstructure:"rare_threshold" yaml:"rare_threshold,omitempty"`
}

// Discover returns path when set, otherwise the first config.{yml,yaml,toml} in dir
func Discover(path, dir string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", apperrors.ConfigInvalid("config file not found: " + path)
		}
		return path, nil
	}
	for _, ext := range discoveryExts {
		candidate := filepath.Join(dir, "config"+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", apperrors.ConfigInvalid("no config file found in " + dir + ` with ".yml", ".yaml" or ".toml"`)
}

// Load decodes a yaml or toml config file. Values can be overridden through
// GOEDA_ prefixed environment variables, e.g. GOEDA_DATA_SAMPLE=0.5.
func Load(path string) (*File, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeConfigInvalid, err), "the file %s is corrupt", filepath.Base(path))
	}
	return unmarshal(v, filepath.Base(path))
}

// Parse decodes a config document of configType ("yaml" or "toml") from r
func Parse(r io.Reader, configType string) (*File, error) {
	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(r); err != nil {
		return nil, apperrors.Wrap(apperrors.WithCode(apperrors.CodeConfigInvalid, err), "the config document is corrupt")
	}
	return unmarshal(v, "document")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GOEDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.seed", 42)
	v.SetDefault("analysis_config.plots.format", "png")
	return v
}

func unmarshal(v *viper.Viper, source string) (*File, error) {
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeConfigInvalid, err), "unmarshal config %s", source)
	}
	return &f, nil
}
