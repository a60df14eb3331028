package plot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"goeda/internal"
	apperrors "goeda/internal/errors"
	"goeda/ports"

	"github.com/xuri/excelize/v2"
)

const (
	indexSheet   = "charts"
	maxSheetName = 31
)

var sheetUnsafe = regexp.MustCompile(`[\[\]:*?/\\]`)

// WorkbookSink collects every chart into one xlsx file: a sheet per chart
// holding its data and a native chart built on it. Save writes the file.
type WorkbookSink struct {
	mu     sync.Mutex
	path   string
	file   *excelize.File
	sheets map[string]bool
	row    int
	logger *internal.Logger
}

var _ ports.PlotSink = (*WorkbookSink)(nil)

// NewWorkbookSink starts an empty workbook that will be written to path
func NewWorkbookSink(path string, logger *internal.Logger) (*WorkbookSink, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", indexSheet); err != nil {
		return nil, apperrors.Wrap(err, "prepare workbook")
	}
	if err := f.SetSheetRow(indexSheet, "A1", &[]interface{}{"chart", "kind", "title"}); err != nil {
		return nil, apperrors.Wrap(err, "prepare workbook")
	}
	if logger == nil {
		logger = internal.NewLoggerWithZap(internal.LogLevelError, nil)
	}
	return &WorkbookSink{
		path:   path,
		file:   f,
		sheets: map[string]bool{indexSheet: true},
		row:    1,
		logger: logger,
	}, nil
}

// SavePlot adds the chart and returns "<path>#<sheet>"
func (s *WorkbookSink) SavePlot(ctx context.Context, spec ports.ChartSpec, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet := s.sheetName(name)
	if _, err := s.file.NewSheet(sheet); err != nil {
		return "", apperrors.RenderError(name, err)
	}

	var err error
	switch spec.Kind {
	case ports.ChartHistogram:
		bins := Histogram(spec.X, spec.Bins)
		err = s.columnChart(sheet, spec, bins.Labels(), bins.Counts)
	case ports.ChartBar:
		err = s.columnChart(sheet, spec, spec.Categories, spec.Counts)
	case ports.ChartScatter:
		err = s.scatterChart(sheet, spec)
	case ports.ChartHeatmap:
		err = s.heatmap(sheet, spec)
	default:
		err = fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		_ = s.file.DeleteSheet(sheet)
		delete(s.sheets, sheet)
		return "", apperrors.RenderError(name, err)
	}

	s.row++
	cell, _ := excelize.CoordinatesToCellName(1, s.row)
	if err := s.file.SetSheetRow(indexSheet, cell, &[]interface{}{sheet, string(spec.Kind), spec.Title}); err != nil {
		return "", apperrors.RenderError(name, err)
	}
	s.logger.Debug("[WorkbookSink] added sheet %s (%s)", sheet, spec.Kind)
	return s.path + "#" + sheet, nil
}

// Save writes the workbook to disk
func (s *WorkbookSink) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.SaveAs(s.path); err != nil {
		return apperrors.Wrapf(err, "save workbook %s", s.path)
	}
	s.logger.Info("[WorkbookSink] saved %d charts to %s", s.row-1, s.path)
	return nil
}

// Close releases the workbook
func (s *WorkbookSink) Close() error {
	return s.file.Close()
}

// Sheets lists chart sheet names in creation order
func (s *WorkbookSink) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, name := range s.file.GetSheetList() {
		if name != indexSheet {
			out = append(out, name)
		}
	}
	return out
}

// sheetName fits name into the 31 character sheet limit, unique within the book
func (s *WorkbookSink) sheetName(name string) string {
	base := sheetUnsafe.ReplaceAllString(name, "_")
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	candidate := base
	for i := 2; s.sheets[strings.ToLower(candidate)] || s.sheets[candidate]; i++ {
		suffix := fmt.Sprintf("~%d", i)
		cut := base
		if len(cut)+len(suffix) > maxSheetName {
			cut = cut[:maxSheetName-len(suffix)]
		}
		candidate = cut + suffix
	}
	s.sheets[candidate] = true
	s.sheets[strings.ToLower(candidate)] = true
	return candidate
}

func (s *WorkbookSink) columnChart(sheet string, spec ports.ChartSpec, labels []string, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("chart %q has no data", spec.Title)
	}
	if err := s.file.SetSheetRow(sheet, "A1", &[]interface{}{spec.XLabel, spec.YLabel}); err != nil {
		return err
	}
	for i := range values {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := s.file.SetSheetRow(sheet, cell, &[]interface{}{labels[i], values[i]}); err != nil {
			return err
		}
	}
	last := len(values) + 1
	c := newColours(spec.Palette, spec.Template)
	return s.file.AddChart(sheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
			Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hexOf(c.at(0))}},
		}},
		Title:  []excelize.RichTextRun{{Text: spec.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func (s *WorkbookSink) scatterChart(sheet string, spec ports.ChartSpec) error {
	if len(spec.X) == 0 {
		return fmt.Errorf("scatter %q has no points", spec.Title)
	}
	if err := s.file.SetSheetRow(sheet, "A1", &[]interface{}{spec.XLabel, "y"}); err != nil {
		return err
	}
	for i := range spec.X {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := s.file.SetSheetRow(sheet, cell, &[]interface{}{spec.X[i], spec.Y[i]}); err != nil {
			return err
		}
	}
	last := len(spec.X) + 1
	return s.file.AddChart(sheet, "D2", &excelize.Chart{
		Type: excelize.Scatter,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$A$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 6},
			Line:       excelize.ChartLine{Type: excelize.ChartLineNone},
		}},
		Title:  []excelize.RichTextRun{{Text: spec.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

// heatmap writes the matrix and colours it with a three colour scale
func (s *WorkbookSink) heatmap(sheet string, spec ports.ChartSpec) error {
	n := len(spec.Labels)
	if n == 0 || len(spec.Matrix) != n {
		return fmt.Errorf("heatmap %q needs a %dx%d matrix", spec.Title, n, n)
	}
	header := make([]interface{}, n+1)
	header[0] = ""
	for i, l := range spec.Labels {
		header[i+1] = l
	}
	if err := s.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range spec.Matrix {
		values := make([]interface{}, n+1)
		values[0] = spec.Labels[i]
		for j, v := range row {
			values[j+1] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := s.file.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	c := newColours(spec.Palette, spec.Template)
	first, _ := excelize.CoordinatesToCellName(2, 2)
	last, _ := excelize.CoordinatesToCellName(n+1, n+1)
	return s.file.SetConditionalFormat(sheet, first+":"+last, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MidType:  "num",
		MaxType:  "num",
		MinValue: "-1",
		MidValue: "0",
		MaxValue: "1",
		MinColor: hexOf(c.scale(-1)),
		MidColor: hexOf(c.scale(0)),
		MaxColor: hexOf(c.scale(1)),
	}})
}
