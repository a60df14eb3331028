// Package excel reads CSV and XLSX files into typed datasets.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goeda/domain/dataset"
	"goeda/internal"
	apperrors "goeda/internal/errors"
	"goeda/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	config   ReaderConfig
	fileType string // "xlsx" or "csv"
	coercer  *TypeCoercer
	logger   *internal.Logger
}

var _ ports.DatasetReader = (*DataReader)(nil)

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	if logger == nil {
		logger = internal.NewLoggerWithZap(internal.LogLevelError, nil)
	}
	return &DataReader{
		config:   config,
		fileType: fileType,
		coercer:  NewTypeCoercer(config),
		logger:   logger,
	}
}

// SupportedExtension reports whether path names a file this reader handles
func SupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Read loads the file and types every column
func (r *DataReader) Read(ctx context.Context) (*dataset.Table, error) {
	raw, err := r.ReadData(ctx)
	if err != nil {
		return nil, err
	}
	return r.ToTable(raw)
}

// ReadData reads the raw string grid from Excel or CSV files
func (r *DataReader) ReadData(ctx context.Context) (*RawData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.config.FilePath)

	if _, err := os.Stat(r.config.FilePath); os.IsNotExist(err) {
		return nil, apperrors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.config.FilePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

// readExcelData reads the configured sheet, or the first one
func (r *DataReader) readExcelData() (*RawData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, apperrors.DataSourceError(r.config.FilePath, err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.DataSourceError(r.config.FilePath, fmt.Errorf("read sheet %s: %w", sheet, err))
	}
	r.logger.Debug("[DataReader] sheet %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data, decoding it from the configured encoding
func (r *DataReader) readCSVData() (*RawData, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, apperrors.DataSourceError(r.config.FilePath, err)
	}
	defer file.Close()

	decoded, err := decodeReader(file, r.config.Encoding)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	reader := csv.NewReader(decoded)
	reader.Comma = r.config.Delimiter
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.DataSourceError(r.config.FilePath, err)
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows splits the header from the data rows and trims every cell
func (r *DataReader) processRows(rows [][]string) (*RawData, error) {
	if len(rows) < 1 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s file must have a header row", strings.ToUpper(r.fileType)))
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	data := &RawData{Headers: headers, Rows: make([][]string, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		data.Rows = append(data.Rows, cells)
	}

	r.logger.Debug("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(data.Rows))
	return data, nil
}

// ToTable types each column of the raw grid and assembles the dataset
func (r *DataReader) ToTable(raw *RawData) (*dataset.Table, error) {
	columns := make([]*dataset.Column, len(raw.Headers))
	for j, header := range raw.Headers {
		cells := make([]string, len(raw.Rows))
		for i := range raw.Rows {
			cells[i] = raw.Cell(i, j)
		}
		columns[j] = r.coercer.Column(header, cells)
	}

	table, err := dataset.NewTable(filepath.Base(r.config.FilePath), columns...)
	if err != nil {
		return nil, apperrors.Wrap(err, "build dataset")
	}
	r.logger.Info("[DataReader] loaded %s: %d rows x %d columns", table.Name(), table.Rows(), table.Width())
	return table, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
