package excel

import (
	"math"
	"strconv"
	"strings"
	"time"

	"goeda/domain/dataset"
)

// dateFormats are the layouts recognised when date parsing is enabled
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// TypeCoercer types a column of raw cells. A column takes the narrowest
// type every non-empty cell parses as: int64, float64, bool, datetime
// (opt-in), falling back to string. Empty cells become nulls.
type TypeCoercer struct {
	parseDates bool
	lenient    bool
}

// NewTypeCoercer creates a coercer with the reader's typing options
func NewTypeCoercer(cfg ReaderConfig) *TypeCoercer {
	return &TypeCoercer{parseDates: cfg.ParseDates, lenient: cfg.LenientNumbers}
}

// Column builds a typed column from raw cells
func (c *TypeCoercer) Column(name string, cells []string) *dataset.Column {
	var nulls []int
	present := make([]string, 0, len(cells))
	for i, cell := range cells {
		if cell == "" {
			nulls = append(nulls, i)
			continue
		}
		present = append(present, cell)
	}

	switch c.InferType(present) {
	case dataset.TypeInt64:
		values := make([]int64, len(cells))
		for i, cell := range cells {
			if cell != "" {
				f, _ := c.parseNumber(cell)
				values[i] = int64(f)
			}
		}
		return dataset.NewIntColumn(name, values).WithNulls(nulls...)
	case dataset.TypeFloat64:
		values := make([]float64, len(cells))
		for i, cell := range cells {
			values[i] = math.NaN()
			if cell != "" {
				values[i], _ = c.parseNumber(cell)
			}
		}
		return dataset.NewFloatColumn(name, values)
	case dataset.TypeBool:
		values := make([]bool, len(cells))
		for i, cell := range cells {
			values[i], _ = parseBool(cell)
		}
		return dataset.NewBoolColumn(name, values).WithNulls(nulls...)
	case dataset.TypeDatetime:
		return dataset.NewDatetimeColumn(name, cells).WithNulls(nulls...)
	default:
		return dataset.NewStringColumn(name, cells).WithNulls(nulls...)
	}
}

// InferType picks the column type for the given non-empty cells. A column
// with no values at all is typed string.
func (c *TypeCoercer) InferType(cells []string) dataset.ColumnType {
	if len(cells) == 0 {
		return dataset.TypeString
	}
	if c.all(cells, c.isInt) {
		return dataset.TypeInt64
	}
	if c.all(cells, func(s string) bool { _, ok := c.parseNumber(s); return ok }) {
		return dataset.TypeFloat64
	}
	if c.all(cells, func(s string) bool { _, ok := parseBool(s); return ok }) {
		return dataset.TypeBool
	}
	if c.parseDates && c.all(cells, isDate) {
		return dataset.TypeDatetime
	}
	return dataset.TypeString
}

func (c *TypeCoercer) all(cells []string, ok func(string) bool) bool {
	for _, cell := range cells {
		if !ok(cell) {
			return false
		}
	}
	return true
}

func (c *TypeCoercer) isInt(s string) bool {
	if c.lenient {
		f, ok := c.parseNumber(s)
		return ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 && !strings.ContainsAny(s, ".eE")
	}
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// parseNumber parses a finite float. In lenient mode it first strips
// currency symbols and percent signs, drops thousands separators and turns
// (123) into -123.
func (c *TypeCoercer) parseNumber(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if c.lenient {
		clean = normalizeNumber(clean)
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func normalizeNumber(s string) string {
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative = true
	}
	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.TrimSpace(s)

	hasComma := strings.Contains(s, ",")
	hasPeriod := strings.Contains(s, ".")
	switch {
	case hasComma && hasPeriod && strings.LastIndex(s, ",") > strings.LastIndex(s, "."):
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	s = strings.ReplaceAll(s, " ", "")
	if negative {
		s = "-" + s
	}
	return s
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
