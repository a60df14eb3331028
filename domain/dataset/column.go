package dataset

import (
	"fmt"
	"math"
)

// ColumnType is the declared schema type of a column
type ColumnType string

const (
	TypeInt64    ColumnType = "int64"
	TypeFloat64  ColumnType = "float64"
	TypeString   ColumnType = "string"
	TypeBool     ColumnType = "bool"
	TypeDatetime ColumnType = "datetime"
)

// IsNumeric reports whether values of this type are stored as numbers
func (t ColumnType) IsNumeric() bool {
	return t == TypeInt64 || t == TypeFloat64
}

// Column is an immutable, typed vector of values with a validity mask.
// Numeric columns keep their values in floats, string and datetime columns in strs.
type Column struct {
	name   string
	typ    ColumnType
	floats []float64
	strs   []string
	bools  []bool
	valid  []bool // nil means every row is valid
	length int
}

// NewFloatColumn creates a float64 column. NaN values are treated as nulls.
func NewFloatColumn(name string, values []float64) *Column {
	c := &Column{name: name, typ: TypeFloat64, floats: append([]float64(nil), values...), length: len(values)}
	for i, v := range values {
		if math.IsNaN(v) {
			c.setNull(i)
		}
	}
	return c
}

// NewIntColumn creates an int64 column
func NewIntColumn(name string, values []int64) *Column {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}
	return &Column{name: name, typ: TypeInt64, floats: floats, length: len(values)}
}

// NewStringColumn creates a string column
func NewStringColumn(name string, values []string) *Column {
	return &Column{name: name, typ: TypeString, strs: append([]string(nil), values...), length: len(values)}
}

// NewDatetimeColumn creates a datetime column holding the raw textual timestamps
func NewDatetimeColumn(name string, values []string) *Column {
	return &Column{name: name, typ: TypeDatetime, strs: append([]string(nil), values...), length: len(values)}
}

// NewBoolColumn creates a bool column
func NewBoolColumn(name string, values []bool) *Column {
	return &Column{name: name, typ: TypeBool, bools: append([]bool(nil), values...), length: len(values)}
}

// WithNulls returns a copy of the column with the given row positions marked null
func (c *Column) WithNulls(rows ...int) *Column {
	out := c.clone()
	for _, r := range rows {
		if r >= 0 && r < out.length {
			out.setNull(r)
		}
	}
	return out
}

func (c *Column) setNull(i int) {
	if c.valid == nil {
		c.valid = make([]bool, c.length)
		for j := range c.valid {
			c.valid[j] = true
		}
	}
	c.valid[i] = false
}

func (c *Column) clone() *Column {
	out := &Column{name: c.name, typ: c.typ, length: c.length}
	out.floats = append([]float64(nil), c.floats...)
	out.strs = append([]string(nil), c.strs...)
	out.bools = append([]bool(nil), c.bools...)
	if c.valid != nil {
		out.valid = append([]bool(nil), c.valid...)
	}
	return out
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Type returns the declared column type
func (c *Column) Type() ColumnType { return c.typ }

// Len returns the number of rows, nulls included
func (c *Column) Len() int { return c.length }

// IsNull reports whether row i holds no value
func (c *Column) IsNull(i int) bool {
	return c.valid != nil && !c.valid[i]
}

// NullCount returns the number of null rows
func (c *Column) NullCount() int {
	if c.valid == nil {
		return 0
	}
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Float returns the numeric value at row i
func (c *Column) Float(i int) (float64, bool) {
	if !c.typ.IsNumeric() || c.IsNull(i) {
		return 0, false
	}
	return c.floats[i], true
}

// Text returns the textual value at row i for string and datetime columns
func (c *Column) Text(i int) (string, bool) {
	if c.strs == nil || c.IsNull(i) {
		return "", false
	}
	return c.strs[i], true
}

// Value returns the row value as a JSON-friendly Go value, nil for nulls
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.typ {
	case TypeInt64:
		return int64(c.floats[i])
	case TypeFloat64:
		return c.floats[i]
	case TypeBool:
		return c.bools[i]
	default:
		return c.strs[i]
	}
}

// Format renders the row value for console output
func (c *Column) Format(i int) string {
	v := c.Value(i)
	if v == nil {
		return "null"
	}
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%g", f)
	}
	return fmt.Sprint(v)
}

// Floats returns the non-null numeric values in row order
func (c *Column) Floats() []float64 {
	if !c.typ.IsNumeric() {
		return nil
	}
	out := make([]float64, 0, c.length)
	for i := 0; i < c.length; i++ {
		if !c.IsNull(i) {
			out = append(out, c.floats[i])
		}
	}
	return out
}

// Texts returns the non-null textual values in row order
func (c *Column) Texts() []string {
	out := make([]string, 0, c.length)
	for i := 0; i < c.length; i++ {
		if s, ok := c.Text(i); ok {
			out = append(out, s)
		}
	}
	return out
}

// take builds a new column from the given row positions
func (c *Column) take(rows []int) *Column {
	out := &Column{name: c.name, typ: c.typ, length: len(rows)}
	if c.floats != nil {
		out.floats = make([]float64, len(rows))
	}
	if c.strs != nil {
		out.strs = make([]string, len(rows))
	}
	if c.bools != nil {
		out.bools = make([]bool, len(rows))
	}
	for j, r := range rows {
		if c.floats != nil {
			out.floats[j] = c.floats[r]
		}
		if c.strs != nil {
			out.strs[j] = c.strs[r]
		}
		if c.bools != nil {
			out.bools[j] = c.bools[r]
		}
		if c.IsNull(r) {
			out.setNull(j)
		}
	}
	return out
}
