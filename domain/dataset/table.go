package dataset

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"goeda/domain/core"
)

// Field describes one column of the schema
type Field struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Table is an immutable, columnar dataset. Nothing in a report run mutates it,
// so a single Table may be shared by concurrently running analyzers.
type Table struct {
	name    string
	columns []*Column
	index   map[string]int
	rows    int

	classOnce sync.Once
	class     Classification
}

// NewTable assembles columns into a table. Column names must be unique and all
// columns must have the same length.
func NewTable(name string, columns ...*Column) (*Table, error) {
	t := &Table{name: name, index: make(map[string]int, len(columns))}
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[col.Name()]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name())
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name(), col.Len(), t.rows)
		}
		t.index[col.Name()] = i
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// Name returns the dataset name (usually the source file name)
func (t *Table) Name() string { return t.name }

// Rows returns the total row count, nulls included
func (t *Table) Rows() int { return t.rows }

// Width returns the number of columns
func (t *Table) Width() int { return len(t.columns) }

// ColumnNames returns the column names in schema order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// Schema returns the declared schema in column order
func (t *Table) Schema() []Field {
	fields := make([]Field, len(t.columns))
	for i, c := range t.columns {
		fields[i] = Field{Name: c.Name(), Type: c.Type()}
	}
	return fields
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the schema contains name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns row i as a column name to value mapping, nulls as nil
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.columns))
	for _, c := range t.columns {
		row[c.Name()] = c.Value(i)
	}
	return row
}

// Select projects the table onto the named columns, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, core.NewColumnNotFoundError(n)
		}
		cols = append(cols, c)
	}
	return NewTable(t.name, cols...)
}

// Take returns a new table holding only the given row positions, in order
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.take(rows)
	}
	out, _ := NewTable(t.name, cols...)
	return out
}

// Head returns the first n rows
func (t *Table) Head(n int) *Table {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.Take(rows)
}

// Sample keeps a deterministic fraction of the rows, preserving row order.
// A fraction of 1 or more returns the table itself.
func (t *Table) Sample(fraction float64, seed int64) *Table {
	if fraction >= 1 || t.rows == 0 {
		return t
	}
	n := int(float64(t.rows) * fraction)
	if n < 1 {
		n = 1
	}
	rng := rand.New(rand.NewSource(seed))
	rows := rng.Perm(t.rows)[:n]
	sort.Ints(rows)
	return t.Take(rows)
}

// Classification returns the numeric/categorical partition of the schema.
// It is derived from the declared column types only and computed once.
func (t *Table) Classification() Classification {
	t.classOnce.Do(func() {
		t.class = classify(t.Schema())
	})
	return t.class
}
