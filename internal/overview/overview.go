// Package overview prints the basic descriptive summary of a dataset: shape,
// schema, the first rows, describe-style statistics and null density.
package overview

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"goeda/domain/dataset"
	"goeda/internal/profiling"
	"goeda/ports"
)

// HeadRows is how many rows the overview prints
const HeadRows = 10

// ColumnStats is the describe row of one column
type ColumnStats struct {
	Name    string             `json:"name"`
	Type    dataset.ColumnType `json:"type"`
	Count   int                `json:"count"`
	Nulls   int                `json:"nulls"`
	Density float64            `json:"null_density"` // nulls / rows
	Numeric *profiling.Summary `json:"numeric,omitempty"`
}

// Summary is everything the overview prints
type Summary struct {
	Dataset    string        `json:"dataset"`
	Rows       int           `json:"rows"`
	Columns    int           `json:"columns"`
	Stats      []ColumnStats `json:"stats"`
	TotalNulls int           `json:"total_nulls"`
	// HighNull lists columns whose null density exceeds the threshold
	HighNull []string `json:"high_null"`
}

// Describe computes the overview of table, restricted to columns when given
func Describe(table *dataset.Table, columns []string, nullThreshold float64) (*Summary, error) {
	s, _, err := describe(table, columns, nullThreshold)
	return s, err
}

// describe also returns the table the summary was computed over
func describe(table *dataset.Table, columns []string, nullThreshold float64) (*Summary, *dataset.Table, error) {
	if len(columns) > 0 {
		sel, err := table.Select(columns...)
		if err != nil {
			return nil, nil, err
		}
		table = sel
	}

	s := &Summary{Dataset: table.Name(), Rows: table.Rows(), Columns: table.Width()}
	for _, f := range table.Schema() {
		col, _ := table.Column(f.Name)
		st := ColumnStats{Name: f.Name, Type: f.Type, Nulls: col.NullCount()}
		st.Count = col.Len() - st.Nulls
		if s.Rows > 0 {
			st.Density = float64(st.Nulls) / float64(s.Rows)
		}
		if f.Type.IsNumeric() && st.Count > 0 {
			sum, err := profiling.Summarize(col.Floats())
			if err == nil {
				st.Numeric = &sum
			}
		}
		s.TotalNulls += st.Nulls
		if st.Density > nullThreshold {
			s.HighNull = append(s.HighNull, f.Name)
		}
		s.Stats = append(s.Stats, st)
	}
	sort.Strings(s.HighNull)
	return s, table, nil
}

// Print writes the overview of table to w and warns about high null density
func Print(w io.Writer, table *dataset.Table, columns []string, nullThreshold float64, diag ports.Diagnostics) (*Summary, error) {
	s, table, err := describe(table, columns, nullThreshold)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "Dataset: %s\n", s.Dataset)
	fmt.Fprintf(w, "Shape: (%d, %d)\n\n", s.Rows, s.Columns)

	fmt.Fprintln(w, "Schema:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, st := range s.Stats {
		fmt.Fprintf(tw, "  %s\t%s\n", st.Name, st.Type)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nHead (%d rows):\n", min(HeadRows, s.Rows))
	printHead(w, table.Head(HeadRows))

	fmt.Fprintln(w, "\nDescribe:")
	printDescribe(w, s.Stats)

	fmt.Fprintf(w, "\nTotal nulls: %d\n", s.TotalNulls)
	for _, name := range s.HighNull {
		for _, st := range s.Stats {
			if st.Name == name {
				diag.Warn("column %q has %.1f%% nulls, above the %.1f%% threshold", name, st.Density*100, nullThreshold*100)
			}
		}
	}
	return s, nil
}

func printHead(w io.Writer, head *dataset.Table) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(head.ColumnNames(), "\t"))
	for i := 0; i < head.Rows(); i++ {
		cells := make([]string, 0, head.Width())
		for _, name := range head.ColumnNames() {
			col, _ := head.Column(name)
			cells = append(cells, col.Format(i))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func printDescribe(w io.Writer, stats []ColumnStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "column\tcount\tnull\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, st := range stats {
		if st.Numeric == nil {
			fmt.Fprintf(tw, "%s\t%d\t%d\t-\t-\t-\t-\t-\t-\t-\t\n", st.Name, st.Count, st.Nulls)
			continue
		}
		n := st.Numeric
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t\n",
			st.Name, st.Count, st.Nulls, n.Mean, n.StdDev, n.Min, n.Q25, n.Median, n.Q75, n.Max)
	}
	tw.Flush()
}
