package excel

// RawData is the undecoded grid of a CSV or XLSX source: trimmed header
// names and string cells, one slice per data row.
type RawData struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the cell at row/col, or "" for short rows
func (d *RawData) Cell(row, col int) string {
	if col < len(d.Rows[row]) {
		return d.Rows[row][col]
	}
	return ""
}
