package generic

// Table is a raw tabular export: a header row plus string cells. Sources
// (CSV, XLSX, SQLite) all reduce to this shape before column resolution.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the value at row/col, or "" when the row is short.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// IsEmpty reports whether the table has no header.
func (t Table) IsEmpty() bool {
	return len(t.Columns) == 0
}
