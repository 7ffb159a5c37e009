package market

import (
	"fmt"
	"sort"
)

// Frame is a small ordered table: named columns and rows of scalar cells.
// It is the shape every tabular query in the engine reduces to. A nil cell is
// the explicit missing-value marker.
type Frame struct {
	cols   []string
	colIdx map[string]int
	rows   [][]any
}

// NewFrame creates a frame with a fixed initial column set.
func NewFrame(cols ...string) *Frame {
	f := &Frame{colIdx: make(map[string]int, len(cols))}
	for _, c := range cols {
		f.addColumn(c)
	}
	return f
}

func (f *Frame) addColumn(name string) {
	if _, ok := f.colIdx[name]; ok {
		return
	}
	f.colIdx[name] = len(f.cols)
	f.cols = append(f.cols, name)
	for i := range f.rows {
		f.rows[i] = append(f.rows[i], nil)
	}
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Append adds one row. The cell count must match the column count.
func (f *Frame) Append(cells ...any) error {
	if len(cells) != len(f.cols) {
		return fmt.Errorf("frame: row has %d cells, frame has %d columns", len(cells), len(f.cols))
	}
	f.rows = append(f.rows, append([]any(nil), cells...))
	return nil
}

// AppendMap adds one row from a column→value map. Unknown keys become new
// columns (sorted, so the layout is deterministic); columns absent from the
// map get the missing marker.
func (f *Frame) AppendMap(m map[string]any) {
	var fresh []string
	for k := range m {
		if _, ok := f.colIdx[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	sort.Strings(fresh)
	for _, k := range fresh {
		f.addColumn(k)
	}

	row := make([]any, len(f.cols))
	for k, v := range m {
		row[f.colIdx[k]] = v
	}
	f.rows = append(f.rows, row)
}

// Cell returns the value at (row, column); ok is false for an unknown column.
// A nil value with ok=true is a present-but-missing cell.
func (f *Frame) Cell(row int, col string) (any, bool) {
	i, ok := f.colIdx[col]
	if !ok || row < 0 || row >= len(f.rows) {
		return nil, false
	}
	return f.rows[row][i], true
}

// Row returns one row as a column→value map, including missing markers.
func (f *Frame) Row(i int) map[string]any {
	m := make(map[string]any, len(f.cols))
	for j, c := range f.cols {
		m[c] = f.rows[i][j]
	}
	return m
}

// Column returns all cells of one column, in row order.
func (f *Frame) Column(name string) ([]any, bool) {
	i, ok := f.colIdx[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(f.rows))
	for r := range f.rows {
		out[r] = f.rows[r][i]
	}
	return out, true
}

// FrameFromMaps builds a frame from heterogeneous records. Columns appear in
// first-seen order (new keys within one record are sorted); cells absent from
// a record hold the missing marker.
func FrameFromMaps(rows []map[string]any) *Frame {
	f := NewFrame()
	for _, r := range rows {
		f.AppendMap(r)
	}
	return f
}
