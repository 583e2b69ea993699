package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Table is a set of aligned columns over a shared time index.
// After monthly resampling the index holds month-end dates.
type Table struct {
	Index   []time.Time
	Names   []string
	Columns [][]null.Float // Columns[i] has len(Index) values
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]null.Float, bool) {
	if t == nil {
		return nil, false
	}
	for i, n := range t.Names {
		if n == name {
			return t.Columns[i], true
		}
	}
	return nil, false
}
