package calculator

import (
	"sort"
	"time"

	"MarketLens/internal/model"

	"github.com/guregu/null/v6"
)

// Join aligns series onto the union of their timestamps. Each series becomes a
// column named after it; dates a series did not report are missing.
func Join(series ...model.TimeSeries) *model.Table {
	seen := make(map[time.Time]struct{})
	for _, s := range series {
		for _, p := range s.Points {
			seen[p.Time] = struct{}{}
		}
	}
	index := make([]time.Time, 0, len(seen))
	for t := range seen {
		index = append(index, t)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	row := make(map[time.Time]int, len(index))
	for i, t := range index {
		row[t] = i
	}

	tbl := &model.Table{
		Index:   index,
		Names:   make([]string, len(series)),
		Columns: make([][]null.Float, len(series)),
	}
	for c, s := range series {
		tbl.Names[c] = s.Name
		col := make([]null.Float, len(index))
		for _, p := range s.Points {
			col[row[p.Time]] = p.Value
		}
		tbl.Columns[c] = col
	}
	return tbl
}

// MonthEnd returns the last calendar day of t's month at UTC midnight.
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// ResampleMonthly buckets rows by calendar month and replaces each bucket with
// the mean of its non-missing values, per column. Every month between the first
// and last row is emitted, labeled by its month-end date; a bucket with no
// observations for a column is missing in that column.
func ResampleMonthly(t *model.Table) *model.Table {
	out := &model.Table{Names: append([]string(nil), t.Names...)}
	out.Columns = make([][]null.Float, len(t.Names))
	if t.Len() == 0 {
		for c := range out.Columns {
			out.Columns[c] = []null.Float{}
		}
		out.Index = []time.Time{}
		return out
	}

	first, last := MonthEnd(t.Index[0]), MonthEnd(t.Index[len(t.Index)-1])
	for m := first; !m.After(last); m = MonthEnd(m.AddDate(0, 0, 1)) {
		out.Index = append(out.Index, m)
	}
	bucket := make(map[time.Time]int, len(out.Index))
	for i, m := range out.Index {
		bucket[m] = i
	}

	for c, col := range t.Columns {
		groups := make([][]float64, len(out.Index))
		for r, v := range col {
			if !v.Valid {
				continue
			}
			b := bucket[MonthEnd(t.Index[r])]
			groups[b] = append(groups[b], v.Float64)
		}
		monthly := make([]null.Float, len(out.Index))
		for b, g := range groups {
			if len(g) > 0 {
				monthly[b] = null.FloatFrom(mean(g))
			}
		}
		out.Columns[c] = monthly
	}
	return out
}
