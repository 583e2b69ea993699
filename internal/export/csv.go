// Package export writes the normalized monthly overlay for external charting.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"MarketLens/internal/model"
)

// WriteOverlayCSV writes one row per month: the month-end date followed by
// each instrument's normalized value. Missing cells are left empty.
// Instruments that failed to load are omitted.
func WriteOverlayCSV(w io.Writer, r *model.Report) error {
	cols := []model.SeriesResult{}
	for _, s := range append([]model.SeriesResult{r.Index}, r.Commodities...) {
		if s.OK() {
			cols = append(cols, s)
		}
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(cols)+1)
	header = append(header, "month")
	for _, c := range cols {
		header = append(header, c.Instrument.Name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, m := range r.Months {
		row := make([]string, 0, len(cols)+1)
		row = append(row, m.Format("2006-01-02"))
		for _, c := range cols {
			cell := ""
			if i < len(c.Normalized) && c.Normalized[i].Valid {
				cell = strconv.FormatFloat(c.Normalized[i].Float64, 'f', 6, 64)
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOverlayFile writes the overlay to path, replacing any existing file.
func WriteOverlayFile(path string, r *model.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteOverlayCSV(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
