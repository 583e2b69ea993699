package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"

	"MarketLens/internal/calculator"
	"MarketLens/internal/model"
)

const dateLayout = "2006-01-02"

// Title returns the chart title for a report.
func Title(r *model.Report) string {
	names := make([]string, len(r.Commodities))
	for i, c := range r.Commodities {
		names[i] = c.Instrument.Name
	}
	return fmt.Sprintf("%s and %s Long-term Trend (%s - %s, Normalized)",
		r.Index.Instrument.Name, strings.Join(names, ", "),
		r.Start.Format(dateLayout), r.End.Format(dateLayout))
}

// FormatReport renders the full plain-text report: series summaries,
// correlations and the normalized monthly overlay.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(Title(r) + "\n")
	b.WriteString(fmt.Sprintf("run %s | %s months\n\n", r.RunID, humanize.Comma(int64(len(r.Months)))))

	b.WriteString("Series:\n")
	writeSeries(&b, r.Index)
	for _, c := range r.Commodities {
		writeSeries(&b, c)
	}

	b.WriteString("\nCorrelation with " + r.Index.Instrument.Name + ":\n")
	for _, c := range r.Correlations {
		b.WriteString(fmt.Sprintf("  %-12s %6s", c.Commodity, c.Display()))
		if c.Err != nil {
			b.WriteString("  (" + c.Err.Error() + ")")
		} else {
			b.WriteString(fmt.Sprintf("  over %d months", c.Pairs))
		}
		b.WriteString("\n")
	}

	if len(r.Months) == 0 {
		b.WriteString("\nNo monthly data in range.\n")
		return b.String()
	}

	cols := append([]model.SeriesResult{r.Index}, r.Commodities...)
	b.WriteString("\nNormalized monthly overlay:\n")
	b.WriteString(fmt.Sprintf("  %-10s", "month"))
	for _, c := range cols {
		b.WriteString(fmt.Sprintf(" %12s", c.Instrument.Name))
	}
	b.WriteString("\n")
	for i, m := range r.Months {
		b.WriteString(fmt.Sprintf("  %-10s", m.Format("2006-01")))
		for _, c := range cols {
			b.WriteString(fmt.Sprintf(" %12s", cell(c.Normalized, i)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeSeries(b *strings.Builder, s model.SeriesResult) {
	b.WriteString(fmt.Sprintf("  %s (%s): ", s.Instrument.Name, s.Instrument.Ticker))
	if s.Err != nil {
		b.WriteString("unavailable: " + s.Err.Error() + "\n")
		return
	}
	b.WriteString(fmt.Sprintf("%s daily closes, %s missing",
		humanize.Comma(int64(s.Observations)), humanize.Comma(int64(s.Missing))))
	if low, high, n := calculator.Extremes(s.Monthly); n > 0 {
		b.WriteString(fmt.Sprintf(", monthly mean %s to %s",
			humanize.CommafWithDigits(low, 2), humanize.CommafWithDigits(high, 2)))
	}
	if s.NormalizeErr != nil {
		b.WriteString("; not normalized: " + s.NormalizeErr.Error())
	}
	b.WriteString("\n")
}

func cell(values []null.Float, i int) string {
	if i >= len(values) || !values[i].Valid {
		return "-"
	}
	return fmt.Sprintf("%.3f", values[i].Float64)
}

// FormatSummary formats the correlation results as a Telegram HTML message.
func FormatSummary(r *model.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b>\n\n", html.EscapeString(Title(r))))
	b.WriteString(fmt.Sprintf("Monthly rows: %d\n", len(r.Months)))
	if r.Index.Err != nil {
		b.WriteString(fmt.Sprintf("⚠️ %s unavailable: %s\n",
			html.EscapeString(r.Index.Instrument.Name), html.EscapeString(r.Index.Err.Error())))
	}
	b.WriteString("\n📈 <b>Correlation:</b>\n")
	for _, c := range r.Correlations {
		line := fmt.Sprintf("  %s vs %s: <b>%s</b>",
			html.EscapeString(c.Index), html.EscapeString(c.Commodity), c.Display())
		if c.Err != nil {
			line += " <i>(" + html.EscapeString(c.Err.Error()) + ")</i>"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
