package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// columnSeparator sits between two table columns
const columnSeparator = "  "

// writeTable writes a header row and data rows with every column right
// aligned to its widest cell
func writeTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); i < len(widths) && cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	writeRow(w, headers, widths)
	for _, row := range rows {
		writeRow(w, row, widths)
	}
}

func writeRow(w io.Writer, cells []string, widths []int) {
	padded := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = runewidth.FillLeft(cell, widths[i])
	}
	fmt.Fprintln(w, strings.Join(padded, columnSeparator))
}

// FormatTimestamp renders epoch seconds as "2006-01-02 15:04:05.000" in loc.
// The value is rounded to microseconds first and then cut to milliseconds
func FormatTimestamp(ts float64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	sec := math.Floor(ts)
	micro := int64(math.RoundToEven((ts - sec) * 1e6))
	if micro >= 1e6 {
		sec++
		micro -= 1e6
	}

	t := time.Unix(int64(sec), micro*int64(time.Microsecond)).In(loc)
	return fmt.Sprintf("%s.%03d", t.Format("2006-01-02 15:04:05"), micro/1000)
}

// formatPercent renders a 0..100 share with one decimal place
func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f", p)
}

// formatQuantile renders a fraction as a percentage with one decimal place
func formatQuantile(q float64) string {
	return fmt.Sprintf("%.1f", q*100)
}
