package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tank-tools/internal/types"
)

// ConsoleReporter writes human readable tables
type ConsoleReporter struct {
	out io.Writer
	loc *time.Location
}

// NewConsoleReporter creates a console reporter writing to out. Timestamps
// are shown in loc, time.Local when nil
func NewConsoleReporter(out io.Writer, loc *time.Location) *ConsoleReporter {
	if loc == nil {
		loc = time.Local
	}
	return &ConsoleReporter{
		out: out,
		loc: loc,
	}
}

// PrintQuantiles prints the percentile table of field for total requests
// between the from and to timestamps
func (c *ConsoleReporter) PrintQuantiles(total int, from, to float64, field string, quantiles []types.Quantile) {
	fmt.Fprintf(c.out, "\nPercentiles for %d requests\n", total)
	fmt.Fprintf(c.out, "     from %s\n", FormatTimestamp(from, c.loc))
	fmt.Fprintf(c.out, "     to   %s:\n", FormatTimestamp(to, c.loc))

	rows := make([][]string, 0, len(quantiles))
	for _, q := range quantiles {
		rows = append(rows, []string{
			formatQuantile(q.Quantile),
			strconv.FormatInt(int64(q.Value), 10),
		})
	}
	writeTable(c.out, []string{"quantile (%)", field + " (mks)"}, rows)
}

// PrintResponses prints the response code table
func (c *ConsoleReporter) PrintResponses(codes []types.ValueCount) {
	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, []string{
			code.Value,
			strconv.Itoa(code.Count),
			formatPercent(code.Percent),
		})
	}
	writeTable(c.out, []string{"HTTP code", "count", "percent (%)"}, rows)
}

// PrintStats prints the complete summary of a run
func (c *ConsoleReporter) PrintStats(stats *types.Stats) {
	c.PrintQuantiles(stats.TotalRequests, stats.FromTime, stats.ToTime, stats.Field, stats.Quantiles)

	fmt.Fprint(c.out, "\n\n\n")
	c.PrintResponses(stats.ProtoCodes)

	fmt.Fprintf(c.out, "\n\nTotal Latency median: %d\n", int64(stats.LatencyMedian))

	fmt.Fprint(c.out, "\n\nLatency median for:\n")
	for _, code := range stats.LatencyByCode {
		fmt.Fprintf(c.out, "\t%s: %d\n", code.Code, int64(code.Median))
	}

	fmt.Fprintf(c.out, "\n\nAvg. Request / Response: %d / %d bytes\n",
		int64(stats.AvgRequestSize), int64(stats.AvgResponseSize))

	fmt.Fprintf(c.out, "\n\nTotal RPS: %.2f\n", stats.RequestsPerSecond)

	fmt.Fprint(c.out, "\n\nRPS at request:\n")
	for _, chunk := range stats.Chunks {
		fmt.Fprintf(c.out, "\t%d: %.2f\n", chunk.Request, chunk.RPS)
	}
}

// PrintReportSaved prints a message indicating the report was saved
func (c *ConsoleReporter) PrintReportSaved(filename string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Repeat("=", 80))
	fmt.Fprintf(c.out, "Report saved to: %s\n", filename)
	fmt.Fprintln(c.out, strings.Repeat("=", 80))
}
