package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tank-tools/internal/types"
)

// MarkdownReporter generates markdown reports
type MarkdownReporter struct {
	input string
	loc   *time.Location
	now   func() time.Time
}

// NewMarkdownReporter creates a new markdown reporter for the phout file input
func NewMarkdownReporter(input string, loc *time.Location) *MarkdownReporter {
	if loc == nil {
		loc = time.Local
	}
	return &MarkdownReporter{
		input: input,
		loc:   loc,
		now:   time.Now,
	}
}

// Generate generates the full markdown report
func (m *MarkdownReporter) Generate(stats *types.Stats) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Load Test Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", m.now().In(m.loc).Format("2006-01-02 15:04:05")))

	m.writeSummary(&sb, stats)
	m.writeQuantiles(&sb, stats)
	m.writeResponses(&sb, "HTTP Responses", "HTTP code", stats.ProtoCodes)
	m.writeResponses(&sb, "Network Responses", "Net code", stats.NetCodes)
	m.writeLatencyByCode(&sb, stats)
	m.writeThroughput(&sb, stats)

	return sb.String()
}

// writeSummary writes the overall summary section
func (m *MarkdownReporter) writeSummary(sb *strings.Builder, stats *types.Stats) {
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Input | %s |\n", m.input))
	sb.WriteString(fmt.Sprintf("| Total Requests | %d |\n", stats.TotalRequests))
	sb.WriteString(fmt.Sprintf("| From | %s |\n", FormatTimestamp(stats.FromTime, m.loc)))
	sb.WriteString(fmt.Sprintf("| To | %s |\n", FormatTimestamp(stats.ToTime, m.loc)))
	sb.WriteString(fmt.Sprintf("| Total RPS | %.2f |\n", stats.RequestsPerSecond))
	sb.WriteString(fmt.Sprintf("| Latency Median (mks) | %d |\n", int64(stats.LatencyMedian)))
	sb.WriteString(fmt.Sprintf("| Avg. Request Size (bytes) | %d |\n", int64(stats.AvgRequestSize)))
	sb.WriteString(fmt.Sprintf("| Avg. Response Size (bytes) | %d |\n\n", int64(stats.AvgResponseSize)))
}

// writeQuantiles writes the percentile table of the configured field
func (m *MarkdownReporter) writeQuantiles(sb *strings.Builder, stats *types.Stats) {
	sb.WriteString(fmt.Sprintf("## Percentiles of %s\n\n", stats.Field))
	sb.WriteString(fmt.Sprintf("| Quantile (%%) | %s (mks) |\n", stats.Field))
	sb.WriteString("|--------------|-----------|\n")

	for _, q := range stats.Quantiles {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", formatQuantile(q.Quantile), int64(q.Value)))
	}
	sb.WriteString("\n")
}

// writeResponses writes a response code distribution
func (m *MarkdownReporter) writeResponses(sb *strings.Builder, title, column string, codes []types.ValueCount) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))

	if len(codes) == 0 {
		sb.WriteString("No responses recorded.\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("| %s | Count | Percent (%%) |\n", column))
	sb.WriteString("|------|-------|-------------|\n")

	for _, code := range codes {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", code.Value, code.Count, formatPercent(code.Percent)))
	}
	sb.WriteString("\n")
}

// writeLatencyByCode writes the median latency per HTTP code
func (m *MarkdownReporter) writeLatencyByCode(sb *strings.Builder, stats *types.Stats) {
	sb.WriteString("## Latency Median by HTTP Code\n\n")
	sb.WriteString("| HTTP code | Median (mks) |\n")
	sb.WriteString("|-----------|--------------|\n")

	for _, code := range stats.LatencyByCode {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", code.Code, int64(code.Median)))
	}
	sb.WriteString("\n")
}

// writeThroughput writes the RPS of each half of the run
func (m *MarkdownReporter) writeThroughput(sb *strings.Builder, stats *types.Stats) {
	sb.WriteString("## Throughput\n\n")
	sb.WriteString("| Requests | RPS |\n")
	sb.WriteString("|----------|-----|\n")

	for _, chunk := range stats.Chunks {
		sb.WriteString(fmt.Sprintf("| %d-%d | %.2f |\n", chunk.Start+1, chunk.Start+chunk.Size, chunk.RPS))
	}
	sb.WriteString("\n")
}

// SaveToFile saves the report to a file
func (m *MarkdownReporter) SaveToFile(content string, filename string) error {
	return os.WriteFile(filename, []byte(content), 0644)
}
