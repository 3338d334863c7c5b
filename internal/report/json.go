package report

import (
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"tank-tools/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonQuantile struct {
	Quantile float64 `json:"quantile"`
	Value    int64   `json:"value"`
}

type jsonCount struct {
	Code    string  `json:"code"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type jsonChunk struct {
	Request int     `json:"request"`
	Size    int     `json:"size"`
	RPS     float64 `json:"rps"`
}

// JSONReport is the machine readable form of types.Stats
type JSONReport struct {
	Requests      int              `json:"requests"`
	From          string           `json:"from"`
	To            string           `json:"to"`
	Field         string           `json:"field"`
	Quantiles     []jsonQuantile   `json:"quantiles"`
	ProtoCodes    []jsonCount      `json:"proto_codes"`
	NetCodes      []jsonCount      `json:"net_codes"`
	LatencyMedian int64            `json:"latency_median"`
	LatencyByCode map[string]int64 `json:"latency_median_by_code"`
	AvgSizeOut    float64          `json:"avg_size_out"`
	AvgSizeIn     float64          `json:"avg_size_in"`
	RPS           float64          `json:"rps"`
	Chunks        []jsonChunk      `json:"rps_chunks"`
}

// NewJSONReport converts stats, rendering timestamps in loc
func NewJSONReport(stats *types.Stats, loc *time.Location) *JSONReport {
	r := &JSONReport{
		Requests:      stats.TotalRequests,
		From:          FormatTimestamp(stats.FromTime, loc),
		To:            FormatTimestamp(stats.ToTime, loc),
		Field:         stats.Field,
		Quantiles:     make([]jsonQuantile, 0, len(stats.Quantiles)),
		ProtoCodes:    toJSONCounts(stats.ProtoCodes),
		NetCodes:      toJSONCounts(stats.NetCodes),
		LatencyMedian: int64(stats.LatencyMedian),
		LatencyByCode: make(map[string]int64, len(stats.LatencyByCode)),
		AvgSizeOut:    stats.AvgRequestSize,
		AvgSizeIn:     stats.AvgResponseSize,
		RPS:           stats.RequestsPerSecond,
	}

	for _, q := range stats.Quantiles {
		r.Quantiles = append(r.Quantiles, jsonQuantile{Quantile: q.Quantile, Value: int64(q.Value)})
	}
	for _, c := range stats.LatencyByCode {
		r.LatencyByCode[c.Code] = int64(c.Median)
	}
	for _, c := range stats.Chunks {
		r.Chunks = append(r.Chunks, jsonChunk{Request: c.Request, Size: c.Size, RPS: c.RPS})
	}

	return r
}

func toJSONCounts(counts []types.ValueCount) []jsonCount {
	out := make([]jsonCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, jsonCount{Code: c.Value, Count: c.Count, Percent: c.Percent})
	}
	return out
}

// WriteJSON writes stats as an indented JSON document
func WriteJSON(w io.Writer, stats *types.Stats, loc *time.Location) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewJSONReport(stats, loc))
}
