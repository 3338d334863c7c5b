package stats

import (
	"tank-tools/internal/phout"
	"tank-tools/internal/types"
)

// ComputeStats computes the full summary of ds with quantiles of field
func ComputeStats(ds *phout.Dataset, field phout.Field, quantiles []float64) (*types.Stats, error) {
	first, ok := ds.First()
	if !ok {
		return nil, ErrEmptyDataset
	}
	last, _ := ds.Last()

	stats := &types.Stats{
		TotalRequests: ds.Size(),
		FromTime:      first.Time,
		ToTime:        last.Time,
		Field:         field.String(),
		Quantiles:     Quantiles(ds, field, quantiles),
		ProtoCodes:    CountUniqByField(ds, phout.FieldProtoCode),
		NetCodes:      CountUniqByField(ds, phout.FieldNetCode),
		LatencyMedian: Median(ds, phout.FieldLatency),
	}

	for _, code := range stats.ProtoCodes {
		selected := ds.Where(phout.FieldProtoCode, code.Value)
		stats.LatencyByCode = append(stats.LatencyByCode, types.CodeLatency{
			Code:   code.Value,
			Median: Median(selected, phout.FieldLatency),
		})
	}

	stats.AvgRequestSize = Mean(ds, phout.FieldSizeOut)
	stats.AvgResponseSize = Mean(ds, phout.FieldSizeIn)

	// Calculate throughput
	rps, err := TotalRPS(ds)
	if err != nil {
		return nil, err
	}
	stats.RequestsPerSecond = rps

	chunks, err := ChunkRPS(ds)
	if err != nil {
		return nil, err
	}
	stats.Chunks = chunks

	return stats, nil
}
