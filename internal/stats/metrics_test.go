package stats

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tank-tools/internal/phout"
)

const sample = "1516295382.983\t#0\t6201\t281\t94\t5785\t41\t5991\t26697\t391\t0\t200\n" +
	"1516295383.127\t#1\t5676\t264\t72\t5315\t25\t5533\t26697\t390\t0\t200\n" +
	"1516295383.189\t#2\t5547\t248\t67\t5191\t41\t5400\t26697\t389\t0\t200\n" +
	"1516295383.239\t#3\t5856\t198\t58\t5581\t19\t5759\t26697\t391\t0\t200\n" +
	"1516295383.282\t#4\t6045\t232\t59\t5740\t14\t5954\t26697\t389\t0\t200\n" +
	"1516295383.316\t#5\t4867\t237\t55\t4555\t20\t4773\t26697\t388\t0\t200\n" +
	"1516295383.349\t#6\t4877\t224\t58\t4581\t14\t4792\t26697\t390\t0\t200\n" +
	"1516295383.381\t#7\t5401\t240\t64\t5079\t18\t5299\t26697\t390\t0\t200\n" +
	"1516295383.409\t#8\t4766\t198\t54\t4500\t14\t4683\t26697\t391\t0\t200\n" +
	"1516295383.436\t#9\t5037\t223\t51\t4750\t13\t4959\t26697\t390\t0\t200\n"

func load(t *testing.T, text string) *phout.Dataset {
	t.Helper()
	ds, err := phout.Load(strings.NewReader(text), phout.Options{})
	require.NoError(t, err)
	return ds
}

// line builds a phout line with the given time, latency and proto code.
func line(ts string, latency, code int) string {
	return fmt.Sprintf("%s\t#\t0\t0\t0\t%d\t0\t0\t10\t20\t0\t%d\n", ts, latency, code)
}

func quantileValues(qs []float64, ds *phout.Dataset, field phout.Field) []int {
	var out []int
	for _, q := range Quantiles(ds, field, qs) {
		out = append(out, int(q.Value))
	}
	return out
}

func TestQuantilesDefaultList(t *testing.T) {
	ds := load(t, sample)

	var got []float64
	for _, q := range Quantiles(ds, phout.FieldIntervalReal, nil) {
		got = append(got, q.Quantile)
	}
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.98, 0.99, 1}, got)
}

func TestQuantilesCustomList(t *testing.T) {
	ds := load(t, sample)

	qs := Quantiles(ds, phout.FieldIntervalReal, ExtendedQuantiles)
	require.Len(t, qs, 14)
	assert.Equal(t, 0.995, qs[12].Quantile)
	assert.Equal(t, 6201, int(qs[13].Value))
}

func TestQuantilesLatency(t *testing.T) {
	ds := load(t, sample)

	assert.Equal(t,
		[]int{4549, 4575, 4699, 4947, 5135, 5240, 5394, 5612, 5744, 5764, 5776, 5780, 5785},
		quantileValues(nil, ds, phout.FieldLatency))
}

func TestQuantilesReceiveTime(t *testing.T) {
	ds := load(t, sample)

	assert.Equal(t,
		[]int{13, 14, 14, 16, 18, 19, 21, 28, 41, 41, 41, 41, 41},
		quantileValues(nil, ds, phout.FieldReceiveTime))
}

func TestQuantilesEmpty(t *testing.T) {
	ds := load(t, "")

	assert.Equal(t,
		[]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		quantileValues(nil, ds, phout.FieldReceiveTime))
}

func TestQuantileInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{name: "median of five", values: []float64{1, 2, 3, 4, 5}, q: 0.5, want: 3},
		{name: "median of four", values: []float64{1, 2, 3, 4}, q: 0.5, want: 2.5},
		{name: "single value", values: []float64{7}, q: 0.9, want: 7},
		{name: "lower bound", values: []float64{1, 2, 3}, q: 0, want: 1},
		{name: "upper bound", values: []float64{1, 2, 3}, q: 1, want: 3},
		{name: "between ranks", values: []float64{10, 20}, q: 0.25, want: 12.5},
		{name: "empty", values: nil, q: 0.5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, quantile(tt.values, tt.q), 1e-9)
		})
	}
}

func TestQuantilesOnDataset(t *testing.T) {
	var sb strings.Builder
	for i, lat := range []int{5, 3, 1, 4, 2} {
		sb.WriteString(line(fmt.Sprintf("100.%d", i), lat, 200))
	}
	ds := load(t, sb.String())

	qs := Quantiles(ds, phout.FieldLatency, []float64{0.5})
	require.Len(t, qs, 1)
	assert.Equal(t, 3.0, qs[0].Value)
	assert.Equal(t, 3.0, Median(ds, phout.FieldLatency))
}

func TestTotalRPS(t *testing.T) {
	rps, err := TotalRPS(load(t, sample))
	require.NoError(t, err)
	assert.InDelta(t, 22.08, rps, 0.01)
}

func TestTotalRPSZeroDuration(t *testing.T) {
	ds := load(t, line("100.5", 1, 200)+line("100.5", 2, 200)+line("100.5", 3, 200))

	rps, err := TotalRPS(ds)
	require.NoError(t, err)
	assert.Equal(t, 3.0, rps)
}

func TestTotalRPSOrdering(t *testing.T) {
	ds := load(t, line("200.5", 1, 200)+line("100.25", 2, 200))

	_, err := TotalRPS(ds)
	require.Error(t, err)

	var oe *OrderingError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, 200.5, oe.From)
	assert.Equal(t, 100.25, oe.To)
	assert.Contains(t, err.Error(), "200.500000")
	assert.Contains(t, err.Error(), "100.250000")
}

func TestTotalRPSEmpty(t *testing.T) {
	_, err := TotalRPS(load(t, ""))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestChunkRPS(t *testing.T) {
	chunks, err := ChunkRPS(load(t, sample))
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, 5, chunks[0].Request)
	assert.Equal(t, 10, chunks[1].Request)
	first, fifth := 1516295382.983, 1516295383.282
	sixth, last := 1516295383.316, 1516295383.436
	assert.InDelta(t, 5/(fifth-first), chunks[0].RPS, 1e-6)
	assert.InDelta(t, 5/(last-sixth), chunks[1].RPS, 1e-6)
}

func TestChunkRPSOddAndSingle(t *testing.T) {
	ds := load(t, line("1", 1, 200)+line("2", 1, 200)+line("3", 1, 200))

	chunks, err := ChunkRPS(ds)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{chunks[0].Request, chunks[1].Request, chunks[2].Request})
	assert.Equal(t, 1.0, chunks[2].RPS)

	chunks, err = ChunkRPS(load(t, line("1", 1, 200)))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Request)
	assert.Equal(t, 1.0, chunks[0].RPS)
}

func TestCountUniqByFieldTies(t *testing.T) {
	ds := load(t, line("1", 1, 400)+line("2", 1, 500)+line("3", 1, 200)+line("4", 1, 0))

	counts := CountUniqByField(ds, phout.FieldProtoCode)
	require.Len(t, counts, 4)

	for i, want := range []string{"400", "500", "200", "0"} {
		assert.Equal(t, want, counts[i].Value)
		assert.Equal(t, 1, counts[i].Count)
		assert.Equal(t, 25.0, counts[i].Percent)
	}
}

func TestCountUniqByFieldOrdering(t *testing.T) {
	ds := load(t, line("1", 1, 404)+line("2", 1, 200)+line("3", 1, 500)+
		line("4", 1, 200)+line("5", 1, 500)+line("6", 1, 200))

	counts := CountUniqByField(ds, phout.FieldProtoCode)
	require.Len(t, counts, 3)
	assert.Equal(t, "200", counts[0].Value)
	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, 50.0, counts[0].Percent)
	assert.Equal(t, "500", counts[1].Value)
	assert.Equal(t, "404", counts[2].Value)
	assert.InDelta(t, 100.0/6, counts[2].Percent, 1e-9)
}

func TestCountUniqByTag(t *testing.T) {
	counts := CountUniqByField(load(t, sample), phout.FieldTag)
	require.Len(t, counts, 10)
	assert.Equal(t, "#0", counts[0].Value)
	assert.Equal(t, 10.0, counts[0].Percent)
}

func TestMean(t *testing.T) {
	ds := load(t, sample)

	assert.Equal(t, 26697.0, Mean(ds, phout.FieldSizeOut))
	assert.InDelta(t, 389.9, Mean(ds, phout.FieldSizeIn), 1e-9)
	assert.Equal(t, 0.0, Mean(load(t, ""), phout.FieldSizeIn))
}

func TestComputeStats(t *testing.T) {
	ds := load(t, sample)

	s, err := ComputeStats(ds, phout.FieldLatency, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, s.TotalRequests)
	assert.Equal(t, 1516295382.983, s.FromTime)
	assert.Equal(t, 1516295383.436, s.ToTime)
	assert.Equal(t, "latency", s.Field)
	assert.Len(t, s.Quantiles, 13)
	require.Len(t, s.ProtoCodes, 1)
	assert.Equal(t, 100.0, s.ProtoCodes[0].Percent)
	assert.Equal(t, 5135.0, s.LatencyMedian)
	require.Len(t, s.LatencyByCode, 1)
	assert.Equal(t, "200", s.LatencyByCode[0].Code)
	assert.Equal(t, 26697.0, s.AvgRequestSize)
	assert.InDelta(t, 22.08, s.RequestsPerSecond, 0.01)
	assert.Len(t, s.Chunks, 2)

	_, err = ComputeStats(load(t, ""), phout.FieldLatency, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
