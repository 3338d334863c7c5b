package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"tank-tools/internal/phout"
	"tank-tools/internal/types"
)

// ErrEmptyDataset is returned by computations that need at least one record
var ErrEmptyDataset = errors.New("dataset is empty")

// OrderingError reports a dataset whose last timestamp precedes the first one
type OrderingError struct {
	From float64
	To   float64
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("Incorrect time values from_date > to_date (%f > %f)", e.From, e.To)
}

// DefaultQuantiles is used when no quantile list is given
var DefaultQuantiles = []float64{
	0.1, 0.2, 0.3, 0.4, 0.5,
	0.6, 0.7, 0.8, 0.9, 0.95,
	0.98, 0.99, 1.0,
}

// ExtendedQuantiles adds the 99.5th percentile to DefaultQuantiles
var ExtendedQuantiles = []float64{
	0.1, 0.2, 0.3, 0.4, 0.5,
	0.6, 0.7, 0.8, 0.9, 0.95,
	0.98, 0.99, 0.995, 1.0,
}

// Quantiles computes the given quantiles of field over ds. A nil or empty
// list selects DefaultQuantiles. Values of an empty dataset are all 0
func Quantiles(ds *phout.Dataset, field phout.Field, quantiles []float64) []types.Quantile {
	if len(quantiles) == 0 {
		quantiles = DefaultQuantiles
	}

	sorted := sortedValues(ds, field)

	result := make([]types.Quantile, 0, len(quantiles))
	for _, q := range quantiles {
		result = append(result, types.Quantile{
			Quantile: q,
			Value:    quantile(sorted, q),
		})
	}
	return result
}

// Median returns the 0.5 quantile of field over ds
func Median(ds *phout.Dataset, field phout.Field) float64 {
	return quantile(sortedValues(ds, field), 0.5)
}

// Mean returns the arithmetic mean of field over ds, 0 for an empty dataset
func Mean(ds *phout.Dataset, field phout.Field) float64 {
	if ds.Size() == 0 {
		return 0
	}
	sum := 0.0
	for _, rec := range ds.Records() {
		sum += rec.Float(field)
	}
	return sum / float64(ds.Size())
}

// TotalRPS returns the number of requests divided by the time between the
// first and the last request in dataset order. A zero duration counts as one
// second
func TotalRPS(ds *phout.Dataset) (float64, error) {
	first, ok := ds.First()
	if !ok {
		return 0, ErrEmptyDataset
	}
	last, _ := ds.Last()

	duration := last.Time - first.Time
	if duration < 0 {
		return 0, &OrderingError{From: first.Time, To: last.Time}
	}
	if duration == 0 {
		duration = 1
	}

	return float64(ds.Size()) / duration, nil
}

// ChunkRPS splits ds into halves (plus a remainder chunk for odd sizes) and
// computes TotalRPS of each. Chunks are labelled with the index of the
// request that closes them
func ChunkRPS(ds *phout.Dataset) ([]types.ChunkRPS, error) {
	size := ds.Size()
	if size == 0 {
		return nil, ErrEmptyDataset
	}

	chunkSize := size / 2
	if chunkSize == 0 {
		chunkSize = size
	}

	var chunks []types.ChunkRPS
	for start := 0; start < size; start += chunkSize {
		subset := ds.Subset(start, chunkSize)
		rps, err := TotalRPS(subset)
		if err != nil {
			return nil, fmt.Errorf("chunk at request %d: %w", start, err)
		}
		chunks = append(chunks, types.ChunkRPS{
			Start:   start,
			Request: start + chunkSize,
			Size:    subset.Size(),
			RPS:     rps,
		})
	}
	return chunks, nil
}

// CountUniqByField counts the records per distinct value of field, most
// frequent first. Values with equal counts keep their first-seen order
func CountUniqByField(ds *phout.Dataset, field phout.Field) []types.ValueCount {
	index := make(map[string]int)
	var counts []types.ValueCount

	for _, rec := range ds.Records() {
		v := rec.Value(field)
		i, ok := index[v]
		if !ok {
			i = len(counts)
			index[v] = i
			counts = append(counts, types.ValueCount{Value: v})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	total := float64(ds.Size())
	for i := range counts {
		counts[i].Percent = float64(counts[i].Count) / total * 100.0
	}
	return counts
}

// sortedValues returns the values of field in ascending order
func sortedValues(ds *phout.Dataset, field phout.Field) []float64 {
	values := make([]float64, 0, ds.Size())
	for _, rec := range ds.Records() {
		values = append(values, rec.Float(field))
	}
	sort.Float64s(values)
	return values
}

// quantile calculates the q-th quantile of a sorted slice using linear
// interpolation between the closest ranks: idx = q*(n-1)
func quantile(sortedValues []float64, q float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if q <= 0 {
		return sortedValues[0]
	}
	if q >= 1 {
		return sortedValues[len(sortedValues)-1]
	}

	index := q * float64(len(sortedValues)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sortedValues[lower]
	}

	// Linear interpolation
	weight := index - float64(lower)
	return sortedValues[lower] + (sortedValues[upper]-sortedValues[lower])*weight
}
