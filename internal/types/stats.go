package types

// Quantile is one point of a distribution
type Quantile struct {
	Quantile float64 // fraction in [0, 1]
	Value    float64
}

// ValueCount is the number of records sharing one field value
type ValueCount struct {
	Value   string
	Count   int
	Percent float64 // share of all records, 0..100
}

// ChunkRPS is the request rate of one consecutive slice of a run
type ChunkRPS struct {
	Start   int // index of the first request in the chunk
	Request int // label: index of the request closing the chunk
	Size    int
	RPS     float64
}

// CodeLatency is the median latency of the requests answered with one code
type CodeLatency struct {
	Code   string
	Median float64
}

// Stats contains the computed summary of a phout dataset
type Stats struct {
	// General stats
	TotalRequests int
	FromTime      float64 // first request timestamp (epoch seconds)
	ToTime        float64 // last request timestamp (epoch seconds)

	// Distribution of the configured field (microseconds)
	Field     string
	Quantiles []Quantile

	// Response codes
	ProtoCodes []ValueCount
	NetCodes   []ValueCount

	// Latency (microseconds)
	LatencyMedian float64
	LatencyByCode []CodeLatency

	// Sizes (bytes)
	AvgRequestSize  float64
	AvgResponseSize float64

	// Throughput
	RequestsPerSecond float64
	Chunks            []ChunkRPS
}
