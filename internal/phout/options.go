package phout

import (
	"fmt"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// Flags are the raw load filters as supplied on the command line
type Flags struct {
	FromDate string // use only requests at or after this date
	ToDate   string // stop at the first request at or after this date
	Limit    int    // use N requests from the beginning of file or FromDate
}

// Options is the normalized form of Flags. It is built once before a scan
// and not modified afterwards
type Options struct {
	fromDate float64
	toDate   float64
	limit    int

	hasFromDate bool
	hasToDate   bool
	hasLimit    bool
}

// NewOptions parses the dates of f in the local time zone
func NewOptions(f Flags) (Options, error) {
	return NewOptionsIn(f, time.Local)
}

// NewOptionsIn parses the dates of f, interpreting zone-less dates in loc
func NewOptionsIn(f Flags, loc *time.Location) (Options, error) {
	var opts Options

	if f.FromDate != "" {
		ts, err := parseDate(f.FromDate, loc)
		if err != nil {
			return Options{}, fmt.Errorf("invalid from date %q: %w", f.FromDate, err)
		}
		opts.fromDate, opts.hasFromDate = ts, true
	}

	if f.ToDate != "" {
		ts, err := parseDate(f.ToDate, loc)
		if err != nil {
			return Options{}, fmt.Errorf("invalid to date %q: %w", f.ToDate, err)
		}
		opts.toDate, opts.hasToDate = ts, true
	}

	if f.Limit < 0 {
		return Options{}, fmt.Errorf("limit must be positive, got %d", f.Limit)
	}
	if f.Limit > 0 {
		opts.limit, opts.hasLimit = f.Limit, true
	}

	return opts, nil
}

// parseDate converts a human readable date into epoch seconds with
// microsecond precision, going through the same textual form as the
// phout time column so equal instants compare equal
func parseDate(s string, loc *time.Location) (float64, error) {
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return 0, err
	}
	return EpochSeconds(t), nil
}

// EpochSeconds returns t as "<unix>.<microseconds>" parsed into a float64
func EpochSeconds(t time.Time) float64 {
	text := fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
	v, _ := strconv.ParseFloat(text, 64)
	return v
}

// FromDate returns the inclusive lower time bound, if set
func (o Options) FromDate() (float64, bool) { return o.fromDate, o.hasFromDate }

// ToDate returns the inclusive stop time, if set
func (o Options) ToDate() (float64, bool) { return o.toDate, o.hasToDate }

// Limit returns the maximal number of kept records, if set
func (o Options) Limit() (int, bool) { return o.limit, o.hasLimit }

// start reports whether a record with timestamp ts is kept
func (o Options) start(ts float64) bool {
	result := true
	if o.hasFromDate {
		result = ts >= o.fromDate
	}
	return result
}

// stop reports whether the scan ends after keeping the kept-th record with
// timestamp ts. When both to date and limit are set the limit decides
func (o Options) stop(kept int, ts float64) bool {
	result := false
	if o.hasToDate {
		result = ts >= o.toDate
	}
	if o.hasLimit {
		result = kept >= o.limit
	}
	return result
}
