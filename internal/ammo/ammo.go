package ammo

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrNoInput is returned when a reader is opened without a file name
var ErrNoInput = errors.New("input filename is not specified or empty")

// Stats counts the requests seen by a reader
type Stats struct {
	Total      int
	Complete   int
	Incorrect  int
	Incomplete int
}

// WriteTo prints the stats block of --stats-only
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Stats:\n\ttotal: %d\n\tcomplete: %d\n\tincorrect: %d\n\tincomplete: %d\n",
		s.Total, s.Complete, s.Incorrect, s.Incomplete)
	return int64(n), err
}

// Reader yields complete requests of an input and io.EOF at its end
type Reader interface {
	Next() (*Request, error)
	Stats() Stats
	Close() error
}

// MakeAmmo renders a raw request as a phantom ammo record
func MakeAmmo(raw []byte, tag string) []byte {
	return append([]byte(fmt.Sprintf("%d %s\n", len(raw), tag)), raw...)
}

// ConverterOptions are the per-request transformations of a conversion
type ConverterOptions struct {
	Tag           string
	HTTPFilter    string
	AddHeaders    []string
	DeleteHeaders []string
}

// Converter turns the requests of a Reader into ammo records
type Converter struct {
	tag           string
	filter        *Filter
	addHeaders    []Header
	deleteHeaders []string
	logger        log.Logger
}

// NewConverter validates opts and compiles the HTTP filter
func NewConverter(opts ConverterOptions, logger log.Logger) (*Converter, error) {
	headers, err := ParseHeaders(opts.AddHeaders)
	if err != nil {
		return nil, err
	}

	filter, err := NewFilter(opts.HTTPFilter)
	if err != nil {
		return nil, err
	}

	return &Converter{
		tag:           opts.Tag,
		filter:        filter,
		addHeaders:    headers,
		deleteHeaders: opts.DeleteHeaders,
		logger:        logger,
	}, nil
}

// Close releases the HTTP filter
func (c *Converter) Close() {
	c.filter.Close()
}

// Convert writes an ammo record for every request of r that passes the
// HTTP filter. Headers are deleted first, then added
func (c *Converter) Convert(r Reader, w io.Writer) (int, error) {
	written := 0

	for {
		req, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, err
		}

		ok, err := c.filter.MatchHTTP(req)
		if err != nil {
			return written, err
		}
		if !ok {
			level.Debug(c.logger).Log("msg", "Request filtered", "method", req.Method, "uri", req.URI)
			continue
		}

		DeleteHeaders(req, c.deleteHeaders)
		addHeaders(req, c.addHeaders)

		if _, err := w.Write(MakeAmmo(req.Bytes(), c.tag)); err != nil {
			return written, fmt.Errorf("failed to write ammo: %w", err)
		}
		written++
	}

	stats := r.Stats()
	level.Info(c.logger).Log(
		"msg", "Conversion finished",
		"written", written,
		"total", stats.Total,
		"complete", stats.Complete,
		"incorrect", stats.Incorrect,
		"incomplete", stats.Incomplete,
	)

	return written, nil
}

// Drain reads r to the end and returns its stats
func Drain(r Reader) (Stats, error) {
	for {
		_, err := r.Next()
		if errors.Is(err, io.EOF) {
			return r.Stats(), nil
		}
		if err != nil {
			return r.Stats(), err
		}
	}
}
