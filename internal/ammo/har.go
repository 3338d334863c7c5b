package ammo

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type harFile struct {
	Log struct {
		Entries []harEntry `json:"entries"`
	} `json:"log"`
}

type harEntry struct {
	ServerIPAddress string     `json:"serverIPAddress"`
	Request         harRequest `json:"request"`
}

type harRequest struct {
	Method      string       `json:"method"`
	URL         string       `json:"url"`
	HTTPVersion string       `json:"httpVersion"`
	Headers     []harHeader  `json:"headers"`
	PostData    *harPostData `json:"postData"`
	BodySize    int          `json:"bodySize"`
}

type harHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type harPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// HarReader yields the requests recorded in a HAR archive. The TCP/IP
// filter sees the server address as ip.dst
type HarReader struct {
	entries []harEntry
	pos     int
	filter  *Filter
	stats   Stats
	logger  log.Logger
}

// OpenHar reads and decodes the HAR file at path
func OpenHar(path string, filter *Filter, logger log.Logger) (*HarReader, error) {
	if path == "" {
		return nil, ErrNoInput
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewHarReader(f, filter, logger)
}

// NewHarReader decodes a HAR archive from r
func NewHarReader(r io.Reader, filter *Filter, logger log.Logger) (*HarReader, error) {
	var har harFile
	if err := json.NewDecoder(r).Decode(&har); err != nil {
		return nil, fmt.Errorf("failed to parse har file: %w", err)
	}

	level.Debug(logger).Log("msg", "HAR decoded", "entries", len(har.Log.Entries))

	return &HarReader{
		entries: har.Log.Entries,
		filter:  filter,
		logger:  logger,
	}, nil
}

// Next returns the next request passing the filter
func (h *HarReader) Next() (*Request, error) {
	for h.pos < len(h.entries) {
		entry := h.entries[h.pos]
		h.pos++

		ok, err := h.filter.MatchPacket(PacketInfo{Dst: entry.ServerIPAddress})
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		h.stats.Total++

		req := entry.Request
		if req.Method == "" || req.URL == "" || req.HTTPVersion == "" {
			h.stats.Incorrect++
			level.Debug(h.logger).Log("msg", "Incorrect HAR entry", "index", h.pos-1)
			continue
		}

		var body []byte
		if req.PostData != nil {
			body = []byte(req.PostData.Text)
		}
		if req.BodySize > len(body) {
			h.stats.Incomplete++
			level.Debug(h.logger).Log("msg", "Incomplete HAR entry", "index", h.pos-1, "body_size", req.BodySize)
			continue
		}

		h.stats.Complete++

		out := &Request{
			Method:  req.Method,
			URI:     req.URL,
			Version: req.HTTPVersion,
			Body:    body,
		}
		for _, hdr := range req.Headers {
			out.Headers = append(out.Headers, Header{Name: hdr.Name, Value: hdr.Value})
		}

		return out, nil
	}

	return nil, io.EOF
}

// Stats returns the counters of the entries read so far
func (h *HarReader) Stats() Stats {
	return h.stats
}

// Close releases the TCP/IP filter
func (h *HarReader) Close() error {
	h.filter.Close()
	return nil
}
