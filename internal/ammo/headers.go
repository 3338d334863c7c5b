package ammo

import (
	"errors"
	"strings"
)

// ErrHeaderFormat is returned for an added header without a name/value separator
var ErrHeaderFormat = errors.New(`Wrong header format, expected "<header_name>: <header_value>"`)

// ParseHeader parses "<name>: <value>". Spaces after the colon are optional
func ParseHeader(line string) (Header, error) {
	name, value, found := strings.Cut(line, ":")
	if !found {
		return Header{}, ErrHeaderFormat
	}

	return Header{
		Name:  name,
		Value: strings.TrimLeft(value, " "),
		line:  line,
	}, nil
}

// ParseHeaders parses every header line, failing on the first malformed one
func ParseHeaders(lines []string) ([]Header, error) {
	headers := make([]Header, 0, len(lines))
	for _, line := range lines {
		h, err := ParseHeader(line)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

// DeleteHeaders removes every header whose name matches one of names,
// ignoring case
func DeleteHeaders(req *Request, names []string) {
	if len(names) == 0 {
		return
	}

	kept := req.Headers[:0]
	for _, h := range req.Headers {
		if !containsFold(names, h.Name) {
			kept = append(kept, h)
		}
	}
	req.Headers = kept
}

// AddHeaders appends each header given as "<name>: <value>" unless the
// request already has a header of that name
func AddHeaders(req *Request, lines []string) error {
	headers, err := ParseHeaders(lines)
	if err != nil {
		return err
	}

	addHeaders(req, headers)
	return nil
}

func addHeaders(req *Request, headers []Header) {
	for _, h := range headers {
		if _, ok := req.Header(h.Name); ok {
			continue
		}
		req.Headers = append(req.Headers, h)
	}
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
