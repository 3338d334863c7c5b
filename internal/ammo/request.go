package ammo

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrIncomplete is returned when data ends before the request does
	ErrIncomplete = errors.New("incomplete HTTP request")

	// ErrMalformedRequest is returned for data that is not an HTTP request
	ErrMalformedRequest = errors.New("malformed HTTP request")
)

var requestMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace,
}

// Header is a single request header in wire order
type Header struct {
	Name  string
	Value string

	line string
}

func (h Header) String() string {
	if h.line != "" {
		return h.line
	}
	return h.Name + ": " + h.Value
}

// Request is an HTTP request as it is replayed
type Request struct {
	Method  string
	URI     string
	Version string
	Headers []Header
	Body    []byte
}

// Bytes renders the request in wire format
func (r *Request) Bytes() []byte {
	var buf bytes.Buffer

	buf.WriteString(r.Method + " " + r.URI + " " + r.Version + "\r\n")
	for _, h := range r.Headers {
		buf.WriteString(h.String() + "\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)

	return buf.Bytes()
}

// Header returns the value of the first header called name, ignoring case
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// looksLikeRequest reports whether data starts with a request line
func looksLikeRequest(data []byte) bool {
	for _, m := range requestMethods {
		if bytes.HasPrefix(data, []byte(m+" ")) {
			return true
		}
	}
	return false
}

// ParseRequest parses the request at the start of data and returns it with
// the number of bytes it occupies. Header order and spelling as well as the
// raw body (chunked framing included) are kept
func ParseRequest(data []byte) (*Request, int, error) {
	if _, _, ok := splitHead(data); !ok {
		return nil, 0, ErrIncomplete
	}

	src := bytes.NewReader(data)
	br := bufio.NewReader(src)

	hreq, err := http.ReadRequest(br)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, ErrIncomplete
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if _, err := io.Copy(io.Discard, hreq.Body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, ErrIncomplete
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	consumed := len(data) - src.Len() - br.Buffered()

	head, body, ok := splitHead(data[:consumed])
	if !ok {
		return nil, 0, ErrIncomplete
	}

	lines := strings.Split(strings.ReplaceAll(string(head), "\r\n", "\n"), "\n")
	parts := strings.SplitN(lines[0], " ", 3)
	if len(parts) != 3 {
		return nil, 0, fmt.Errorf("%w: bad request line %q", ErrMalformedRequest, lines[0])
	}

	req := &Request{
		Method:  parts[0],
		URI:     parts[1],
		Version: parts[2],
		Body:    append([]byte(nil), body...),
	}
	for _, line := range lines[1:] {
		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, 0, fmt.Errorf("%w: bad header line %q", ErrMalformedRequest, line)
		}
		req.Headers = append(req.Headers, Header{
			Name:  name,
			Value: strings.TrimLeft(value, " \t"),
			line:  line,
		})
	}

	return req, consumed, nil
}

// splitHead separates the request line and headers from the body. The
// blank line ending the head is dropped
func splitHead(data []byte) ([]byte, []byte, bool) {
	if i := bytes.Index(data, []byte("\r\n\r\n")); i >= 0 {
		return data[:i], data[i+4:], true
	}
	if i := bytes.Index(data, []byte("\n\n")); i >= 0 {
		return data[:i], data[i+2:], true
	}
	return nil, nil, false
}
