package ammo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ramblerRequest = "GET https://rambler.ru/ HTTP/1.1\r\n" +
	"Host: rambler.ru\r\n" +
	"Content-Length: 0\r\n\r\n"

func TestParseRequest(t *testing.T) {
	req, n, err := ParseRequest([]byte(ramblerRequest))
	require.NoError(t, err)

	assert.Equal(t, len(ramblerRequest), n)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://rambler.ru/", req.URI)
	assert.Equal(t, "HTTP/1.1", req.Version)
	assert.Equal(t, []string{"Host", "Content-Length"}, headerNames(req))
	assert.Equal(t, ramblerRequest, string(req.Bytes()))
}

func TestParseRequestKeepsSpelling(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nhost:rambler.ru\r\nX-Custom:   spaced\r\n\r\n"

	req, _, err := ParseRequest([]byte(raw))
	require.NoError(t, err)

	value, ok := req.Header("HOST")
	assert.True(t, ok)
	assert.Equal(t, "rambler.ru", value)
	value, _ = req.Header("x-custom")
	assert.Equal(t, "spaced", value)
	assert.Equal(t, raw, string(req.Bytes()))
}

func TestParseRequestBody(t *testing.T) {
	raw := "POST /form HTTP/1.1\r\nHost: a\r\nContent-Length: 5\r\n\r\nhello"

	req, n, err := ParseRequest([]byte(raw + "GET / HTTP/1.1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, "hello", string(req.Body))
}

func TestParseRequestChunked(t *testing.T) {
	raw := "POST /upload HTTP/1.1\r\nHost: a\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n0\r\n\r\n"

	req, n, err := ParseRequest([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, "5\r\nhello\r\n0\r\n\r\n", string(req.Body))
	assert.Equal(t, raw, string(req.Bytes()))
}

func TestParseRequestIncomplete(t *testing.T) {
	for _, raw := range []string{
		"GET / HT",
		"GET / HTTP/1.1\r\nHost: a\r\n",
		"POST / HTTP/1.1\r\nHost: a\r\nContent-Length: 10\r\n\r\nabc",
	} {
		_, _, err := ParseRequest([]byte(raw))
		assert.ErrorIs(t, err, ErrIncomplete, raw)
	}
}

func TestParseRequestMalformed(t *testing.T) {
	_, _, err := ParseRequest([]byte("GET / HTTP/1.1\r\nBad Header Line\r\n\r\n"))
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestLooksLikeRequest(t *testing.T) {
	assert.True(t, looksLikeRequest([]byte("GET / HTTP/1.1")))
	assert.True(t, looksLikeRequest([]byte("OPTIONS * HTTP/1.1")))
	assert.False(t, looksLikeRequest([]byte("HTTP/1.1 200 OK")))
	assert.False(t, looksLikeRequest([]byte("GETX / HTTP/1.1")))
}

func headerNames(req *Request) []string {
	var names []string
	for _, h := range req.Headers {
		names = append(names, h.Name)
	}
	return names
}

func parse(t *testing.T, raw string) *Request {
	t.Helper()

	req, _, err := ParseRequest([]byte(raw))
	require.NoError(t, err)
	return req
}

func TestAddHeaders(t *testing.T) {
	req := parse(t, ramblerRequest)

	require.NoError(t, AddHeaders(req, []string{"Referer: http://domain.com/", "host: other.ru"}))

	expected := "GET https://rambler.ru/ HTTP/1.1\r\n" +
		"Host: rambler.ru\r\n" +
		"Content-Length: 0\r\n" +
		"Referer: http://domain.com/\r\n\r\n"
	assert.Equal(t, expected, string(req.Bytes()))
}

func TestAddHeadersWrongFormat(t *testing.T) {
	req := parse(t, ramblerRequest)

	err := AddHeaders(req, []string{"Referer"})
	assert.ErrorIs(t, err, ErrHeaderFormat)
	assert.Equal(t, `Wrong header format, expected "<header_name>: <header_value>"`, err.Error())
	assert.Equal(t, ramblerRequest, string(req.Bytes()))
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		line  string
		name  string
		value string
	}{
		{line: "Referer: http://domain.com/", name: "Referer", value: "http://domain.com/"},
		{line: "X-Empty:", name: "X-Empty", value: ""},
		{line: "X-Tight:value", name: "X-Tight", value: "value"},
		{line: "X-Spaces:    value", name: "X-Spaces", value: "value"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			h, err := ParseHeader(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.name, h.Name)
			assert.Equal(t, tt.value, h.Value)
			assert.Equal(t, tt.line, h.String())
		})
	}
}

func TestDeleteHeaders(t *testing.T) {
	req := parse(t, "GET / HTTP/1.1\r\nHost: a\r\nCookie: a=1\r\nContent-Length: 0\r\ncookie: b=2\r\n\r\n")

	DeleteHeaders(req, []string{"COOKIE", "missing"})

	assert.Equal(t, "GET / HTTP/1.1\r\nHost: a\r\nContent-Length: 0\r\n\r\n", string(req.Bytes()))
}

func TestDeleteThenAdd(t *testing.T) {
	req := parse(t, ramblerRequest)

	DeleteHeaders(req, []string{"host"})
	require.NoError(t, AddHeaders(req, []string{"Host: example.com"}))

	assert.Equal(t, []string{"Content-Length", "Host"}, headerNames(req))
}

func TestMakeAmmo(t *testing.T) {
	assert.Equal(t, "3 tag\nabc", string(MakeAmmo([]byte("abc"), "tag")))
	assert.Equal(t, "73 \n"+ramblerRequest, string(MakeAmmo([]byte(ramblerRequest), "")))
}
