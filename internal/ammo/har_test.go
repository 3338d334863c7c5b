package ammo

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ramblerEntry = `{
	"serverIPAddress": "81.19.82.8",
	"request": {
		"method": "GET",
		"url": "https://rambler.ru/",
		"httpVersion": "HTTP/1.1",
		"headers": [
			{"name": "Host", "value": "rambler.ru"},
			{"name": "Content-Length", "value": "0"}
		],
		"bodySize": 0
	}
}`

func writeHar(t *testing.T, entries ...string) string {
	t.Helper()

	content := `{"log": {"version": "1.2", "entries": [` + strings.Join(entries, ",") + `]}}`
	path := filepath.Join(t.TempDir(), "requests.har")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openHar(t *testing.T, path, filter string) *HarReader {
	t.Helper()

	f, err := NewFilter(filter)
	require.NoError(t, err)

	r, err := OpenHar(path, f, log.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func convert(t *testing.T, r Reader, opts ConverterOptions) string {
	t.Helper()

	c, err := NewConverter(opts, log.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()

	var out bytes.Buffer
	_, err = c.Convert(r, &out)
	require.NoError(t, err)
	return out.String()
}

func TestHarConvert(t *testing.T) {
	r := openHar(t, writeHar(t, ramblerEntry), "")

	assert.Equal(t, "73 \n"+ramblerRequest, convert(t, r, ConverterOptions{}))
	assert.Equal(t, Stats{Total: 1, Complete: 1}, r.Stats())
}

func TestHarConvertTag(t *testing.T) {
	r := openHar(t, writeHar(t, ramblerEntry), "")

	assert.Equal(t, "73 main\n"+ramblerRequest, convert(t, r, ConverterOptions{Tag: "main"}))
}

func TestHarAddHeader(t *testing.T) {
	r := openHar(t, writeHar(t, ramblerEntry), "")

	expected := "GET https://rambler.ru/ HTTP/1.1\r\n" +
		"Host: rambler.ru\r\n" +
		"Content-Length: 0\r\n" +
		"Referer: http://domain.com/\r\n\r\n"
	out := convert(t, r, ConverterOptions{AddHeaders: []string{"Referer: http://domain.com/"}})
	assert.Equal(t, "102 \n"+expected, out)
}

func TestHarAddHeaderWrongFormat(t *testing.T) {
	_, err := NewConverter(ConverterOptions{AddHeaders: []string{"Referer"}}, log.NewNopLogger())
	assert.ErrorIs(t, err, ErrHeaderFormat)
}

func TestHarDeleteHeader(t *testing.T) {
	r := openHar(t, writeHar(t, ramblerEntry), "")

	expected := "GET https://rambler.ru/ HTTP/1.1\r\n" +
		"Host: rambler.ru\r\n\r\n"
	out := convert(t, r, ConverterOptions{DeleteHeaders: []string{"content-length"}})
	assert.Equal(t, "54 \n"+expected, out)
}

func TestHarHTTPFilter(t *testing.T) {
	path := writeHar(t, ramblerEntry)

	out := convert(t, openHar(t, path, ""), ConverterOptions{HTTPFilter: `"rambler.ru" == http.headers["host"]`})
	assert.Equal(t, "73 \n"+ramblerRequest, out)

	out = convert(t, openHar(t, path, ""), ConverterOptions{HTTPFilter: `"rambler.ru" != http.headers["host"]`})
	assert.Empty(t, out)
}

func TestHarServerFilter(t *testing.T) {
	path := writeHar(t, ramblerEntry)

	r := openHar(t, path, `ip.dst == "81.19.82.8"`)
	assert.Equal(t, "73 \n"+ramblerRequest, convert(t, r, ConverterOptions{}))

	r = openHar(t, path, `ip.dst == "127.0.0.1"`)
	assert.Empty(t, convert(t, r, ConverterOptions{}))
	assert.Equal(t, Stats{}, r.Stats())
}

func TestHarPostData(t *testing.T) {
	entry := `{"request": {
		"method": "POST",
		"url": "/form",
		"httpVersion": "HTTP/1.1",
		"headers": [{"name": "Content-Length", "value": "5"}],
		"postData": {"mimeType": "text/plain", "text": "hello"},
		"bodySize": 5
	}}`
	r := openHar(t, writeHar(t, entry), "")

	req, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "POST /form HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello", string(req.Bytes()))

	_, err = r.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestHarStatsOnly(t *testing.T) {
	incorrect := `{"request": {"method": "GET", "url": "", "httpVersion": "HTTP/1.1"}}`
	incomplete := `{"request": {"method": "POST", "url": "/", "httpVersion": "HTTP/1.1", "bodySize": 10, "postData": {"text": "abc"}}}`
	r := openHar(t, writeHar(t, ramblerEntry, incorrect, incomplete), "")

	stats, err := Drain(r)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Complete: 1, Incorrect: 1, Incomplete: 1}, stats)

	var out bytes.Buffer
	_, err = stats.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, "Stats:\n\ttotal: 3\n\tcomplete: 1\n\tincorrect: 1\n\tincomplete: 1\n", out.String())
}

func TestHarNoInput(t *testing.T) {
	_, err := OpenHar("", nil, log.NewNopLogger())
	assert.ErrorIs(t, err, ErrNoInput)
	assert.Equal(t, "input filename is not specified or empty", err.Error())
}

func TestHarInvalidJSON(t *testing.T) {
	_, err := NewHarReader(strings.NewReader("{not json"), nil, log.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse har file")
}
