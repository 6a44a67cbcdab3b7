// SPDX-License-Identifier: MIT

package httpd

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yadaserver/yada/internal/seekrange"
)

func parse(t *testing.T, raw string) (*Request, int) {
	t.Helper()
	return readRequest(bufio.NewReader(strings.NewReader(raw)))
}

func TestReadRequestBasic(t *testing.T) {
	req, status := parse(t, "GET /cds.xml HTTP/1.1\r\n"+
		"Host: 192.168.1.5:53235\r\n"+
		"User-Agent: TestRenderer/1.0\r\n"+
		"\r\n")
	require.Zero(t, status)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/cds.xml", req.URI)
	assert.Equal(t, "HTTP/1.1", req.Version)
	assert.Equal(t, "TestRenderer/1.0", req.UserAgent)
	assert.Empty(t, req.Body)
}

func TestReadRequestDLNAHeaders(t *testing.T) {
	req, status := parse(t, "GET /abc.mp3 HTTP/1.1\r\n"+
		"getcontentFeatures.dlna.org: 1\r\n"+
		"transferMode.dlna.org: Streaming\r\n"+
		"TimeSeekRange.dlna.org: npt=30-\r\n"+
		"friendlyName.dlna.org: TV\r\n"+
		"getMediaInfo.sec: \r\n"+
		"\r\n")
	require.Zero(t, status)
	assert.True(t, req.GetContentFeatures)
	assert.Equal(t, "Streaming", req.TransferMode)
	assert.True(t, req.HasTimeSeek)
	assert.Equal(t, seekrange.TimeSeekNPT, req.TimeSeek.Kind)
	assert.Equal(t, "TV", req.FriendlyName)
	assert.True(t, req.GetMediaInfo)
}

func TestReadRequestHeaderNamesCaseInsensitive(t *testing.T) {
	req, status := parse(t, "GET / HTTP/1.1\r\n"+
		"RANGE: bytes=0-99\r\n"+
		"\r\n")
	require.Zero(t, status)
	require.True(t, req.HasRange)
	assert.Equal(t, uint64(0), req.Range.First)
	assert.Equal(t, uint64(99), req.Range.Last)
}

func TestReadRequestErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"unknown method", "PUT / HTTP/1.1\r\n\r\n", 501},
		{"bad request line", "GET /\r\n\r\n", 400},
		{"bad version", "GET / SIP/2.0\r\n\r\n", 400},
		{"content features not 1", "GET / HTTP/1.1\r\ngetcontentFeatures.dlna.org: 0\r\n\r\n", 400},
		{"bad transfer mode", "GET / HTTP/1.1\r\ntransferMode.dlna.org: Bulk\r\n\r\n", 400},
		{"bad time seek", "GET / HTTP/1.1\r\nTimeSeekRange.dlna.org: sec=30-\r\n\r\n", 416},
		{"bad range", "GET / HTTP/1.1\r\nRange: bytes=-500\r\n\r\n", 416},
		{"bad content length", "POST / HTTP/1.1\r\nContent-Length: ten\r\n\r\n", 400},
		{"interactive with time seek", "GET / HTTP/1.1\r\n" +
			"transferMode.dlna.org: Interactive\r\nTimeSeekRange.dlna.org: npt=0-\r\n\r\n", 400},
		{"background with time seek", "GET / HTTP/1.1\r\n" +
			"transferMode.dlna.org: Background\r\nTimeSeekRange.dlna.org: npt=0-\r\n\r\n", 400},
		{"truncated", "GET / HTTP/1.1\r\nHost: x\r\n", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, status := parse(t, tt.raw)
			assert.Equal(t, tt.want, status)
			assert.Nil(t, req)
		})
	}
}

func TestReadRequestStreamingWithTimeSeek(t *testing.T) {
	_, status := parse(t, "GET / HTTP/1.1\r\n"+
		"transferMode.dlna.org: Streaming\r\nTimeSeekRange.dlna.org: npt=0-\r\n\r\n")
	assert.Zero(t, status)
}

func TestReadRequestHeaderCap(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-Padding: " + strings.Repeat("a", maxHeaderBytes) + "\r\n\r\n"
	_, status := parse(t, raw)
	assert.Equal(t, 400, status)
}

func TestReadRequestUnknownHeadersIgnored(t *testing.T) {
	_, status := parse(t, "GET / HTTP/1.1\r\n"+
		"X-Whatever: yes\r\n"+
		"PlaySpeed.dlna.org: speed=2\r\n"+
		"\r\n")
	assert.Zero(t, status)
}

func TestReadRequestContentLengthBody(t *testing.T) {
	req, status := parse(t, "POST /cds/control/ContentDirectory1 HTTP/1.1\r\n"+
		"SOAPACTION: \"urn:schemas-upnp-org:service:ContentDirectory:1#Browse\"\r\n"+
		"Content-Length: 11\r\n"+
		"\r\n"+
		"hello world")
	require.Zero(t, status)
	assert.Equal(t, "urn:schemas-upnp-org:service:ContentDirectory:1#Browse", req.SOAPAction)
	assert.Equal(t, "hello world", string(req.Body))
}

func TestReadRequestChunkedBody(t *testing.T) {
	req, status := parse(t, "POST /cds/control/ContentDirectory1 HTTP/1.1\r\n"+
		"Transfer-Encoding: chunked\r\n"+
		"Content-Length: 999\r\n"+
		"\r\n"+
		"5\r\nhello\r\n"+
		"6\r\n world\r\n"+
		"0\r\n\r\n")
	require.Zero(t, status)
	assert.True(t, req.Chunked)
	// Content-Length loses against chunked framing.
	assert.Equal(t, int64(0), req.ContentLength)
	assert.Equal(t, "hello world", string(req.Body))
}

func TestReadRequestBadChunk(t *testing.T) {
	_, status := parse(t, "POST / HTTP/1.1\r\n"+
		"Transfer-Encoding: chunked\r\n"+
		"\r\n"+
		"zz\r\n")
	assert.Equal(t, 400, status)
}
