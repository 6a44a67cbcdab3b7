// SPDX-License-Identifier: MIT

package httpd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yadaserver/yada/internal/seekrange"
)

// maxHeaderBytes bounds the full header block, DLNA 7.4.47.1.
const maxHeaderBytes = 8192

// Request is one parsed HTTP request with its DLNA headers.
type Request struct {
	Method  string
	URI     string
	Version string

	UserAgent  string
	SOAPAction string

	ContentLength int64
	Chunked       bool

	TransferMode       string
	FriendlyName       string
	GetContentFeatures bool
	GetMediaInfo       bool
	GetCaptionInfo     bool

	HasTimeSeek bool
	TimeSeek    seekrange.TimeSeek

	HasRange bool
	Range    seekrange.BytesRange

	Body []byte
}

// headerHandlers is the reducer table keyed by lowercased header name.
// A handler returns the HTTP status to fail the request with, or 0.
var headerHandlers = map[string]func(*Request, string) int{
	"user-agent": func(r *Request, v string) int {
		r.UserAgent = v
		return 0
	},
	"content-length": func(r *Request, v string) int {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 400
		}
		r.ContentLength = n
		return 0
	},
	"transfer-encoding": func(r *Request, v string) int {
		if strings.Contains(strings.ToLower(v), "chunked") {
			r.Chunked = true
		}
		return 0
	},
	"soapaction": func(r *Request, v string) int {
		r.SOAPAction = strings.Trim(v, `"`)
		return 0
	},
	"getcontentfeatures.dlna.org": func(r *Request, v string) int {
		if v != "1" {
			return 400
		}
		r.GetContentFeatures = true
		return 0
	},
	"timeseekrange.dlna.org": func(r *Request, v string) int {
		ts := seekrange.ParseTimeSeek(v)
		if ts.Kind == seekrange.TimeSeekInvalid {
			return 416
		}
		r.HasTimeSeek = true
		r.TimeSeek = ts
		return 0
	},
	"range": func(r *Request, v string) int {
		br := seekrange.ParseBytesRange(v)
		if br.Kind == seekrange.BytesRangeInvalid {
			return 416
		}
		r.HasRange = true
		r.Range = br
		return 0
	},
	"friendlyname.dlna.org": func(r *Request, v string) int {
		r.FriendlyName = v
		return 0
	},
	"transfermode.dlna.org": func(r *Request, v string) int {
		switch v {
		case "Streaming", "Interactive", "Background":
			r.TransferMode = v
			return 0
		}
		return 400
	},
	"getmediainfo.sec": func(r *Request, v string) int {
		r.GetMediaInfo = true
		return 0
	},
	"getcaptioninfo.sec": func(r *Request, v string) int {
		r.GetCaptionInfo = true
		return 0
	},
}

// readRequest parses one request from br. On protocol errors it
// returns a nil request and the HTTP status to respond with.
func readRequest(br *bufio.Reader) (*Request, int) {
	req := &Request{}
	total := 0

	line, err := readHeaderLine(br, &total)
	if err != nil {
		return nil, 400
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return nil, 400
	}
	req.Method, req.URI, req.Version = fields[0], fields[1], fields[2]
	switch req.Method {
	case "GET", "HEAD", "POST":
	default:
		return nil, 501
	}
	if !strings.HasPrefix(req.Version, "HTTP/1.") {
		return nil, 400
	}

	for {
		line, err := readHeaderLine(br, &total)
		if err != nil {
			return nil, 400
		}
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		handler, known := headerHandlers[strings.ToLower(name)]
		if !known {
			// Unknown headers are tolerated, DLNA 7.4.21.1.
			continue
		}
		if status := handler(req, strings.TrimSpace(value)); status != 0 {
			return nil, status
		}
	}

	// Content-Length loses against chunked framing.
	if req.Chunked {
		req.ContentLength = 0
	}

	// A seek by time contradicts non-streaming transfer modes,
	// DLNA 7.4.75.2 and 7.4.78.2.
	if req.HasTimeSeek && (req.TransferMode == "Interactive" || req.TransferMode == "Background") {
		return nil, 400
	}

	if err := readBody(br, req); err != nil {
		return nil, 400
	}
	return req, 0
}

// readHeaderLine reads one CRLF-terminated line, charging its size
// against the header budget.
func readHeaderLine(br *bufio.Reader, total *int) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	*total += len(line)
	if *total > maxHeaderBytes {
		return "", fmt.Errorf("header block exceeds %d bytes", maxHeaderBytes)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readBody(br *bufio.Reader, req *Request) error {
	if req.Chunked {
		body, err := readChunked(br)
		if err != nil {
			return err
		}
		req.Body = body
		return nil
	}
	if req.ContentLength > 0 {
		body := make([]byte, req.ContentLength)
		if _, err := io.ReadFull(br, body); err != nil {
			return err
		}
		req.Body = body
	}
	return nil
}

// readChunked decodes a chunked transfer encoding body. Chunk
// extensions after a ';' are ignored.
func readChunked(br *bufio.Reader) ([]byte, error) {
	var body []byte
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeText := strings.TrimRight(line, "\r\n")
		if i := strings.IndexByte(sizeText, ';'); i >= 0 {
			sizeText = sizeText[:i]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeText), 16, 64)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("bad chunk size %q", sizeText)
		}
		if size == 0 {
			// Trailer section up to the final blank line.
			for {
				t, err := br.ReadString('\n')
				if err != nil {
					return nil, err
				}
				if strings.TrimRight(t, "\r\n") == "" {
					return body, nil
				}
			}
		}
		chunk := make([]byte, size)
		if _, err := io.ReadFull(br, chunk); err != nil {
			return nil, err
		}
		body = append(body, chunk...)
		if _, err := br.ReadString('\n'); err != nil {
			return nil, err
		}
	}
}
