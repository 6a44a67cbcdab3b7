// SPDX-License-Identifier: MIT

package httpd

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const serverToken = "YADA-HTTP/1.0"

// Responses carry HTTP/1.1 regardless of the client's version, and
// every connection closes after one exchange.
var reasonPhrases = map[int]string{
	200: "OK",
	206: "Partial Content",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Invalid Arguments",
	404: "Not Found",
	416: "Requested Range Not Satisfiable",
	500: "Internal Server Error",
	501: "Not Implemented",
}

func httpDate(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
}

// writeResponse emits status line and headers, then the body unless
// headOnly. bodyLen stands in for len(body) when the body is streamed
// separately by the caller.
func writeResponse(w io.Writer, status int, contentType string, body []byte, bodyLen int64, extra []string, headOnly bool) error {
	reason, ok := reasonPhrases[status]
	if !ok {
		reason = "Unknown"
	}
	if body != nil {
		bodyLen = int64(len(body))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, reason)
	b.WriteString("Connection: close\r\n")
	fmt.Fprintf(&b, "Content-Length: %d\r\n", bodyLen)
	if contentType != "" {
		fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	}
	fmt.Fprintf(&b, "Date: %s\r\n", httpDate(time.Now()))
	b.WriteString("EXT: \r\n")
	fmt.Fprintf(&b, "Server: %s\r\n", serverToken)
	for _, h := range extra {
		b.WriteString(h)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if headOnly || len(body) == 0 {
		return nil
	}
	_, err := w.Write(body)
	return err
}

// writeError emits an empty-body error response.
func writeError(w io.Writer, status int) error {
	return writeResponse(w, status, "", nil, 0, nil, false)
}
