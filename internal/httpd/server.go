// SPDX-License-Identifier: MIT

// Package httpd implements the DLNA HTTP server. The wire protocol is
// handled directly on TCP connections: DLNA forbids persistent
// connections and prescribes header semantics down to individual
// status codes, so requests are parsed and answered byte by byte.
package httpd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yadaserver/yada/internal/cds"
	"github.com/yadaserver/yada/internal/cms"
	"github.com/yadaserver/yada/internal/config"
	"github.com/yadaserver/yada/internal/device"
	"github.com/yadaserver/yada/internal/log"
	"github.com/yadaserver/yada/internal/media"
	"github.com/yadaserver/yada/internal/metrics"
	"github.com/yadaserver/yada/internal/seekrange"
	"github.com/yadaserver/yada/internal/upnp"
)

const xmlContentType = `text/xml; charset="utf-8"`

// Server serves UPnP control, service descriptions and media bytes.
type Server struct {
	cfg         *config.Config
	tree        *cds.Service
	description string
	logger      zerolog.Logger

	ln   net.Listener
	host string
	port int
}

// New builds a server around the content tree. Start must be called
// before Run.
func New(cfg *config.Config, tree *cds.Service, desc device.Description) *Server {
	return &Server{
		cfg:         cfg,
		tree:        tree,
		description: desc.Render(),
		logger:      log.WithComponent("httpd"),
	}
}

// Start binds the listener on ip and the configured port. Port 0 lets
// the OS choose; the effective port is published to the content tree
// so resource URLs resolve back here.
func (s *Server) Start(ip net.IP) error {
	ln, err := net.Listen("tcp4", net.JoinHostPort(ip.String(), strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return fmt.Errorf("bind http listener: %w", err)
	}
	s.ln = ln
	s.host = ip.String()
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.tree.SetBaseURL(s.host, s.port)

	s.logger.Info().
		Str("event", "httpd.started").
		Str("ip", s.host).
		Int("port", s.port).
		Msg("http listener bound")
	return nil
}

// Port returns the bound port. Valid after Start.
func (s *Server) Port() int { return s.port }

// Host returns the bound interface address. Valid after Start.
func (s *Server) Host() string { return s.host }

// Run accepts connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

// handleConn serves exactly one request and closes.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	start := time.Now()

	if tcp, ok := conn.RemoteAddr().(*net.TCPAddr); ok && !s.cfg.IPAllowed(tcp.IP) {
		writeError(conn, 401)
		metrics.IncHTTPRequest("", 401)
		return
	}

	req, status := readRequest(bufio.NewReader(conn))
	if status != 0 {
		s.logger.Warn().
			Str("event", "httpd.parse_failed").
			Int("status", status).
			Str("remote", conn.RemoteAddr().String()).
			Msg("request rejected")
		writeError(conn, status)
		metrics.IncHTTPRequest("", status)
		return
	}

	status = s.dispatch(conn, req)
	metrics.IncHTTPRequest(req.Method, status)
	metrics.HTTPRequestDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug().
		Str("event", "httpd.request").
		Str("method", req.Method).
		Str("uri", req.URI).
		Int("status", status).
		Str("agent", req.UserAgent).
		Msg("request served")
}

// dispatch routes a parsed request and returns the status written.
func (s *Server) dispatch(conn net.Conn, req *Request) int {
	head := req.Method == "HEAD"

	switch req.URI {
	case cds.ControlPath:
		return s.serveControl(conn, req, func() (string, *upnp.Error) {
			return s.tree.Handle(req.SOAPAction, req.Body)
		})
	case cms.ControlPath:
		return s.serveControl(conn, req, func() (string, *upnp.Error) {
			return cms.Handle(req.SOAPAction)
		})
	case cds.EventPath, cms.EventPath:
		writeError(conn, 501)
		return 501
	case cds.SCPDPath:
		return s.serveDocument(conn, cds.SCPD, head)
	case cms.SCPDPath:
		return s.serveDocument(conn, cms.SCPD, head)
	case device.DescriptionPath:
		return s.serveDocument(conn, s.description, head)
	}

	if req.Method == "POST" {
		writeError(conn, 404)
		return 404
	}
	return s.serveFile(conn, req)
}

func (s *Server) serveControl(conn net.Conn, req *Request, handle func() (string, *upnp.Error)) int {
	if req.Method != "POST" {
		writeError(conn, 404)
		return 404
	}
	body, uerr := handle()
	if uerr != nil {
		metrics.IncBrowseAction("fault")
		writeResponse(conn, 500, xmlContentType, []byte(upnp.FaultEnvelope(uerr)), 0, nil, false)
		return 500
	}
	metrics.IncBrowseAction("ok")
	writeResponse(conn, 200, xmlContentType, []byte(body), 0, nil, false)
	return 200
}

func (s *Server) serveDocument(conn net.Conn, doc string, head bool) int {
	writeResponse(conn, 200, xmlContentType, []byte(doc), 0, nil, head)
	return 200
}

// serveFile resolves the URI to a media item or a document-root file
// and streams it honoring Range and TimeSeekRange.
func (s *Server) serveFile(conn net.Conn, req *Request) int {
	path, res := s.resolvePath(req.URI)

	f, err := os.Open(path)
	if err != nil {
		writeError(conn, 404)
		return 404
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(conn, 404)
		return 404
	}
	size := info.Size()

	first, last, seekHeader, ok := s.requestedRange(req, res, size)
	if !ok {
		writeError(conn, 416)
		return 416
	}

	status := 200
	var extra []string
	if req.HasRange || req.HasTimeSeek {
		status = 206
		extra = append(extra, fmt.Sprintf("Content-Range: bytes %d-%d/%d", first, last, size))
	}
	if seekHeader != "" {
		extra = append(extra, "TimeSeekRange.dlna.org: "+seekHeader)
	}
	if req.TransferMode != "" {
		extra = append(extra, "transferMode.dlna.org: "+req.TransferMode)
	}
	if req.GetContentFeatures {
		extra = append(extra, "contentFeatures.dlna.org: "+contentFeatures(res))
	}

	length := last - first + 1
	head := req.Method == "HEAD"
	if err := writeResponse(conn, status, contentType(path, res), nil, length, extra, head); err != nil {
		return status
	}
	if head {
		return status
	}

	if _, err := f.Seek(first, io.SeekStart); err != nil {
		return status
	}
	if _, err := io.CopyN(conn, f, length); err != nil {
		s.logger.Debug().
			Str("event", "httpd.stream_aborted").
			Str("path", path).
			Err(err).
			Msg("client closed mid-transfer")
	}
	return status
}

// resolvePath maps "/<id>.<ext>" to a content tree item, anything
// else to the document root.
func (s *Server) resolvePath(uri string) (string, *media.Resource) {
	trimmed := strings.TrimPrefix(uri, "/")
	if id, _, ok := strings.Cut(trimmed, "."); ok {
		if res, found := s.tree.ResourceByID(id); found {
			return res.Path, res
		}
	}
	// Clean against "/" first so ".." cannot escape the root.
	return filepath.Join(s.cfg.DocRootPath, filepath.Clean("/"+uri)), nil
}

// requestedRange computes the byte window to serve. Range wins over
// TimeSeekRange when both appear. The bool result is false when the
// window cannot be satisfied.
func (s *Server) requestedRange(req *Request, res *media.Resource, size int64) (first, last int64, seekHeader string, ok bool) {
	// last may come out as -1 for an empty file, yielding length 0.
	last = size - 1

	switch {
	case req.HasRange:
		first = int64(req.Range.First)
		if first >= size {
			return 0, 0, "", false
		}
		if req.Range.Kind == seekrange.BytesRangeClosed && int64(req.Range.Last) < last {
			last = int64(req.Range.Last)
		}
		if last < first {
			return 0, 0, "", false
		}
		return first, last, "", true

	case req.HasTimeSeek:
		if res == nil || res.Duration <= 0 {
			return 0, 0, "", false
		}
		startDur, valid := req.TimeSeek.Start.Duration()
		if !valid {
			return 0, 0, "", false
		}
		first = positionToOffset(startDur, res.Duration, size)
		if first >= size {
			return 0, 0, "", false
		}
		if endDur, hasEnd := req.TimeSeek.End.Duration(); hasEnd {
			if end := positionToOffset(endDur, res.Duration, size); end > first && end <= size {
				last = end - 1
			}
		}
		return first, last, timeSeekHeader(req.TimeSeek, first, last, size), true
	}

	return 0, last, "", true
}

// positionToOffset maps a playback position to a byte offset assuming
// a constant overall bitrate.
func positionToOffset(pos, total time.Duration, size int64) int64 {
	if pos >= total {
		return size
	}
	return int64(float64(size) * (float64(pos) / float64(total)))
}

// timeSeekHeader echoes the request's npt window with the byte window
// actually served, per DLNA 7.4.40.
func timeSeekHeader(ts seekrange.TimeSeek, first, last, size int64) string {
	withBytes := ts
	withBytes.RangeStart = uint64(first)
	withBytes.RangeEnd = uint64(last)
	withBytes.Length = uint64(size)
	withBytes.LengthUnknown = false

	switch ts.Kind {
	case seekrange.TimeSeekNPT:
		withBytes.Kind = seekrange.TimeSeekNPTBytes
	case seekrange.TimeSeekNPTDuration:
		withBytes.Kind = seekrange.TimeSeekNPTDurationBytes
	case seekrange.TimeSeekNPTNPT:
		withBytes.Kind = seekrange.TimeSeekNPTNPTBytes
	case seekrange.TimeSeekNPTNPTDuration:
		withBytes.Kind = seekrange.TimeSeekNPTNPTDurationBytes
	}

	out, ok := seekrange.FormatTimeSeek(withBytes)
	if !ok {
		return ""
	}
	return out
}

func contentType(path string, res *media.Resource) string {
	if res != nil {
		if p, ok := media.ProfileByName(res.Profile); ok {
			return p.MIME
		}
	}
	if p, ok := media.ProfileForPath(path); ok {
		return p.MIME
	}
	if strings.HasSuffix(path, ".xml") {
		return xmlContentType
	}
	return "application/octet-stream"
}

func contentFeatures(res *media.Resource) string {
	profile := ""
	if res != nil && res.Profile != "" {
		profile = "DLNA.ORG_PN=" + res.Profile + ";"
	}
	return profile + "DLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=01500000000000000000000000000000"
}
