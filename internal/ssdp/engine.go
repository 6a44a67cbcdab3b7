// SPDX-License-Identifier: MIT

// Package ssdp implements UPnP discovery: multicast alive and byebye
// advertisements plus unicast answers to M-SEARCH queries.
package ssdp

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/ipv4"
	"golang.org/x/time/rate"

	"github.com/yadaserver/yada/internal/config"
	"github.com/yadaserver/yada/internal/log"
	"github.com/yadaserver/yada/internal/metrics"
)

// Engine owns the multicast listener and the periodic advertiser.
type Engine struct {
	cfg    *config.Config
	ep     endpoint
	ip     net.IP
	logger zerolog.Logger

	conn net.PacketConn
	pc   *ipv4.PacketConn
	mif  *net.Interface

	// sendMu serializes all outbound datagrams: the advertiser and
	// the listener share the send path.
	sendMu  sync.Mutex
	limiter *rate.Limiter
}

// New builds an engine advertising the HTTP endpoint at ip:httpPort.
func New(cfg *config.Config, ip net.IP, httpPort int) *Engine {
	return &Engine{
		cfg:    cfg,
		ip:     ip,
		ep:     endpoint{IP: ip.String(), Port: httpPort, UUID: cfg.UUID},
		logger: log.WithComponent("ssdp"),
		// M-SEARCH replies are capped to keep a misbehaving control
		// point from turning discovery into a traffic amplifier.
		limiter: rate.NewLimiter(rate.Limit(50), 100),
	}
}

// Start binds UDP 1900 and joins the multicast group on the interface
// that carries the configured address.
func (e *Engine) Start() error {
	mif, err := interfaceFor(e.ip)
	if err != nil {
		return err
	}
	e.mif = mif

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var serr error
			cerr := c.Control(func(fd uintptr) {
				serr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
			})
			if cerr != nil {
				return cerr
			}
			return serr
		},
	}
	conn, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", ssdpPort))
	if err != nil {
		return fmt.Errorf("bind ssdp listener: %w", err)
	}
	e.conn = conn
	e.pc = ipv4.NewPacketConn(conn)

	group := &net.UDPAddr{IP: net.ParseIP(multicastAddr)}
	if err := e.pc.JoinGroup(mif, group); err != nil {
		conn.Close()
		return fmt.Errorf("join %s: %w", multicastAddr, err)
	}
	if err := e.pc.SetMulticastInterface(mif); err != nil {
		conn.Close()
		return fmt.Errorf("set multicast interface: %w", err)
	}
	if err := e.pc.SetMulticastTTL(1); err != nil {
		conn.Close()
		return fmt.Errorf("set multicast ttl: %w", err)
	}

	e.logger.Info().
		Str("event", "ssdp.started").
		Str("interface", mif.Name).
		Str("location", e.ep.location()).
		Msg("ssdp engine bound")
	return nil
}

func interfaceFor(ip net.IP) (*net.Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if n, ok := a.(*net.IPNet); ok && n.IP.Equal(ip) {
				return &ifaces[i], nil
			}
		}
	}
	return nil, fmt.Errorf("no interface carries %s", ip)
}

// Run drives the state machine until ctx is cancelled: startup byebye,
// then the advertiser and the listener in parallel. Shutdown stops the
// advertiser first, then the listener, then sends the final byebye.
func (e *Engine) Run(ctx context.Context) error {
	e.sendByebyeBurst()

	stopAdv := make(chan struct{})
	advDone := make(chan struct{})
	go func() {
		defer close(advDone)
		e.advertise(stopAdv)
	}()

	listenDone := make(chan struct{})
	go func() {
		defer close(listenDone)
		e.listen()
	}()

	<-ctx.Done()

	close(stopAdv)
	<-advDone
	e.conn.Close()
	<-listenDone
	e.sendByebyeBurst()
	return nil
}

// advertise emits a doubled alive burst after a uniform random sleep
// in [10s, maxAge/2] each cycle, UPnP's advertisement cadence.
func (e *Engine) advertise(stop <-chan struct{}) {
	for {
		delay := 10*time.Second + time.Duration(rand.Int63n(int64(maxAge/2-10)))*time.Second
		select {
		case <-stop:
			return
		case <-time.After(delay):
		}
		e.sendAliveBurst()
	}
}

// sendAliveBurst sends two back-to-back copies of the alive set so a
// single multicast loss does not hide the device.
func (e *Engine) sendAliveBurst() {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()
	for i := 0; i < 2; i++ {
		for _, msg := range e.ep.aliveSet() {
			e.sendMulticast(msg)
			metrics.IncSSDPMessage("alive", "out")
		}
	}
	e.logger.Debug().Str("event", "ssdp.alive_burst").Msg("alive burst sent")
}

func (e *Engine) sendByebyeBurst() {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()
	for _, msg := range e.ep.byebyeSet() {
		e.sendMulticast(msg)
		metrics.IncSSDPMessage("byebye", "out")
	}
	e.logger.Debug().Str("event", "ssdp.byebye_burst").Msg("byebye burst sent")
}

// sendMulticast writes one datagram to the group through a short-lived
// client socket with TTL 2.
func (e *Engine) sendMulticast(msg string) {
	conn, err := net.ListenPacket("udp4", net.JoinHostPort(e.ep.IP, "0"))
	if err != nil {
		e.logger.Warn().Err(err).Msg("multicast send socket failed")
		return
	}
	defer conn.Close()

	pc := ipv4.NewPacketConn(conn)
	if e.mif != nil {
		_ = pc.SetMulticastInterface(e.mif)
	}
	_ = pc.SetMulticastTTL(2)

	dst := &net.UDPAddr{IP: net.ParseIP(multicastAddr), Port: ssdpPort}
	if _, err := conn.WriteTo([]byte(msg), dst); err != nil {
		e.logger.Warn().Err(err).Msg("multicast send failed")
	}
}

// listen answers datagrams until the socket is closed.
func (e *Engine) listen() {
	buf := make([]byte, 2048)
	for {
		n, _, src, err := e.pc.ReadFrom(buf)
		if err != nil {
			return
		}
		udp, ok := src.(*net.UDPAddr)
		if !ok {
			continue
		}
		e.handleDatagram(buf[:n], udp, func(msg string) {
			e.sendMu.Lock()
			defer e.sendMu.Unlock()
			if _, err := e.conn.WriteTo([]byte(msg), udp); err != nil {
				e.logger.Debug().Err(err).Msg("search reply failed")
			}
		})
	}
}

// handleDatagram classifies one received datagram and replies through
// send. Anything that does not parse is dropped rather than answered.
func (e *Engine) handleDatagram(data []byte, src *net.UDPAddr, send func(string)) {
	if !e.cfg.IPAllowed(src.IP) {
		return
	}

	switch {
	case len(data) >= 8 && string(data[:8]) == "M-SEARCH":
		metrics.IncSSDPMessage("msearch", "in")
		if !e.limiter.Allow() {
			e.logger.Debug().Str("event", "ssdp.search_throttled").Msg("m-search dropped by rate limit")
			return
		}
		st, ok := parseSearch(data)
		if !ok {
			return
		}
		for _, target := range searchTargets(st) {
			send(e.ep.searchReply(target))
			metrics.IncSSDPMessage("search_reply", "out")
		}
		e.logger.Debug().
			Str("event", "ssdp.search_answered").
			Str("st", st).
			Str("peer", src.String()).
			Msg("m-search answered")

	case len(data) >= 6 && string(data[:6]) == "NOTIFY":
		metrics.IncSSDPMessage("notify", "in")
		e.logger.Trace().
			Str("event", "ssdp.notify_ignored").
			Str("peer", src.String()).
			Msg("peer notify ignored")
	}
}

// parseSearch validates an M-SEARCH datagram and extracts its ST
// value. MAN must quote ssdp:discover.
func parseSearch(data []byte) (string, bool) {
	st := ""
	man := false
	for _, line := range strings.Split(string(data), "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "man":
			man = value == `"ssdp:discover"`
		case "st":
			st = value
		}
	}
	if !man || st == "" {
		return "", false
	}
	return st, true
}
