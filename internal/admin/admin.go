// SPDX-License-Identifier: MIT

// Package admin serves operational endpoints on a separate port so
// they never collide with the DLNA wire protocol.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yadaserver/yada/internal/log"
)

// Server exposes /metrics and /healthz.
type Server struct {
	srv *http.Server
}

// New builds the admin server listening on ip:port.
func New(ip net.IP, port int) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(ip.String(), strconv.Itoa(port)),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	logger := log.WithComponent("admin")
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info().Str("event", "admin.started").Str("addr", s.srv.Addr).Msg("admin endpoint up")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("admin server: %w", err)
	}
}
