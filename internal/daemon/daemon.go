// SPDX-License-Identifier: MIT

// Package daemon wires the subsystems together and owns their
// lifecycle: scan, serve, advertise, shut down in order.
package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yadaserver/yada/internal/admin"
	"github.com/yadaserver/yada/internal/cds"
	"github.com/yadaserver/yada/internal/config"
	"github.com/yadaserver/yada/internal/device"
	"github.com/yadaserver/yada/internal/hash"
	"github.com/yadaserver/yada/internal/httpd"
	"github.com/yadaserver/yada/internal/log"
	"github.com/yadaserver/yada/internal/media"
	"github.com/yadaserver/yada/internal/scan"
	"github.com/yadaserver/yada/internal/ssdp"
)

// App owns the long-lived subsystems of one server instance.
type App struct {
	cfg    *config.Config
	logger zerolog.Logger

	tree    *cds.Service
	httpd   *httpd.Server
	ssdp    *ssdp.Engine
	scanner *scan.Scanner
	admin   *admin.Server
}

// New resolves the network identity, binds the listeners and prepares
// every subsystem. Nothing serves traffic until Run.
func New(cfg *config.Config) (*App, error) {
	logger := log.WithComponent("daemon")

	if err := cfg.EnsureUUID(); err != nil {
		return nil, err
	}
	ip, err := cfg.ResolveIP()
	if err != nil {
		return nil, err
	}

	tree := cds.New(hash.MD5{}, log.WithComponent("cds"))
	tree.SamsungExtensions = cfg.SamsungEnabled()

	desc := device.Description{
		FriendlyName:      cfg.AnnounceAs,
		UUID:              cfg.UUID,
		SamsungExtensions: cfg.SamsungEnabled(),
	}
	if err := desc.WriteIfAbsent(cfg.DocRootPath, logger); err != nil {
		return nil, err
	}

	app := &App{
		cfg:     cfg,
		logger:  logger,
		tree:    tree,
		httpd:   httpd.New(cfg, tree, desc),
		scanner: scan.New(cfg, tree, media.StatProber{}),
	}

	// The HTTP port must be known before SSDP can advertise it.
	if err := app.httpd.Start(ip); err != nil {
		return nil, err
	}
	app.ssdp = ssdp.New(cfg, ip, app.httpd.Port())
	if err := app.ssdp.Start(); err != nil {
		return nil, err
	}

	if cfg.AdminPort > 0 {
		app.admin = admin.New(ip, cfg.AdminPort)
	}

	logger.Info().
		Str("event", "daemon.ready").
		Str("uuid", cfg.UUID).
		Str("ip", app.httpd.Host()).
		Int("port", app.httpd.Port()).
		Msg("server initialized")
	return app, nil
}

// Port returns the bound HTTP port.
func (a *App) Port() int { return a.httpd.Port() }

// Run scans the shares, then serves until ctx is cancelled. SIGHUP
// triggers a rescan without interrupting service.
func (a *App) Run(ctx context.Context) error {
	if err := a.scanner.Scan(ctx); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.httpd.Run(ctx) })
	g.Go(func() error { return a.ssdp.Run(ctx) })
	g.Go(func() error { return a.scanner.Watch(ctx) })
	if a.admin != nil {
		g.Go(func() error { return a.admin.Run(ctx) })
	}
	g.Go(func() error { return a.handleSignals(ctx) })

	err := g.Wait()
	a.logger.Info().Str("event", "daemon.stopped").Msg("server stopped")
	return err
}

func (a *App) handleSignals(ctx context.Context) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			a.logger.Info().Str("event", "daemon.rescan_requested").Msg("sighup received")
			if err := a.scanner.Scan(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error().Err(err).Msg("rescan failed")
			}
		}
	}
}

// resolveHost exists for tests that need the advertised address.
func (a *App) resolveHost() net.IP {
	return net.ParseIP(a.httpd.Host())
}
