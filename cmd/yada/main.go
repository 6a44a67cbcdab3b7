// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yadaserver/yada/internal/config"
	"github.com/yadaserver/yada/internal/daemon"
	yadalog "github.com/yadaserver/yada/internal/log"
	"github.com/yadaserver/yada/internal/version"
)

// Process exit codes mirror the library return codes.
const (
	exitOK    = 0
	exitInit  = 1
	exitShare = 4
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("yada %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(exitOK)
	}

	os.Exit(run(*configPath))
}

func run(configPath string) int {
	// Safe logging defaults until the config is loaded.
	yadalog.Configure(yadalog.Config{Level: "info", Service: "yada"})
	logger := yadalog.WithComponent("main")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("configuration rejected")
		return exitInit
	}
	yadalog.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := daemon.New(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("initialization failed")
		return exitInit
	}

	logger.Info().
		Str("version", version.Version).
		Int("port", app.Port()).
		Msg("yada media server starting")

	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server failed")
		return exitShare
	}
	return exitOK
}
