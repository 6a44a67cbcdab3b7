// SPDX-License-Identifier: MIT

// Package scan walks the configured shares into the content tree and
// keeps it fresh when the filesystem changes underneath.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/yadaserver/yada/internal/cds"
	"github.com/yadaserver/yada/internal/config"
	"github.com/yadaserver/yada/internal/log"
	"github.com/yadaserver/yada/internal/media"
	"github.com/yadaserver/yada/internal/metrics"
)

// debounceDelay coalesces filesystem event storms into one rescan.
const debounceDelay = 2 * time.Second

// watchTree registers root and every directory below it. Registration
// failures degrade to a warning; events from the rest of the tree
// still trigger rescans.
func (s *Scanner) watchTree(watcher *fsnotify.Watcher, root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			s.logger.Warn().Str("path", path).Err(err).Msg("watch registration failed")
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Str("path", root).Err(err).Msg("watch registration walk failed")
	}
}

// Scanner ingests shares and schedules rescans on filesystem events.
type Scanner struct {
	cfg    *config.Config
	tree   *cds.Service
	prober media.Prober
	logger zerolog.Logger

	// mu serializes full scans and guards watcher: the SIGHUP handler
	// and the debounce timer may request a rescan at the same time.
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// New builds a scanner feeding tree through prober.
func New(cfg *config.Config, tree *cds.Service, prober media.Prober) *Scanner {
	return &Scanner{
		cfg:      cfg,
		tree:     tree,
		prober:   prober,
		logger:   log.WithComponent("scan"),
		debounce: debounceDelay,
	}
}

// Scan rebuilds the tree from the configured shares. Identities are
// derived from absolute paths, so a rescan reproduces the same ids.
// Concurrent calls run one at a time.
func (s *Scanner) Scan(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.tree.Reset()

	shares, err := s.cfg.AbsShares()
	if err != nil {
		return err
	}

	items := 0
	for _, share := range shares {
		n, err := s.scanShare(ctx, share)
		if err != nil {
			return fmt.Errorf("scan share %s: %w", share, err)
		}
		items += n
	}

	metrics.ObserveScan(items, time.Since(start))
	s.logger.Info().
		Str("event", "scan.completed").
		Int("items", items).
		Int("shares", len(shares)).
		Dur("elapsed", time.Since(start)).
		Msg("share scan completed")
	return nil
}

// scanShare walks one share. Directories become folders keyed by
// their physical path; files the prober rejects are skipped.
func (s *Scanner) scanShare(ctx context.Context, share string) (int, error) {
	folders := make(map[string]string)
	items := 0

	err := filepath.WalkDir(share, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn().Str("path", path).Err(err).Msg("walk error, subtree skipped")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			parentID := cds.RootID
			if path != share {
				parentID = folders[filepath.Dir(path)]
			}
			id, err := s.tree.AddFolder(path, d.Name(), parentID)
			if err != nil {
				return fmt.Errorf("add folder %s: %w", path, err)
			}
			folders[path] = id
			if s.watcher != nil {
				if err := s.watcher.Add(path); err != nil {
					s.logger.Warn().Str("path", path).Err(err).Msg("watch registration failed")
				}
			}
			return nil
		}

		res, err := s.prober.Probe(ctx, path)
		if err != nil {
			if errors.Is(err, media.ErrUnsupported) {
				return nil
			}
			s.logger.Warn().Str("path", path).Err(err).Msg("probe failed, file skipped")
			return nil
		}
		if _, err := s.tree.AddItem(res, folders[filepath.Dir(path)]); err != nil {
			return fmt.Errorf("add item %s: %w", path, err)
		}
		items++
		return nil
	})
	return items, err
}

// Watch rescans on filesystem changes until ctx is cancelled. The
// directory tree existing at the time of the call is registered up
// front; directories discovered by later scans register as the walk
// encounters them.
func (s *Scanner) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	shares, err := s.cfg.AbsShares()
	if err != nil {
		return err
	}
	for _, share := range shares {
		s.watchTree(watcher, share)
	}

	s.logger.Debug().
		Str("event", "scan.watch_started").
		Int("shares", len(shares)).
		Msg("filesystem watch active")

	debounce := time.NewTimer(s.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.logger.Debug().
				Str("event", "scan.fs_event").
				Str("path", ev.Name).
				Str("op", ev.Op.String()).
				Msg("filesystem change observed")
			debounce.Reset(s.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("watcher error")
		case <-debounce.C:
			if err := s.Scan(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("rescan failed")
			}
		}
	}
}
