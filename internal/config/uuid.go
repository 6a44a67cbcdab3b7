// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/yadaserver/yada/internal/log"
)

const uuidFileName = "yada.uuid"

// EnsureUUID makes sure the configuration carries a device UUID. An
// explicit value wins; otherwise the persisted one under DocRootPath
// is reused, and a fresh v4 is generated and written on first run.
func (c *Config) EnsureUUID() error {
	if c.UUID != "" {
		if _, err := uuid.Parse(c.UUID); err != nil {
			return fmt.Errorf("configured uuid %q: %w", c.UUID, err)
		}
		return nil
	}

	logger := log.WithComponent("config")

	path := filepath.Join(c.DocRootPath, uuidFileName)
	if data, err := os.ReadFile(path); err == nil {
		s := strings.TrimSpace(string(data))
		if _, err := uuid.Parse(s); err == nil {
			c.UUID = s
			return nil
		}
		logger.Warn().
			Str("path", path).
			Msg("persisted uuid is invalid, regenerating")
	}

	id := uuid.NewString()
	if err := renameio.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return fmt.Errorf("persist uuid: %w", err)
	}
	logger.Info().
		Str("event", "config.uuid_generated").
		Str("uuid", id).
		Msg("generated device uuid")
	c.UUID = id
	return nil
}
