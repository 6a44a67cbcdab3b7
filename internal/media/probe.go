// SPDX-License-Identifier: MIT

package media

import (
	"context"
	"fmt"
	"os"
)

// ErrUnsupported marks files no profile claims.
var ErrUnsupported = fmt.Errorf("media: unsupported format")

// StatProber is the fallback Prober: format detection by extension,
// size from the filesystem, no stream inspection. A codec-aware prober
// can be swapped in through the Prober interface without touching the
// directory.
type StatProber struct{}

// Probe implements Prober.
func (StatProber) Probe(_ context.Context, path string) (*Resource, error) {
	p, ok := ProfileForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("media: stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("media: probe %s: is a directory", path)
	}
	return &Resource{
		Path:    path,
		Size:    fi.Size(),
		Profile: p.Name,
		Kind:    p.Kind,
	}, nil
}
