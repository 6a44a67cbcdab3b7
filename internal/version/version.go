// SPDX-License-Identifier: MIT

// Package version carries build identification stamped via ldflags.
package version

var (
	// Version is the current application version.
	Version = "1.0.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)
