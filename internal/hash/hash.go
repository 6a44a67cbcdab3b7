// SPDX-License-Identifier: MIT

// Package hash assigns content identities. Every tree object is named
// by a 32 hex character digest so control points can hold references
// across restarts.
package hash

import (
	"crypto/md5"
	"encoding/hex"
)

// Provider yields a stable 32 hex digit identity for a string.
type Provider interface {
	Sum(s string) string
}

// MD5 is the default Provider. The digest is used as a name, not as a
// security boundary.
type MD5 struct{}

// Sum returns the lowercase hex MD5 digest of s.
func (MD5) Sum(s string) string {
	d := md5.Sum([]byte(s))
	return hex.EncodeToString(d[:])
}
