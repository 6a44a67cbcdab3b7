// SPDX-License-Identifier: MIT

package seekrange

import (
	"fmt"
	"strings"
)

// BytesRangeKind tags the variant held by a BytesRange value.
type BytesRangeKind uint8

const (
	BytesRangeInvalid BytesRangeKind = iota
	BytesRangeOpen                   // "bytes=N-"
	BytesRangeClosed                 // "bytes=N-M"
)

// BytesRange is a parsed HTTP Range header value. The grammar does not
// judge the range against any entity: "bytes=1-0" parses as closed and
// the file server decides whether it is satisfiable.
type BytesRange struct {
	Kind  BytesRangeKind
	First uint64
	Last  uint64
}

// ParseBytesRange parses a Range header value. The "bytes=" prefix is
// case sensitive.
func ParseBytesRange(s string) BytesRange {
	if !strings.HasPrefix(s, "bytes=") {
		return BytesRange{Kind: BytesRangeInvalid}
	}
	first, i, ok := scanUint(s, 6)
	if !ok || i >= len(s) || s[i] != '-' {
		return BytesRange{Kind: BytesRangeInvalid}
	}
	if last, _, ok := scanUint(s, i+1); ok {
		return BytesRange{Kind: BytesRangeClosed, First: first, Last: last}
	}
	return BytesRange{Kind: BytesRangeOpen, First: first}
}

// FormatBytesRange emits the canonical text for a BytesRange. The
// second return is false for the invalid kind.
func FormatBytesRange(br BytesRange) (string, bool) {
	switch br.Kind {
	case BytesRangeOpen:
		return fmt.Sprintf("bytes=%d-", br.First), true
	case BytesRangeClosed:
		return fmt.Sprintf("bytes=%d-%d", br.First, br.Last), true
	default:
		return "", false
	}
}
