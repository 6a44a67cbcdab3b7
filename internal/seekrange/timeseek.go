// SPDX-License-Identifier: MIT

package seekrange

import (
	"fmt"
	"strings"
)

// TimeSeekKind tags the variant held by a TimeSeek value. The eight
// valid shapes are the combinations of an optional npt-end, an optional
// instance-duration and an optional trailing bytes block.
type TimeSeekKind uint8

const (
	TimeSeekInvalid          TimeSeekKind = iota
	TimeSeekNPT                           // npt=start-
	TimeSeekNPTDuration                   // npt=start-/dur
	TimeSeekNPTNPT                        // npt=start-end
	TimeSeekNPTNPTDuration                // npt=start-end/dur
	TimeSeekNPTBytes                      // npt=start- bytes=A-B/N
	TimeSeekNPTDurationBytes              // npt=start-/dur bytes=A-B/N
	TimeSeekNPTNPTBytes                   // npt=start-end bytes=A-B/N
	TimeSeekNPTNPTDurationBytes           // npt=start-end/dur bytes=A-B/N
)

// TimeSeek is a parsed TimeSeekRange.dlna.org header value. Length is
// the instance-length in bytes for the "bytes=A-B/N" form;
// LengthUnknown marks the "bytes=A-B/*" form. Both are meaningful for
// the *Bytes kinds only.
type TimeSeek struct {
	Kind          TimeSeekKind
	Start         NPT
	End           NPT
	Duration      NPT
	RangeStart    uint64
	RangeEnd      uint64
	Length        uint64
	LengthUnknown bool
}

func (k TimeSeekKind) hasBytes() bool {
	switch k {
	case TimeSeekNPTBytes, TimeSeekNPTDurationBytes, TimeSeekNPTNPTBytes, TimeSeekNPTNPTDurationBytes:
		return true
	}
	return false
}

// isNPTByte reports whether c can appear inside an npt-time, used to
// skip past an already parsed npt-end.
func isNPTByte(c byte) bool {
	return c == '.' || c == ':' || (c >= '0' && c <= '9')
}

// ParseTimeSeek parses a TimeSeekRange.dlna.org header value.
func ParseTimeSeek(s string) TimeSeek {
	invalid := TimeSeek{Kind: TimeSeekInvalid}

	if !strings.HasPrefix(s, "npt=") {
		return invalid
	}

	// Locate a bytes block up front: the npt-range's dash must sit
	// before it, otherwise a value like "npt=310.1 bytes=1234-5678"
	// would steal the bytes block's dash.
	bytesIdx := strings.Index(s, "bytes=")
	minusIdx := strings.IndexByte(s, '-')
	if minusIdx < 0 {
		return invalid
	}
	if bytesIdx >= 0 && minusIdx >= bytesIdx {
		return invalid
	}

	var ts TimeSeek
	ts.Start = ParseNPT(s[4:minusIdx])
	if ts.Start.Kind == NPTInvalid {
		return invalid
	}

	i := minusIdx + 1
	switch {
	case i >= len(s), s[i] == '\r', s[i] == '\n':
		if bytesIdx >= 0 {
			ts.Kind = TimeSeekNPTBytes
		} else {
			ts.Kind = TimeSeekNPT
		}

	case s[i] >= '0' && s[i] <= '9':
		ts.End = ParseNPT(s[i:])
		if ts.End.Kind == NPTInvalid {
			return invalid
		}
		if bytesIdx >= 0 {
			ts.Kind = TimeSeekNPTNPTBytes
		} else {
			ts.Kind = TimeSeekNPTNPT
		}
		for i < len(s) && isNPTByte(s[i]) {
			i++
		}
		switch {
		case i < len(s) && s[i] == '/':
			ts.Duration = ParseNPT(s[i+1:])
			if ts.Duration.Kind == NPTInvalid {
				return invalid
			}
			if bytesIdx >= 0 {
				ts.Kind = TimeSeekNPTNPTDurationBytes
			} else {
				ts.Kind = TimeSeekNPTNPTDuration
			}
		case i >= len(s) || s[i] == ' ' || s[i] == '\r' || s[i] == '\n':
			// npt-range complete.
		default:
			return invalid
		}

	case s[i] == ' ':
		// A space right after the dash demands a bytes block.
		if bytesIdx < 0 {
			return invalid
		}
		ts.Kind = TimeSeekNPTBytes

	case s[i] == '/':
		ts.Duration = ParseNPT(s[i+1:])
		if ts.Duration.Kind == NPTInvalid {
			return invalid
		}
		if bytesIdx >= 0 {
			ts.Kind = TimeSeekNPTDurationBytes
		} else {
			ts.Kind = TimeSeekNPTDuration
		}

	default:
		return invalid
	}

	if bytesIdx >= 0 {
		if !parseInstanceBytes(s[bytesIdx:], &ts) {
			return invalid
		}
	}
	return ts
}

// parseInstanceBytes parses the trailing "bytes=A-B/N" or "bytes=A-B/*"
// block. Both endpoints and the instance-length field are mandatory.
func parseInstanceBytes(s string, ts *TimeSeek) bool {
	first, i, ok := scanUint(s, 6)
	if !ok || i >= len(s) || s[i] != '-' {
		return false
	}
	last, i, ok := scanUint(s, i+1)
	if !ok || i >= len(s) || s[i] != '/' {
		return false
	}
	ts.RangeStart = first
	ts.RangeEnd = last
	if length, _, ok := scanUint(s, i+1); ok {
		ts.Length = length
		return true
	}
	if i+1 < len(s) && s[i+1] == '*' {
		ts.LengthUnknown = true
		return true
	}
	return false
}

// FormatTimeSeek emits the canonical text for a TimeSeek value. The
// second return is false when the value or any of its parts is invalid.
func FormatTimeSeek(ts TimeSeek) (string, bool) {
	if ts.Kind == TimeSeekInvalid {
		return "", false
	}
	start, ok := FormatNPT(ts.Start)
	if !ok {
		return "", false
	}

	var b strings.Builder
	switch ts.Kind {
	case TimeSeekNPT, TimeSeekNPTBytes:
		fmt.Fprintf(&b, "npt=%s-", start)
	case TimeSeekNPTDuration, TimeSeekNPTDurationBytes:
		dur, ok := FormatNPT(ts.Duration)
		if !ok {
			return "", false
		}
		fmt.Fprintf(&b, "npt=%s-/%s", start, dur)
	case TimeSeekNPTNPT, TimeSeekNPTNPTBytes:
		end, ok := FormatNPT(ts.End)
		if !ok {
			return "", false
		}
		fmt.Fprintf(&b, "npt=%s-%s", start, end)
	case TimeSeekNPTNPTDuration, TimeSeekNPTNPTDurationBytes:
		end, ok := FormatNPT(ts.End)
		if !ok {
			return "", false
		}
		dur, ok := FormatNPT(ts.Duration)
		if !ok {
			return "", false
		}
		fmt.Fprintf(&b, "npt=%s-%s/%s", start, end, dur)
	default:
		return "", false
	}

	if ts.Kind.hasBytes() {
		if ts.LengthUnknown {
			fmt.Fprintf(&b, " bytes=%d-%d/*", ts.RangeStart, ts.RangeEnd)
		} else {
			fmt.Fprintf(&b, " bytes=%d-%d/%d", ts.RangeStart, ts.RangeEnd, ts.Length)
		}
	}
	return b.String(), true
}
