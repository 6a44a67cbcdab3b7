// SPDX-License-Identifier: MIT

// Package seekrange parses and emits the DLNA seek header grammars:
// NPT (normal play time) values, HTTP bytes ranges, and the composite
// TimeSeekRange.dlna.org value.
package seekrange

import (
	"fmt"
	"strings"
	"time"
)

// NPTKind tags the variant held by an NPT value.
type NPTKind uint8

const (
	NPTInvalid NPTKind = iota
	NPTUnknown               // "*"
	NPTNow                   // "now"
	NPTSeconds               // "123"
	NPTSecondsMillis         // "123.456"
	NPTTime                  // "1:02:32"
	NPTTimeMillis            // "1:02:32.123"
)

// NPT is a normal play time value. For the seconds kinds the whole
// second count lives in Seconds and Hours/Minutes are zero. For the
// H:MM:SS kinds Seconds holds only the SS component. Millis carries
// the fractional digit run and MillisDigits its width, so ".5" and
// ".05" stay distinct; both are meaningful for the *Millis kinds only.
type NPT struct {
	Kind         NPTKind
	Hours        uint32
	Minutes      uint32
	Seconds      uint32
	Millis       uint32
	MillisDigits uint8
}

// scanUint consumes a decimal digit run at s[i:]. Trailing non-digit
// text is left in place, matching scanf "%u" tolerance.
func scanUint(s string, i int) (uint64, int, bool) {
	start := i
	var v uint64
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		d := uint64(s[i] - '0')
		if v > (1<<64-1-d)/10 {
			return 0, i, false
		}
		v = v*10 + d
		i++
	}
	if i == start {
		return 0, i, false
	}
	return v, i, true
}

// scanUint32 is scanUint restricted to values that fit the 32-bit NPT
// component fields.
func scanUint32(s string, i int) (uint32, int, bool) {
	v, j, ok := scanUint(s, i)
	if !ok || v > 0xffffffff {
		return 0, j, false
	}
	return uint32(v), j, true
}

// ParseNPT parses an npt-time. Text after a complete match is
// tolerated, which the composite TimeSeekRange parser relies on when it
// hands over the unsplit remainder of the header value.
func ParseNPT(s string) NPT {
	if s == "" {
		return NPT{Kind: NPTInvalid}
	}
	if s[0] == '*' {
		return NPT{Kind: NPTUnknown}
	}
	if strings.HasPrefix(s, "now") {
		return NPT{Kind: NPTNow}
	}

	if !strings.Contains(s, ":") {
		// Plain seconds, with an optional fractional part. The dot
		// check looks at the whole input so a stray dot later in the
		// text forces the stricter two-number form.
		sec, i, ok := scanUint32(s, 0)
		if !ok {
			return NPT{Kind: NPTInvalid}
		}
		if strings.Contains(s, ".") {
			if i >= len(s) || s[i] != '.' {
				return NPT{Kind: NPTInvalid}
			}
			ms, j, ok := scanUint32(s, i+1)
			if !ok {
				return NPT{Kind: NPTInvalid}
			}
			return NPT{Kind: NPTSecondsMillis, Seconds: sec, Millis: ms, MillisDigits: fracWidth(i+1, j)}
		}
		return NPT{Kind: NPTSeconds, Seconds: sec}
	}

	hh, i, ok := scanUint32(s, 0)
	if !ok || i >= len(s) || s[i] != ':' {
		return NPT{Kind: NPTInvalid}
	}
	mm, i, ok := scanUint32(s, i+1)
	if !ok || i >= len(s) || s[i] != ':' {
		return NPT{Kind: NPTInvalid}
	}
	ss, i, ok := scanUint32(s, i+1)
	if !ok {
		return NPT{Kind: NPTInvalid}
	}
	if mm > 59 || ss > 59 {
		return NPT{Kind: NPTInvalid}
	}
	if strings.Contains(s, ".") {
		if i >= len(s) || s[i] != '.' {
			return NPT{Kind: NPTInvalid}
		}
		ms, j, ok := scanUint32(s, i+1)
		if !ok {
			return NPT{Kind: NPTInvalid}
		}
		return NPT{Kind: NPTTimeMillis, Hours: hh, Minutes: mm, Seconds: ss, Millis: ms, MillisDigits: fracWidth(i+1, j)}
	}
	return NPT{Kind: NPTTime, Hours: hh, Minutes: mm, Seconds: ss}
}

// FormatNPT emits the canonical text for an NPT value. The second
// return is false for the invalid kind.
func FormatNPT(n NPT) (string, bool) {
	switch n.Kind {
	case NPTUnknown:
		return "*", true
	case NPTNow:
		return "now", true
	case NPTSeconds:
		return fmt.Sprintf("%d", n.Seconds), true
	case NPTSecondsMillis:
		return fmt.Sprintf("%d.%s", n.Seconds, fracText(n)), true
	case NPTTime:
		return fmt.Sprintf("%d:%02d:%02d", n.Hours, n.Minutes, n.Seconds), true
	case NPTTimeMillis:
		return fmt.Sprintf("%d:%02d:%02d.%s", n.Hours, n.Minutes, n.Seconds, fracText(n)), true
	default:
		return "", false
	}
}

// Duration converts a concrete NPT value to a time.Duration. Unknown,
// now and invalid values report false. The fractional digit run is a
// decimal fraction of a second, so ".5" is 500ms and ".05" is 50ms.
func (n NPT) Duration() (time.Duration, bool) {
	switch n.Kind {
	case NPTSeconds:
		return time.Duration(n.Seconds) * time.Second, true
	case NPTSecondsMillis:
		return time.Duration(n.Seconds)*time.Second + n.frac(), true
	case NPTTime, NPTTimeMillis:
		d := time.Duration(n.Hours)*time.Hour +
			time.Duration(n.Minutes)*time.Minute +
			time.Duration(n.Seconds)*time.Second
		if n.Kind == NPTTimeMillis {
			d += n.frac()
		}
		return d, true
	default:
		return 0, false
	}
}

// frac is the fractional digit run scaled by its width. Runs wider
// than nanosecond resolution round down to zero.
func (n NPT) frac() time.Duration {
	if n.MillisDigits == 0 {
		// Hand-built values without a recorded width carry plain
		// milliseconds.
		return time.Duration(n.Millis) * time.Millisecond
	}
	if n.MillisDigits > 18 {
		return 0
	}
	scale := int64(1)
	for i := uint8(0); i < n.MillisDigits; i++ {
		scale *= 10
	}
	return time.Duration(n.Millis) * time.Second / time.Duration(scale)
}

// fracWidth is the digit count of the run scanned from start to end.
// Runs wider than fits the field keep the maximum width.
func fracWidth(start, end int) uint8 {
	w := end - start
	if w > 255 {
		w = 255
	}
	return uint8(w)
}

// fracText renders the fractional run at its original width. A zero
// width, possible only on hand-built values, falls back to minimal
// digits.
func fracText(n NPT) string {
	if n.MillisDigits == 0 {
		return fmt.Sprintf("%d", n.Millis)
	}
	return fmt.Sprintf("%0*d", int(n.MillisDigits), n.Millis)
}
