// SPDX-License-Identifier: MIT

package seekrange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNPT(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want NPT
	}{
		{"unknown", "*", NPT{Kind: NPTUnknown}},
		{"now", "now", NPT{Kind: NPTNow}},
		{"seconds", "123", NPT{Kind: NPTSeconds, Seconds: 123}},
		{"seconds zero", "0", NPT{Kind: NPTSeconds}},
		{"seconds millis", "123.456", NPT{Kind: NPTSecondsMillis, Seconds: 123, Millis: 456, MillisDigits: 3}},
		{"time", "1:02:32", NPT{Kind: NPTTime, Hours: 1, Minutes: 2, Seconds: 32}},
		{"time millis", "1:02:32.123", NPT{Kind: NPTTimeMillis, Hours: 1, Minutes: 2, Seconds: 32, Millis: 123, MillisDigits: 3}},
		{"short fraction", "30.5", NPT{Kind: NPTSecondsMillis, Seconds: 30, Millis: 5, MillisDigits: 1}},
		{"leading zero fraction", "30.05", NPT{Kind: NPTSecondsMillis, Seconds: 30, Millis: 5, MillisDigits: 2}},
		{"large hours", "100:59:59", NPT{Kind: NPTTime, Hours: 100, Minutes: 59, Seconds: 59}},
		{"upper bound", "5:59:59.999", NPT{Kind: NPTTimeMillis, Hours: 5, Minutes: 59, Seconds: 59, Millis: 999, MillisDigits: 3}},
		{"empty", "", NPT{Kind: NPTInvalid}},
		{"minutes overflow", "1:60:00", NPT{Kind: NPTInvalid}},
		{"seconds overflow", "1:00:60", NPT{Kind: NPTInvalid}},
		{"dangling dot", "12.", NPT{Kind: NPTInvalid}},
		{"leading dot", ".5", NPT{Kind: NPTInvalid}},
		{"stray dot later", "20/100.5", NPT{Kind: NPTInvalid}},
		{"missing component", "1:02", NPT{Kind: NPTInvalid}},
		{"not a number", "abc", NPT{Kind: NPTInvalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNPT(tt.in))
		})
	}
}

func TestNPTRoundTrip(t *testing.T) {
	canonical := []string{
		"*", "now", "0", "123", "123.456", "1:02:32", "1:02:32.123", "100:00:00",
		// Fraction width survives the round trip.
		"123.05", "1:02:32.005",
	}
	for _, s := range canonical {
		t.Run(s, func(t *testing.T) {
			v := ParseNPT(s)
			require.NotEqual(t, NPTInvalid, v.Kind)
			out, ok := FormatNPT(v)
			require.True(t, ok)
			assert.Equal(t, s, out)
			assert.Equal(t, v, ParseNPT(out))
		})
	}
}

func TestFormatNPTInvalid(t *testing.T) {
	out, ok := FormatNPT(NPT{Kind: NPTInvalid})
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestNPTDuration(t *testing.T) {
	d, ok := ParseNPT("1:02:32.123").Duration()
	require.True(t, ok)
	assert.Equal(t, time.Hour+2*time.Minute+32*time.Second+123*time.Millisecond, d)

	d, ok = ParseNPT("90.500").Duration()
	require.True(t, ok)
	assert.Equal(t, 90*time.Second+500*time.Millisecond, d)

	// The fraction is decimal, not a raw millisecond count.
	d, ok = ParseNPT("30.5").Duration()
	require.True(t, ok)
	assert.Equal(t, 30*time.Second+500*time.Millisecond, d)

	d, ok = ParseNPT("1:02:32.05").Duration()
	require.True(t, ok)
	assert.Equal(t, time.Hour+2*time.Minute+32*time.Second+50*time.Millisecond, d)

	_, ok = NPT{Kind: NPTUnknown}.Duration()
	assert.False(t, ok)
	_, ok = NPT{Kind: NPTNow}.Duration()
	assert.False(t, ok)
}

func TestParseBytesRange(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want BytesRange
	}{
		{"open", "bytes=1000-", BytesRange{Kind: BytesRangeOpen, First: 1000}},
		{"open zero", "bytes=0-", BytesRange{Kind: BytesRangeOpen}},
		{"closed", "bytes=1000-1999", BytesRange{Kind: BytesRangeClosed, First: 1000, Last: 1999}},
		{"closed single", "bytes=0-0", BytesRange{Kind: BytesRangeClosed}},
		// The grammar does not judge satisfiability; the file server does.
		{"inverted accepted", "bytes=1-0", BytesRange{Kind: BytesRangeClosed, First: 1, Last: 0}},
		{"case sensitive prefix", "Bytes=0-", BytesRange{Kind: BytesRangeInvalid}},
		{"missing prefix", "0-100", BytesRange{Kind: BytesRangeInvalid}},
		{"missing dash", "bytes=100", BytesRange{Kind: BytesRangeInvalid}},
		{"suffix form unsupported", "bytes=-500", BytesRange{Kind: BytesRangeInvalid}},
		{"empty", "", BytesRange{Kind: BytesRangeInvalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBytesRange(tt.in))
		})
	}
}

func TestBytesRangeRoundTrip(t *testing.T) {
	for _, s := range []string{"bytes=0-", "bytes=1000-1999", "bytes=0-0"} {
		t.Run(s, func(t *testing.T) {
			v := ParseBytesRange(s)
			require.NotEqual(t, BytesRangeInvalid, v.Kind)
			out, ok := FormatBytesRange(v)
			require.True(t, ok)
			assert.Equal(t, s, out)
		})
	}
}

func TestParseTimeSeek(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want TimeSeek
	}{
		{
			"start only", "npt=310.1-",
			TimeSeek{Kind: TimeSeekNPT, Start: NPT{Kind: NPTSecondsMillis, Seconds: 310, Millis: 1, MillisDigits: 1}},
		},
		{
			"start only time form", "npt=0:05:35.3-",
			TimeSeek{Kind: TimeSeekNPT, Start: NPT{Kind: NPTTimeMillis, Minutes: 5, Seconds: 35, Millis: 3, MillisDigits: 1}},
		},
		{
			"start and end", "npt=335.1-336.1",
			TimeSeek{
				Kind:  TimeSeekNPTNPT,
				Start: NPT{Kind: NPTSecondsMillis, Seconds: 335, Millis: 1, MillisDigits: 1},
				End:   NPT{Kind: NPTSecondsMillis, Seconds: 336, Millis: 1, MillisDigits: 1},
			},
		},
		{
			"start end duration", "npt=0:05:35-0:10:00/0:30:00",
			TimeSeek{
				Kind:     TimeSeekNPTNPTDuration,
				Start:    NPT{Kind: NPTTime, Minutes: 5, Seconds: 35},
				End:      NPT{Kind: NPTTime, Minutes: 10},
				Duration: NPT{Kind: NPTTime, Minutes: 30},
			},
		},
		{
			"start duration", "npt=120-/600",
			TimeSeek{
				Kind:     TimeSeekNPTDuration,
				Start:    NPT{Kind: NPTSeconds, Seconds: 120},
				Duration: NPT{Kind: NPTSeconds, Seconds: 600},
			},
		},
		{
			"start with bytes", "npt=120- bytes=1234-5678/8765",
			TimeSeek{
				Kind:       TimeSeekNPTBytes,
				Start:      NPT{Kind: NPTSeconds, Seconds: 120},
				RangeStart: 1234,
				RangeEnd:   5678,
				Length:     8765,
			},
		},
		{
			"start end with bytes", "npt=0-15 bytes=0-100000/100001",
			TimeSeek{
				Kind:       TimeSeekNPTNPTBytes,
				Start:      NPT{Kind: NPTSeconds},
				End:        NPT{Kind: NPTSeconds, Seconds: 15},
				RangeStart: 0,
				RangeEnd:   100000,
				Length:     100001,
			},
		},
		{
			"unknown instance length", "npt=120- bytes=1234-5678/*",
			TimeSeek{
				Kind:          TimeSeekNPTBytes,
				Start:         NPT{Kind: NPTSeconds, Seconds: 120},
				RangeStart:    1234,
				RangeEnd:      5678,
				LengthUnknown: true,
			},
		},
		{
			"duration with bytes", "npt=120-/600 bytes=0-99/*",
			TimeSeek{
				Kind:          TimeSeekNPTDurationBytes,
				Start:         NPT{Kind: NPTSeconds, Seconds: 120},
				Duration:      NPT{Kind: NPTSeconds, Seconds: 600},
				RangeStart:    0,
				RangeEnd:      99,
				LengthUnknown: true,
			},
		},
		{
			"start end duration bytes", "npt=10-20/30 bytes=40-50/60",
			TimeSeek{
				Kind:       TimeSeekNPTNPTDurationBytes,
				Start:      NPT{Kind: NPTSeconds, Seconds: 10},
				End:        NPT{Kind: NPTSeconds, Seconds: 20},
				Duration:   NPT{Kind: NPTSeconds, Seconds: 30},
				RangeStart: 40,
				RangeEnd:   50,
				Length:     60,
			},
		},
		{"missing prefix", "310.1-", TimeSeek{Kind: TimeSeekInvalid}},
		{"no dash", "npt=310.1", TimeSeek{Kind: TimeSeekInvalid}},
		{"dash only inside bytes", "npt=310.1 bytes=1234-5678", TimeSeek{Kind: TimeSeekInvalid}},
		{"empty start", "npt=-5", TimeSeek{Kind: TimeSeekInvalid}},
		{"bad start", "npt=x-", TimeSeek{Kind: TimeSeekInvalid}},
		{"bad end", "npt=0-x5", TimeSeek{Kind: TimeSeekInvalid}},
		{"space without bytes", "npt=0- trailer", TimeSeek{Kind: TimeSeekInvalid}},
		{"fractional duration after end", "npt=0-20/100.5", TimeSeek{Kind: TimeSeekInvalid}},
		{"bytes open form rejected", "npt=0- bytes=1234-/5678", TimeSeek{Kind: TimeSeekInvalid}},
		{"bytes without length", "npt=0- bytes=1234-5678", TimeSeek{Kind: TimeSeekInvalid}},
		{"bytes bad length", "npt=0- bytes=1-2/x", TimeSeek{Kind: TimeSeekInvalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTimeSeek(tt.in))
		})
	}
}

func TestTimeSeekRoundTrip(t *testing.T) {
	canonical := []string{
		"npt=310.1-",
		"npt=120-/600",
		"npt=335.1-336.1",
		"npt=0:05:35-0:10:00/0:30:00",
		"npt=120- bytes=1234-5678/8765",
		"npt=120-/600 bytes=0-99/*",
		"npt=10-20/30 bytes=40-50/60",
		"npt=0-15 bytes=0-100000/100001",
		// Instance lengths past 32 bits keep their value.
		"npt=30- bytes=0-5368709119/5368709120",
	}
	for _, s := range canonical {
		t.Run(s, func(t *testing.T) {
			v := ParseTimeSeek(s)
			require.NotEqual(t, TimeSeekInvalid, v.Kind)
			out, ok := FormatTimeSeek(v)
			require.True(t, ok)
			assert.Equal(t, s, out)
			assert.Equal(t, v, ParseTimeSeek(out))
		})
	}
}

func TestFormatTimeSeekInvalid(t *testing.T) {
	out, ok := FormatTimeSeek(TimeSeek{Kind: TimeSeekInvalid})
	assert.False(t, ok)
	assert.Empty(t, out)
}
