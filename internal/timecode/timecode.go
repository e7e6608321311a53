// Package timecode converts calendar time to the tick format stored in SER
// files: 100-nanosecond units since 0001-01-01T00:00:00Z.
package timecode

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// TicksPerSecond is the number of ticks in one second.
	TicksPerSecond = 10_000_000

	nanosPerTick = 100

	// Seconds between 0001-01-01 and 1970-01-01 (UTC).
	epochOffsetSeconds int64 = 62135596800
)

// ErrEmpty is returned by Parse for a blank value.
var ErrEmpty = errors.New("empty timestamp")

// FromTime returns the tick count of t. The zero time and instants before
// the epoch map to 0.
func FromTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	sec := t.Unix() + epochOffsetSeconds
	if sec < 0 {
		return 0
	}
	return sec*TicksPerSecond + int64(t.Nanosecond())/nanosPerTick
}

// ToTime is the inverse of FromTime. The result is in UTC.
func ToTime(ticks int64) time.Time {
	if ticks <= 0 {
		return time.Time{}
	}
	sec := ticks/TicksPerSecond - epochOffsetSeconds
	nsec := (ticks % TicksPerSecond) * nanosPerTick
	return time.Unix(sec, nsec).UTC()
}

// Layouts accepted by Parse. Values without a zone are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse reads an ISO-8601 timestamp as written in FITS headers
// (e.g. "2022-10-21T06:25:13.512").
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Interpolate returns n tick values evenly spaced from start to end.
// Frame i gets start + i*(end-start)/(n-1); a single frame gets start, and a
// zero or negative span degenerates to start for every frame.
func Interpolate(start, end int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	out := make([]int64, n)
	if n == 1 || end <= start {
		for i := range out {
			out[i] = start
		}
		return out
	}

	span := end - start
	steps := int64(n - 1)
	whole, rem := span/steps, span%steps
	for i := range out {
		k := int64(i)
		out[i] = start + whole*k + rem*k/steps
	}
	return out
}

// Span is a convenience wrapper over Interpolate for calendar times.
func Span(start, end time.Time, n int) []int64 {
	return Interpolate(FromTime(start), FromTime(end), n)
}
