package timecode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTimeEpoch(t *testing.T) {
	epoch := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(0), FromTime(epoch))
	assert.Equal(t, int64(TicksPerSecond), FromTime(epoch.Add(time.Second)))
	assert.Equal(t, int64(0), FromTime(time.Time{}))
}

func TestFromTimeUnixEpoch(t *testing.T) {
	unix := time.Unix(0, 0).UTC()
	assert.Equal(t, int64(621355968000000000), FromTime(unix))
}

func TestRoundTrip(t *testing.T) {
	zone := time.FixedZone("UTC+8", 8*3600)
	instants := []time.Time{
		time.Date(2022, 10, 21, 6, 25, 13, 512345678, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 999999999, zone),
		time.Date(2024, 2, 29, 0, 0, 0, 100, time.UTC),
	}
	for _, in := range instants {
		t.Run(in.String(), func(t *testing.T) {
			out := ToTime(FromTime(in))
			diff := in.Sub(out)
			assert.GreaterOrEqual(t, diff, time.Duration(0))
			assert.Less(t, diff, 100*time.Nanosecond)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2022-10-21T06:25:13.512", time.Date(2022, 10, 21, 6, 25, 13, 512000000, time.UTC)},
		{"2022-10-21T06:25:13Z", time.Date(2022, 10, 21, 6, 25, 13, 0, time.UTC)},
		{"2022-10-21T14:25:13+08:00", time.Date(2022, 10, 21, 6, 25, 13, 0, time.UTC)},
		{"2022-10-21 06:25:13", time.Date(2022, 10, 21, 6, 25, 13, 0, time.UTC)},
		{" 2022-10-21 ", time.Date(2022, 10, 21, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("yesterday noon")
	assert.Error(t, err)
}

func TestInterpolateFiveFrames(t *testing.T) {
	t0 := time.Date(2022, 10, 21, 6, 0, 0, 0, time.UTC)
	ticks := Span(t0, t0.Add(10*time.Second), 5)
	require.Len(t, ticks, 5)

	start := FromTime(t0)
	step := int64(2500 * time.Millisecond / nanosPerTick)
	for i, v := range ticks {
		assert.Equal(t, start+int64(i)*step, v, "frame %d", i)
	}
	assert.Equal(t, FromTime(t0.Add(10*time.Second)), ticks[4])
}

func TestInterpolateDegenerate(t *testing.T) {
	assert.Nil(t, Interpolate(10, 20, 0))
	assert.Equal(t, []int64{10}, Interpolate(10, 20, 1))
	assert.Equal(t, []int64{10, 10, 10}, Interpolate(10, 10, 3))
	assert.Equal(t, []int64{10, 10}, Interpolate(10, 5, 2))
}

func TestInterpolateUneven(t *testing.T) {
	ticks := Interpolate(0, 10, 4)
	assert.Equal(t, []int64{0, 3, 6, 10}, ticks)
}
