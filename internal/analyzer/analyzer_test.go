package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	return data
}

func TestPercentile(t *testing.T) {
	sorted := ramp(101) // 0..100
	assert.InDelta(t, 1.0, percentile(sorted, 1.0), 1e-9)
	assert.InDelta(t, 99.9, percentile(sorted, 99.9), 1e-9)
	assert.InDelta(t, 0.0, percentile(sorted, -5), 1e-9)
	assert.InDelta(t, 100.0, percentile(sorted, 150), 1e-9)
	assert.InDelta(t, 2.5, percentile([]float64{0, 5}, 50), 1e-9)
}

func TestPercentileLevels(t *testing.T) {
	s := NewPercentileStretcher()
	lv := s.Levels(ramp(101))

	rng := 99.9 - 1.0
	assert.False(t, lv.Flat)
	assert.InDelta(t, 1.0-rng*0.03, lv.Black, 1e-9)
	assert.InDelta(t, 99.9+rng*0.03, lv.White, 1e-9)
}

func TestStretchRangeAndOrder(t *testing.T) {
	data := []float64{-50, 3.2, 1e6, 7, 7, -1e9, 42, math.NaN(), 0.5, 12}
	for _, s := range []Stretcher{NewPercentileStretcher(), MinMaxStretcher{}} {
		t.Run(s.Name(), func(t *testing.T) {
			out, _ := Stretch(s, data)
			require.Len(t, out, len(data))

			for i := range data {
				for j := range data {
					if math.IsNaN(data[i]) || math.IsNaN(data[j]) {
						continue
					}
					if data[i] < data[j] {
						assert.LessOrEqual(t, out[i], out[j], "order broken for %v < %v", data[i], data[j])
					}
				}
			}
		})
	}
}

func TestStretchEndpoints(t *testing.T) {
	out, lv := Stretch(MinMaxStretcher{}, []float64{10, 15, 20})
	assert.Equal(t, Levels{Black: 10, White: 20}, lv)
	assert.Equal(t, []uint16{0, 32767, 65535}, out)
}

func TestStretchConstantIsZero(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 1234.5
	}
	for _, s := range []Stretcher{NewPercentileStretcher(), MinMaxStretcher{}} {
		t.Run(s.Name(), func(t *testing.T) {
			out, lv := Stretch(s, data)
			assert.True(t, lv.Flat)
			for _, v := range out {
				assert.Equal(t, uint16(0), v)
			}
		})
	}
}

func TestStretchCollapsedPercentiles(t *testing.T) {
	data := make([]float64, 10000)
	data[len(data)-1] = 100

	out, lv := Stretch(NewPercentileStretcher(), data)
	assert.False(t, lv.Flat)
	assert.InDelta(t, -Epsilon*0.03, lv.Black, 1e-12)
	assert.InDelta(t, Epsilon*1.03, lv.White, 1e-12)

	assert.Equal(t, uint16(MaxLevel), out[len(out)-1])
	assert.Equal(t, uint16(1854), out[0])
	for _, v := range out[:len(out)-1] {
		assert.Equal(t, out[0], v)
	}
}

func TestStretchHugeConstant(t *testing.T) {
	data := []float64{1e300, 1e300, 1e300}
	out, lv := Stretch(NewPercentileStretcher(), data)
	assert.True(t, lv.Flat)
	assert.Equal(t, []uint16{0, 0, 0}, out)
}

func TestStretchEmptyAndNaN(t *testing.T) {
	out, lv := Stretch(NewPercentileStretcher(), []float64{math.NaN(), math.Inf(1)})
	assert.True(t, lv.Flat)
	assert.Equal(t, []uint16{0, 0}, out)
}

func TestNewStretcher(t *testing.T) {
	tests := []struct {
		method  string
		want    string
		wantErr bool
	}{
		{"percentile", MethodPercentile, false},
		{"", MethodPercentile, false},
		{"minmax", MethodMinMax, false},
		{"zscale", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			s, err := NewStretcher(tt.method, 1, 99.9, 0.03)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}
}
