package analyzer

import "math"

// MaxLevel is the top of the 16-bit output range.
const MaxLevel = math.MaxUint16

// Levels is the black/white point pair a cube is rescaled with.
// Flat marks a degenerate range; such cubes stretch to all zeros.
type Levels struct {
	Black float64
	White float64
	Flat  bool
}

// Stretcher is the interface for dynamic-range strategies.
type Stretcher interface {
	Name() string
	Levels(data []float64) Levels
}

// Stretch computes levels over the whole of data and rescales it once.
// Callers pass the full cube so that every frame shares one scale.
func Stretch(s Stretcher, data []float64) ([]uint16, Levels) {
	lv := s.Levels(data)
	return Apply(data, lv), lv
}

// Apply clips data to [Black, White] and maps it linearly onto [0, 65535],
// truncating to uint16. NaN samples map to 0.
func Apply(data []float64, lv Levels) []uint16 {
	out := make([]uint16, len(data))
	span := lv.White - lv.Black
	if lv.Flat || !(span > 0) {
		return out
	}

	scale := MaxLevel / span
	for i, v := range data {
		switch {
		case math.IsNaN(v), v <= lv.Black:
			out[i] = 0
		case v >= lv.White:
			out[i] = MaxLevel
		default:
			s := (v - lv.Black) * scale
			if s > MaxLevel {
				s = MaxLevel
			}
			out[i] = uint16(s)
		}
	}
	return out
}

// finite returns the non-NaN, non-Inf samples of data.
func finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
