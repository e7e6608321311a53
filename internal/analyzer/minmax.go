package analyzer

import "math"

// MinMaxStretcher maps the global minimum to black and the global maximum
// to white with no margin.
type MinMaxStretcher struct{}

func (MinMaxStretcher) Name() string { return MethodMinMax }

func (MinMaxStretcher) Levels(data []float64) Levels {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) || hi <= lo {
		return Levels{Black: lo, White: hi, Flat: true}
	}
	return Levels{Black: lo, White: hi}
}
