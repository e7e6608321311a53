package analyzer

import (
	"math"
	"slices"
)

// Epsilon keeps a zero-width percentile range from dividing by zero.
const Epsilon = 1e-6

// PercentileStretcher takes black and white points from percentiles of the
// sample distribution and widens the range by Expansion on both ends.
type PercentileStretcher struct {
	Low       float64 // percent, 0-100
	High      float64 // percent, 0-100
	Expansion float64 // fraction of the range added on each side
}

// NewPercentileStretcher creates a stretcher with the default 1.0 / 99.9
// percentiles and 3% expansion.
func NewPercentileStretcher() *PercentileStretcher {
	return &PercentileStretcher{
		Low:       1.0,
		High:      99.9,
		Expansion: 0.03,
	}
}

func (s *PercentileStretcher) Name() string { return MethodPercentile }

// Levels computes the expanded black/white points for data.
func (s *PercentileStretcher) Levels(data []float64) Levels {
	sorted := finite(data)
	if len(sorted) == 0 {
		return Levels{Flat: true}
	}
	slices.Sort(sorted)

	black := percentile(sorted, s.Low)
	white := percentile(sorted, s.High)
	if white <= black {
		white = black + Epsilon
	}

	margin := (white - black) * s.Expansion
	lv := Levels{
		Black: black - margin,
		White: white + margin,
	}
	// A constant cube carries no signal. Large magnitudes can also swallow
	// epsilon entirely.
	if sorted[0] == sorted[len(sorted)-1] || lv.White <= lv.Black {
		lv.Flat = true
	}
	return lv
}

// percentile interpolates linearly between closest ranks of sorted,
// matching numpy's default method.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	p = math.Min(math.Max(p, 0), 100)

	pos := p / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
