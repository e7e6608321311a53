package analyzer

import "fmt"

const (
	MethodPercentile = "percentile"
	MethodMinMax     = "minmax"
)

// NewStretcher creates a stretcher based on the specified method.
// low/high/expansion only apply to the percentile method.
func NewStretcher(method string, low, high, expansion float64) (Stretcher, error) {
	switch method {
	case MethodPercentile, "":
		return &PercentileStretcher{Low: low, High: high, Expansion: expansion}, nil
	case MethodMinMax:
		return MinMaxStretcher{}, nil
	default:
		return nil, fmt.Errorf("unknown stretch method: %s", method)
	}
}
