package numeric

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/pubfig/pkg/errors"
)

// Summary describes a sample.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64 // population standard deviation (divides by N)
	Min    float64
	Max    float64
}

// Describe summarizes xs. It needs at least two finite samples; a sample
// with zero spread is valid and reports StdDev 0.
func Describe(xs []float64) (Summary, error) {
	if len(xs) < 2 {
		return Summary{}, errors.New(errors.ErrCodeNumericDegeneracy,
			"summary needs at least 2 samples, got %d", len(xs))
	}
	if err := checkFinite(xs); err != nil {
		return Summary{}, err
	}

	mean := stats.Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	lo, hi := stats.Bounds(xs)
	return Summary{
		N:      len(xs),
		Mean:   mean,
		StdDev: math.Sqrt(ss / float64(len(xs))),
		Min:    lo,
		Max:    hi,
	}, nil
}

// Linspace returns n evenly spaced values over [lo, hi], endpoints included.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := floats.Span(make([]float64, n), lo, hi)
	out[n-1] = hi
	return out
}

// Logspace returns n values spaced evenly on a log scale from 10^lo to 10^hi.
func Logspace(lo, hi float64, n int) []float64 {
	out := Linspace(lo, hi, n)
	for i, e := range out {
		out[i] = math.Pow(10, e)
	}
	return out
}

// Arange returns lo, lo+step, ... up to but excluding hi.
func Arange(lo, hi, step float64) []float64 {
	if step <= 0 || hi <= lo {
		return nil
	}
	n := int(math.Ceil((hi - lo) / step))
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
