// Package numeric provides the small numeric helpers figures overlay on data:
// least-squares polynomial fits, summary statistics and sample spacing.
//
// Degenerate inputs fail fast with NUMERIC_DEGENERACY rather than producing
// NaN coefficients that would silently render as an empty trace.
package numeric

import (
	"math"

	"github.com/aclements/go-moremath/vec"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/pubfig/pkg/errors"
)

// Poly is a polynomial with coefficients in ascending powers:
// Coefficients[i] multiplies x^i.
type Poly struct {
	Coefficients []float64
}

// Degree returns the polynomial degree. The zero polynomial has degree -1.
func (p Poly) Degree() int { return len(p.Coefficients) - 1 }

// Eval evaluates the polynomial at x using Horner's rule.
func (p Poly) Eval(x float64) float64 {
	var y float64
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		y = y*x + p.Coefficients[i]
	}
	return y
}

// EvalAll evaluates the polynomial at every x.
func (p Poly) EvalAll(xs []float64) []float64 {
	return vec.Map(p.Eval, xs)
}

// Descending returns the coefficients highest power first, the order
// used by most plotting tools when printing a fit.
func (p Poly) Descending() []float64 {
	n := len(p.Coefficients)
	out := make([]float64, n)
	for i, c := range p.Coefficients {
		out[n-1-i] = c
	}
	return out
}

// PolyFit fits a least-squares polynomial of the given degree to (xs, ys).
//
// It returns NUMERIC_DEGENERACY when the system is underdetermined: a
// negative degree, mismatched lengths, non-finite input, fewer than
// degree+1 points, or fewer than degree+1 distinct x values.
func PolyFit(xs, ys []float64, degree int) (Poly, error) {
	if degree < 0 {
		return Poly{}, errors.New(errors.ErrCodeNumericDegeneracy, "polynomial degree %d is negative", degree)
	}
	if len(xs) != len(ys) {
		return Poly{}, errors.New(errors.ErrCodeNumericDegeneracy,
			"fit input has %d x values and %d y values", len(xs), len(ys))
	}
	if err := checkFinite(xs); err != nil {
		return Poly{}, err
	}
	if err := checkFinite(ys); err != nil {
		return Poly{}, err
	}
	need := degree + 1
	if len(xs) < need {
		return Poly{}, errors.New(errors.ErrCodeNumericDegeneracy,
			"degree %d fit needs at least %d points, got %d", degree, need, len(xs))
	}
	if d := distinct(xs); d < need {
		return Poly{}, errors.New(errors.ErrCodeNumericDegeneracy,
			"degree %d fit needs at least %d distinct x values, got %d", degree, need, d)
	}

	// Least squares on the Vandermonde matrix; SolveVec uses QR for
	// non-square systems.
	a := mat.NewDense(len(xs), need, nil)
	for i, x := range xs {
		pow := 1.0
		for j := 0; j < need; j++ {
			a.Set(i, j, pow)
			pow *= x
		}
	}
	var sol mat.VecDense
	if err := sol.SolveVec(a, mat.NewVecDense(len(ys), append([]float64(nil), ys...))); err != nil {
		return Poly{}, errors.Wrap(errors.ErrCodeNumericDegeneracy, err, "fit is ill-conditioned")
	}
	coeffs := make([]float64, need)
	for j := range coeffs {
		coeffs[j] = sol.AtVec(j)
	}
	if err := checkFinite(coeffs); err != nil {
		return Poly{}, errors.Wrap(errors.ErrCodeNumericDegeneracy, err, "fit is ill-conditioned")
	}
	return Poly{Coefficients: coeffs}, nil
}

func checkFinite(v []float64) error {
	for i, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.New(errors.ErrCodeNumericDegeneracy, "non-finite value %v at index %d", f, i)
		}
	}
	return nil
}

func distinct(v []float64) int {
	seen := make(map[float64]struct{}, len(v))
	for _, f := range v {
		seen[f] = struct{}{}
	}
	return len(seen)
}
