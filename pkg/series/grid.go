package series

import (
	"math"
	"sort"

	"gonum.org/v1/plot/plotter"

	"github.com/matzehuels/pubfig/pkg/errors"
)

// Grid is a scalar field sampled on a rectilinear mesh.
// Z is stored row-major: Z[r][c] is the value at (xs[c], ys[r]).
type Grid struct {
	xs, ys []float64
	z      [][]float64
}

// NewGrid evaluates f at every mesh point (x, y).
func NewGrid(xs, ys []float64, f func(x, y float64) float64) Grid {
	z := make([][]float64, len(ys))
	for r, y := range ys {
		row := make([]float64, len(xs))
		for c, x := range xs {
			row[c] = f(x, y)
		}
		z[r] = row
	}
	return Grid{xs: clone(xs), ys: clone(ys), z: z}
}

// GridFromPoints builds a grid from scattered (x, y, z) triples that cover
// a complete rectilinear mesh, in any order. A missing or repeated mesh
// point is INVALID_INPUT.
func GridFromPoints(x, y, z []float64) (Grid, error) {
	if len(x) != len(y) || len(x) != len(z) {
		return Grid{}, errors.New(errors.ErrCodeInvalidInput, "grid columns differ in length (%d, %d, %d)", len(x), len(y), len(z))
	}
	xs, ys := unique(x), unique(y)
	if len(xs)*len(ys) != len(z) {
		return Grid{}, errors.New(errors.ErrCodeInvalidInput,
			"%d points do not fill a %dx%d mesh", len(z), len(xs), len(ys))
	}
	col := index(xs)
	row := index(ys)

	cells := make([][]float64, len(ys))
	seen := make([][]bool, len(ys))
	for r := range cells {
		cells[r] = make([]float64, len(xs))
		seen[r] = make([]bool, len(xs))
	}
	for i := range z {
		c, r := col[x[i]], row[y[i]]
		if seen[r][c] {
			return Grid{}, errors.New(errors.ErrCodeInvalidInput, "mesh point (%g, %g) appears twice", x[i], y[i])
		}
		seen[r][c] = true
		cells[r][c] = z[i]
	}
	return Grid{xs: xs, ys: ys, z: cells}, nil
}

func unique(v []float64) []float64 {
	out := clone(v)
	sort.Float64s(out)
	n := 0
	for i, f := range out {
		if i == 0 || f != out[n-1] {
			out[n] = f
			n++
		}
	}
	return out[:n]
}

func index(sorted []float64) map[float64]int {
	m := make(map[float64]int, len(sorted))
	for i, v := range sorted {
		m[v] = i
	}
	return m
}

// Dims implements plotter.GridXYZ.
func (g Grid) Dims() (c, r int) { return len(g.xs), len(g.ys) }

// Z implements plotter.GridXYZ.
func (g Grid) Z(c, r int) float64 { return g.z[r][c] }

// X implements plotter.GridXYZ.
func (g Grid) X(c int) float64 { return g.xs[c] }

// Y implements plotter.GridXYZ.
func (g Grid) Y(r int) float64 { return g.ys[r] }

// Range returns the minimum and maximum finite z values.
func (g Grid) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range g.z {
		l, h := minMax(row)
		lo = math.Min(lo, l)
		hi = math.Max(hi, h)
	}
	return lo, hi
}

// Empty reports whether the grid has no cells.
func (g Grid) Empty() bool { return len(g.xs) == 0 || len(g.ys) == 0 }

// Ensure Grid implements plotter.GridXYZ.
var _ plotter.GridXYZ = Grid{}
