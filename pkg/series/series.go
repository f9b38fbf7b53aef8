// Package series defines the immutable data traces that figures are drawn from.
//
// A [Series] is an ordered list of (x, y) pairs, created once by the loader or a
// generator and never mutated afterwards. A [Grid] is a regular 2D scalar field
// used by contour and heatmap charts.
//
// Both types satisfy the gonum/plot data interfaces ([plotter.XYer] and
// [plotter.GridXYZ]) so they can be handed to plotters directly.
package series

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"gonum.org/v1/plot/plotter"

	"github.com/matzehuels/pubfig/pkg/errors"
)

// Series is an ordered sequence of (x, y) pairs. The zero value is an empty series.
type Series struct {
	name string
	x    []float64
	y    []float64
}

// New creates a Series from parallel x and y slices. The slices are copied.
// It returns INVALID_INPUT when the lengths differ.
func New(name string, x, y []float64) (Series, error) {
	if len(x) != len(y) {
		return Series{}, errors.New(errors.ErrCodeInvalidInput,
			"series %q: x has %d values, y has %d", name, len(x), len(y))
	}
	return Series{name: name, x: clone(x), y: clone(y)}, nil
}

// MustNew is like New but panics on mismatched lengths.
// It is meant for literal data in figure templates.
func MustNew(name string, x, y []float64) Series {
	s, err := New(name, x, y)
	if err != nil {
		panic(err)
	}
	return s
}

// FromFunc samples f at every x.
func FromFunc(name string, xs []float64, f func(float64) float64) Series {
	y := make([]float64, len(xs))
	for i, x := range xs {
		y[i] = f(x)
	}
	return Series{name: name, x: clone(xs), y: y}
}

// Name returns the series name, which may be empty.
func (s Series) Name() string { return s.name }

// WithName returns a copy of s carrying name.
func (s Series) WithName(name string) Series {
	s.name = name
	return s
}

// Len implements plotter.XYer.
func (s Series) Len() int { return len(s.x) }

// XY implements plotter.XYer.
func (s Series) XY(i int) (float64, float64) { return s.x[i], s.y[i] }

// X returns a copy of the x values.
func (s Series) X() []float64 { return clone(s.x) }

// Y returns a copy of the y values.
func (s Series) Y() []float64 { return clone(s.y) }

// Empty reports whether the series has no points.
func (s Series) Empty() bool { return len(s.x) == 0 }

// Bounds returns the data extents. All four are NaN for an empty series.
func (s Series) Bounds() (xmin, xmax, ymin, ymax float64) {
	if s.Empty() {
		nan := math.NaN()
		return nan, nan, nan, nan
	}
	xmin, xmax = minMax(s.x)
	ymin, ymax = minMax(s.y)
	return
}

// Map returns a new series with f applied to every y value.
func (s Series) Map(f func(x, y float64) float64) Series {
	y := make([]float64, len(s.y))
	for i := range s.y {
		y[i] = f(s.x[i], s.y[i])
	}
	return Series{name: s.name, x: clone(s.x), y: y}
}

// Equal reports whether both series hold the same points in the same order.
// Names are ignored.
func (s Series) Equal(o Series) bool {
	if len(s.x) != len(o.x) {
		return false
	}
	for i := range s.x {
		if !same(s.x[i], o.x[i]) || !same(s.y[i], o.y[i]) {
			return false
		}
	}
	return true
}

// Digest returns a stable content hash of the points, used for cache keys.
func (s Series) Digest() string {
	h := sha256.New()
	var buf [8]byte
	for i := range s.x {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(s.x[i]))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(s.y[i]))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Ensure Series implements plotter.XYer.
var _ plotter.XYer = Series{}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, f := range v {
		if math.IsNaN(f) {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	return lo, hi
}

// same treats two NaNs as equal so that generated series compare cleanly.
func same(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
