package dataload

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
)

// Fallback defaults.
const (
	DefaultPoints = 100
	DefaultMin    = 0.0
	DefaultMax    = 10.0
)

// DampedSine is the default fallback curve, sin(x)*exp(-x/10).
func DampedSine(x float64) float64 {
	return math.Sin(x) * math.Exp(-x/10)
}

// Generator produces the synthetic fallback series: N evenly spaced x values
// over [Min, Max] mapped through F, plus optional Gaussian noise.
//
// Noise is drawn from a PCG source seeded with Seed, so the same
// Generator always yields the same series.
type Generator struct {
	N        int
	Min, Max float64
	F        func(float64) float64
	Seed     uint64
	Noise    float64 // standard deviation; zero disables noise
}

// DefaultGenerator returns the damped sine over [0, 10] with 100 points.
func DefaultGenerator() Generator {
	return Generator{N: DefaultPoints, Min: DefaultMin, Max: DefaultMax, F: DampedSine}
}

// Seeded returns a copy of g that adds noise with standard deviation sigma,
// drawn from a source seeded with seed.
func (g Generator) Seeded(seed uint64, sigma float64) Generator {
	g.Seed, g.Noise = seed, sigma
	return g
}

func (g Generator) withDefaults() Generator {
	d := DefaultGenerator()
	if g.N <= 0 {
		g.N = d.N
	}
	if g.Min == 0 && g.Max == 0 {
		g.Min, g.Max = d.Min, d.Max
	}
	if g.F == nil {
		g.F = d.F
	}
	return g
}

// Generate builds the series. x is strictly ascending.
func (g Generator) Generate() series.Series {
	g = g.withDefaults()
	xs := numeric.Linspace(g.Min, g.Max, g.N)
	s := series.FromFunc("fallback", xs, g.F)
	if g.Noise > 0 {
		src := NewSource(g.Seed)
		s = s.Map(func(_, y float64) float64 { return y + g.Noise*src.rng.NormFloat64() })
	}
	return s
}

// NormalSamples draws n samples from N(mean, sigma^2) using a PCG source
// seeded with seed.
func NormalSamples(seed uint64, n int, mean, sigma float64) []float64 {
	return NewSource(seed).Normal(n, mean, sigma)
}

// UniformSamples draws n samples from U[lo, hi) using a PCG source seeded with seed.
func UniformSamples(seed uint64, n int, lo, hi float64) []float64 {
	return NewSource(seed).Uniform(n, lo, hi)
}

// Source is a seeded random stream for figures that draw several correlated
// sample sets from one seed.
type Source struct {
	rng *rand.Rand
}

// NewSource returns a Source seeded with seed.
func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Normal draws n samples from N(mean, sigma^2).
func (s *Source) Normal(n int, mean, sigma float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + sigma*s.rng.NormFloat64()
	}
	return out
}

// Uniform draws n samples from U[lo, hi).
func (s *Source) Uniform(n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*s.rng.Float64()
	}
	return out
}
