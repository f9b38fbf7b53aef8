package style

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
)

// StepTicks places major ticks at every multiple of Step inside the axis
// range and Minor-1 unlabeled minor ticks between neighbouring majors.
// A zero Minor disables minor ticks.
type StepTicks struct {
	Step  float64
	Minor int
}

// Ticks implements plot.Ticker.
func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	if !(t.Step > 0) || !(max > min) {
		return nil
	}
	eps := t.Step * 1e-9
	prec := decimals(t.Step)

	first := math.Ceil((min-eps)/t.Step) * t.Step
	var ticks []plot.Tick
	for i := 0; ; i++ {
		v := first + float64(i)*t.Step
		if v > max+eps {
			break
		}
		ticks = append(ticks, plot.Tick{Value: clean(v, eps), Label: formatTick(v, prec, eps)})
	}

	if t.Minor > 1 {
		sub := t.Step / float64(t.Minor)
		start := first - t.Step
		for i := 0; ; i++ {
			v := start + float64(i)*sub
			if v > max+eps {
				break
			}
			if i%t.Minor == 0 || v < min-eps {
				continue
			}
			ticks = append(ticks, plot.Tick{Value: v})
		}
	}
	return ticks
}

// FixedTicks labels exactly the given values, formatted with the fewest
// decimals that represent every value.
func FixedTicks(values ...float64) plot.ConstantTicks {
	prec := 0
	for _, v := range values {
		if d := decimals(v); d > prec {
			prec = d
		}
	}
	ticks := make(plot.ConstantTicks, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: formatTick(v, prec, 0)}
	}
	return ticks
}

// LabeledTicks places ticks at 0, 1, 2, ... labeled with the given names.
// Categorical bar charts use it for their x axis.
func LabeledTicks(labels ...string) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return ticks
}

// Step returns StepTicks with automatic minor ticks: five subdivisions when
// the step's mantissa is 1, 2.5 or 5 and four otherwise.
func Step(step float64) StepTicks {
	return StepTicks{Step: step, Minor: subdivisions(step)}
}

func subdivisions(step float64) int {
	if !(step > 0) {
		return 0
	}
	m := step / math.Pow(10, math.Floor(math.Log10(step)))
	for _, f := range []float64{1, 2.5, 5, 10} {
		if math.Abs(m-f) < 1e-9 {
			return 5
		}
	}
	return 4
}

// PrecTicks labels exactly the given values with prec decimals.
func PrecTicks(prec int, values ...float64) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(values))
	for i, v := range values {
		ticks[i] = plot.Tick{Value: v, Label: formatTick(v, prec, 1e-12)}
	}
	return ticks
}

// decimals returns how many digits after the decimal point v needs.
func decimals(v float64) int {
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func clean(v, eps float64) float64 {
	if math.Abs(v) < eps {
		return 0
	}
	return v
}

func formatTick(v float64, prec int, eps float64) string {
	return strconv.FormatFloat(clean(v, eps), 'f', prec, 64)
}
