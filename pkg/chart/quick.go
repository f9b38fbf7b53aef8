package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

// Kind selects the default figure Quick builds for loaded data.
type Kind string

// Chart kinds.
const (
	KindLine       Kind = "line"
	KindScatter    Kind = "scatter"
	KindScatterFit Kind = "scatter-fit"
	KindBar        Kind = "bar"
	KindHistogram  Kind = "histogram"
	KindErrorBar   Kind = "errorbar"
	KindContour    Kind = "contour"
	KindHeatmap    Kind = "heatmap"
	KindDualAxis   Kind = "dual-axis"
	KindArea       Kind = "area"
	KindLog        Kind = "log"
)

// Kinds lists every chart kind in display order.
var Kinds = []Kind{
	KindLine, KindScatter, KindScatterFit, KindBar, KindHistogram, KindErrorBar,
	KindContour, KindHeatmap, KindDualAxis, KindArea, KindLog,
}

// ParseKind resolves a kind name. It returns INVALID_KIND for unknown names.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return "", errors.New(errors.ErrCodeInvalidKind, "unknown chart kind %q (want one of %s)", s, strings.Join(names, ", "))
}

// Data is the input to Quick.
type Data struct {
	Series []series.Series
	Grid   series.Grid // contour and heatmap only
	Degree int         // scatter-fit polynomial degree; zero means 1
}

// Labels are the texts of a Quick figure.
type Labels struct {
	Title  string
	X, Y   string
	Right  string // dual-axis only
	Legend bool   // force a legend even for a single series
}

// cycle is the color order for multiple series.
var cycle = []string{"b", "r", "g", "m", "c", "k"}

func cycleColor(i int) string { return cycle[i%len(cycle)] }

// Quick builds a single-panel figure of the given kind. Every kind but
// contour and heatmap draws Data.Series; those two draw Data.Grid.
func Quick(kind Kind, d Data, l Labels) (Figure, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Figure{}, err
	}
	pn := Panel{Title: l.Title, XLabel: orName(l.X, "x"), YLabel: orName(l.Y, "y")}

	switch kind {
	case KindContour, KindHeatmap:
		if d.Grid.Empty() {
			return Figure{}, errors.New(errors.ErrCodeInvalidInput, "%s needs a grid", kind)
		}
		if kind == KindContour {
			pn.Layers = []Layer{Contour{Grid: d.Grid, Lines: LevelLines(d.Grid, 20, 2)}}
		} else {
			pn.Layers = []Layer{Heatmap{Grid: d.Grid}}
		}
		pn.ColorBar = &ColorBar{Label: "z"}
		return named(kind, pn), nil
	}

	if len(d.Series) == 0 || d.Series[0].Empty() {
		return Figure{}, errors.New(errors.ErrCodeInvalidInput, "%s needs at least one non-empty series", kind)
	}
	first := d.Series[0]
	pn.Legend.Show = l.Legend || len(d.Series) > 1

	switch kind {
	case KindLine, KindLog:
		for i, s := range d.Series {
			if kind == KindLog {
				if err := positive(s); err != nil {
					return Figure{}, err
				}
			}
			pn.Layers = append(pn.Layers, Lines{Data: s, Label: s.Name(), Color: style.MustColor(cycleColor(i))})
		}
		pn.YLog = kind == KindLog
		if pn.YLog {
			pn.Grid = &Grid{Minor: true}
		}

	case KindScatter:
		for i, s := range d.Series {
			pn.Layers = append(pn.Layers, Points{Data: s, Label: s.Name(), Color: style.MustColor(cycleColor(i)), Marker: "o"})
		}

	case KindScatterFit:
		pn.Layers = []Layer{
			Points{Data: first, Label: orName(first.Name(), "Data"), Color: style.MustColor("b"), Marker: "o"},
			Fit{Data: first, Degree: max(d.Degree, 1), Color: style.MustColor("r")},
		}
		pn.Legend = Legend{Show: true, Left: true, Top: true}

	case KindBar:
		xs := first.X()
		labels := make([]string, len(xs))
		for i, x := range xs {
			labels[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		pn.Layers = []Layer{Bars{Values: first.Y(), Label: first.Name(), Edge: style.MustColor("k")}}
		pn.XTicks = style.LabeledTicks(labels...)

	case KindHistogram:
		pn.Layers = []Layer{Hist{Values: first.Y(), Bins: 30, Edge: style.MustColor("k"), Alpha: 0.7, Stats: true}}
		pn.XLabel, pn.YLabel = orName(l.X, "Value"), orName(l.Y, "Frequency")
		pn.Legend = Legend{Show: true, Top: true}

	case KindErrorBar:
		yerr, err := errorsFor(d.Series)
		if err != nil {
			return Figure{}, err
		}
		pn.Layers = []Layer{ErrorBars{Data: first, YErr: yerr, Label: first.Name(), Marker: "o"}}

	case KindArea:
		y := first.Y()
		pn.Layers = []Layer{
			Band{X: first.X(), Lower: make([]float64, len(y)), Upper: y, Color: style.MustColor("steelblue"), Alpha: 0.4},
			Lines{Data: first, Label: first.Name(), Color: style.MustColor("steelblue")},
		}

	case KindDualAxis:
		if len(d.Series) < 2 {
			return Figure{}, errors.New(errors.ErrCodeInvalidInput, "dual-axis needs two series, got %d", len(d.Series))
		}
		second := d.Series[1]
		_, _, lo, hi := first.Bounds()
		_, _, rlo, rhi := second.Bounds()
		pn.Y = padded(lo, hi)
		pn.Layers = []Layer{Lines{Data: first, Label: first.Name(), Color: style.MustColor("b")}}
		pn.Right = &RightAxis{
			Label:  orName(l.Right, "y2"),
			Range:  padded(rlo, rhi),
			Layers: []Layer{Lines{Data: second, Label: second.Name(), Color: style.MustColor("r"), Dashes: "--"}},
		}
	}
	return named(kind, pn), nil
}

func named(kind Kind, pn Panel) Figure {
	f := Single(pn)
	f.Name = string(kind)
	return f
}

// errorsFor uses the y values of a second series as error magnitudes, or
// five percent of the first series' y span when there is none.
func errorsFor(ss []series.Series) ([]float64, error) {
	first := ss[0]
	if len(ss) > 1 {
		if ss[1].Len() != first.Len() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "error series has %d points, data has %d", ss[1].Len(), first.Len())
		}
		yerr := ss[1].Y()
		for i, e := range yerr {
			yerr[i] = math.Abs(e)
		}
		return yerr, nil
	}
	_, _, lo, hi := first.Bounds()
	e := 0.05 * (hi - lo)
	if e == 0 {
		e = 0.05 * math.Max(math.Abs(hi), 1)
	}
	yerr := make([]float64, first.Len())
	for i := range yerr {
		yerr[i] = e
	}
	return yerr, nil
}

func positive(s series.Series) error {
	for i := 0; i < s.Len(); i++ {
		if _, y := s.XY(i); !(y > 0) {
			return errors.New(errors.ErrCodeInvalidInput, "log axis needs positive y values, got %v at index %d", y, i)
		}
	}
	return nil
}

// padded widens [lo, hi] by five percent on each side.
func padded(lo, hi float64) Range {
	d := 0.05 * (hi - lo)
	if d == 0 {
		d = 0.5
	}
	return Range{Min: lo - d, Max: hi + d}
}
