package gallery

import (
	"math"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/dataload"
	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

// gaussians is the sum of three bumps and one broad dip on [-3, 3]².
func gaussians(x, y float64) float64 {
	bump := func(a, cx, cy, w float64) float64 {
		return a * math.Exp(-((x-cx)*(x-cx)+(y-cy)*(y-cy))/w)
	}
	return bump(2, 1, 1, 0.5) + bump(1.5, -1, -1, 0.8) + bump(1, 0.5, -0.5, 0.3) - bump(0.5, 0, 0, 2)
}

func contourPlot(series.Series) chart.Figure {
	axis := numeric.Linspace(-3, 3, 150)
	g := series.NewGrid(axis, axis, gaussians)
	return chart.Single(chart.Panel{
		XLabel: "$x$ coordinate (units)", YLabel: "$y$ coordinate (units)",
		X: chart.Between(-3, 3), Y: chart.Between(-3, 3),
		XTicks: style.Step(1), YTicks: style.Step(1),
		Layers: []chart.Layer{chart.Contour{
			Grid: g, Levels: 14, ColorMap: "coolwarm", Alpha: 0.9,
			Lines: chart.LevelLines(g, 14, 2), LineWidth: 1.5,
		}},
		ColorBar: &chart.ColorBar{Label: "$Z$ value (units)"},
	})
}

func heatmap(series.Series) chart.Figure {
	axis := numeric.Linspace(0, 10, 100)
	g := series.NewGrid(axis, axis, func(x, y float64) float64 {
		return math.Exp(-((x-3)*(x-3)+(y-3)*(y-3))/2) +
			0.5*math.Exp(-((x-7)*(x-7)+(y-7)*(y-7))/3) +
			0.3*math.Exp(-((x-5)*(x-5)+(y-2)*(y-2)))
	})
	return chart.Single(chart.Panel{
		XLabel: xVarLabel, YLabel: yVarLabel,
		X: chart.Between(0, 10), Y: chart.Between(0, 10),
		XTicks: style.Step(2), YTicks: style.Step(2),
		Layers: []chart.Layer{chart.Heatmap{
			Grid: g, ColorMap: "autumn_r", Min: 0, Max: 1.5,
			Lines: []float64{0.3, 0.6, 0.9, 1.2}, LineWidth: 1.5,
		}},
		ColorBar: &chart.ColorBar{Ticks: style.FixedTicks(0, 0.5, 1, 1.5)},
	})
}

func dualAxisPlot(series.Series) chart.Figure {
	xs := numeric.Linspace(0, 10, 100)
	square := func(k float64) func(float64) float64 {
		return func(x float64) float64 { return k * x * x }
	}
	blue := style.MustColor("b")
	return chart.Single(chart.Panel{
		XLabel: xVarLabel, YLabel: "Left $y$ variable (units)",
		X: chart.Between(0, 10), Y: chart.Between(0, 150),
		XTicks: style.Step(2), YTicks: style.Step(30),
		Layers: []chart.Layer{
			chart.Lines{Data: series.FromFunc("Data A", xs, square(1)), Label: "Data A", Color: style.MustColor("r")},
			chart.Lines{Data: series.FromFunc("Data B", xs, square(0.5)), Label: "Data B", Color: style.MustColor("g")},
			chart.Lines{Data: series.FromFunc("Data C", xs, square(1.5)), Label: "Data C", Color: style.MustColor("c")},
		},
		Right: &chart.RightAxis{
			Label: "Right $y$ variable (different units)",
			Range: chart.Between(0, 120), Ticks: style.Step(20), Color: blue,
			Layers: []chart.Layer{
				chart.Lines{
					Data:  series.FromFunc("Experimental", xs, func(x float64) float64 { return 100 * math.Exp(-0.3*x) }),
					Color: blue, NoLine: true, Marker: "s", MarkEvery: 10, MarkerSize: 3,
				},
				chart.Text{X: 7, Y: 35, Text: "Exp. Data", Color: blue},
			},
		},
	})
}

func logPlot(series.Series) chart.Figure {
	xs := numeric.Logspace(-2, 2, 100)
	return chart.Single(chart.Panel{
		XLabel: xVarLabel, YLabel: yVarLabel,
		X: chart.Between(0.01, 100), Y: chart.Between(0.1, 1000),
		XLog: true, YLog: true,
		Grid: &chart.Grid{Dashes: "-", Width: 0.8, Alpha: 0.3, Minor: true},
		Layers: []chart.Layer{
			chart.Lines{Data: series.FromFunc("power law", xs, func(x float64) float64 { return 10 * math.Pow(x, -1.5) }),
				Label: `$y \sim \frac{1}{x\sqrt{x}}$`, Color: style.MustColor("r")},
			chart.Lines{Data: series.FromFunc("linear", xs, func(x float64) float64 { return 5*x + 2 }),
				Label: "$y = 5x + 2$", Color: style.MustColor("b")},
		},
		Legend: chart.Legend{Show: true, Top: true},
	})
}

// filledAreaPlot shows an uncertainty band around a sine, the area where it
// lies above a second curve, and every annotation layer. Layers are listed
// back to front.
func filledAreaPlot(series.Series) chart.Figure {
	const n = 100
	xs := numeric.Linspace(0, 10, n)
	src := dataload.NewSource(Seed)
	up, down := src.Normal(n, 0, 0.1), src.Normal(n, 0, 0.1)

	y, y2 := make([]float64, n), make([]float64, n)
	upper, lower := make([]float64, n), make([]float64, n)
	for i, x := range xs {
		y[i], y2[i] = math.Sin(x), 0.7*math.Cos(x)
		upper[i] = y[i] + 0.3 + up[i]
		lower[i] = y[i] - 0.3 - down[i]
	}
	gray := style.MustColor("gray")
	red := style.MustColor("red")

	return chart.Single(chart.Panel{
		XLabel: xVarLabel, YLabel: yVarLabel,
		X: chart.Between(0, 10), Y: chart.Between(-1.5, 1.5),
		XTicks: style.Step(2), YTicks: style.Step(0.5),
		Layers: []chart.Layer{
			chart.Span{From: -0.2, To: 0.2, Label: "Baseline region", Color: gray, Alpha: 0.15},
			chart.RefLine{Value: 0, Color: gray, Dashes: "--", Width: 1.5, Alpha: 0.7},
			chart.RefLine{Vertical: true, Value: 5, Color: gray, Dashes: ":", Width: 1.5, Alpha: 0.7},
			chart.Band{X: xs, Lower: lower, Upper: upper, Label: "Uncertainty band",
				Color: style.MustColor("blue"), Alpha: 0.3},
			chart.Band{X: xs, Lower: y2, Upper: y, Where: func(i int) bool { return y[i] >= y2[i] },
				Label: "Area between curves", Color: style.MustColor("purple"), Alpha: 0.2},
			chart.Lines{Data: series.MustNew("Mean value", xs, y), Label: "Mean value", Color: style.MustColor("b")},
			chart.Lines{Data: series.MustNew("Second curve", xs, y2), Label: "Second curve", Color: style.MustColor("r")},
			chart.Text{X: 3, Y: 0.5, Text: "Important region", Color: style.MustColor("darkgreen")},
			chart.Arrow{X1: 4, Y1: 1.3, X2: math.Pi / 2, Y2: 1, Text: "Peak", Color: red, Width: 2},
			chart.Arrow{X1: 6, Y1: -0.5, X2: 8, Y2: -0.5, Double: true, Width: 2},
			chart.Text{X: 7, Y: -0.7, Text: `$\Delta x$`, Center: true},
			chart.Rect{X: 5, Y: -1.2, W: 2, H: 0.4, Edge: style.MustColor("orange"),
				Fill: style.MustColor("yellow"), Alpha: 0.3, Width: 2},
			chart.Circle{X: 8.5, Y: 0.5, R: 0.3, Edge: style.MustColor("green"),
				Fill: style.MustColor("lightgreen"), Alpha: 0.4, Width: 2},
			chart.Lines{Data: series.MustNew("reference", []float64{0.5, 2.5}, []float64{1.2, 1.2}), Width: 2},
			chart.Text{X: 1.5, Y: 1.3, Text: "Reference", Scale: 0.8, Center: true},
		},
		Legend: chart.Legend{Show: true, Top: true, Scale: 0.7},
	})
}

// subplots is a 2x2 grid: two curves, a color-mapped scatter, a bar chart
// and a filled contour.
func subplots(series.Series) chart.Figure {
	xs := numeric.Linspace(0, 10, 100)
	const (
		xl = "$x$ (units)"
		yl = "$y$ (units)"
	)
	legend := chart.Legend{Show: true, Top: true, Scale: 0.8}

	curves := chart.Panel{
		Tag: "(a)", XLabel: xl, YLabel: yl,
		X: chart.Between(0, 10), Y: chart.Between(-1.5, 1.5),
		Grid: &chart.Grid{Alpha: 0.3},
		Layers: []chart.Layer{
			chart.Lines{Data: series.FromFunc("sin", xs, math.Sin), Label: "sin($x$)", Color: style.MustColor("r")},
			chart.Lines{Data: series.FromFunc("cos", xs, math.Cos), Label: "cos($x$)", Color: style.MustColor("b")},
		},
		Legend: legend,
	}

	scatter := chart.Panel{
		Tag: "(b)", XLabel: xl, YLabel: yl,
		X: chart.Between(0, 10), Y: chart.Between(-1.5, 1.5),
		Layers: []chart.Layer{chart.Points{
			Data:   series.FromFunc("sin2x", xs, func(x float64) float64 { return math.Sin(2 * x) }),
			Marker: "o", Size: markerArea(30), Alpha: 0.7,
			Values: xs, ColorMap: style.MustColorMap("viridis", 0, 10),
		}},
		ColorBar: &chart.ColorBar{Label: "$x$ value"},
	}

	bars := chart.Panel{
		Tag: "(c)", YLabel: "Value (units)",
		X: chart.Between(-0.6, 3.6), Y: chart.Between(0, 40),
		XTicks: style.LabeledTicks("A", "B", "C", "D"),
		Layers: []chart.Layer{chart.Bars{
			Values: []float64{25, 32, 28, 35}, Color: style.MustColor("steelblue"),
			Edge: style.MustColor("black"), EdgeWidth: 1.5, Alpha: 0.7,
		}},
	}

	axis := numeric.Linspace(0, 5, 50)
	field := chart.Panel{
		Tag: "(d)", XLabel: xl, YLabel: yl,
		X: chart.Between(0, 5), Y: chart.Between(0, 5),
		Layers: []chart.Layer{chart.Contour{
			Grid:     series.NewGrid(axis, axis, func(x, y float64) float64 { return math.Sin(x) * math.Cos(y) }),
			Levels:   15,
			ColorMap: "coolwarm",
		}},
		ColorBar: &chart.ColorBar{Label: "$Z$ value"},
	}

	return chart.Figure{Rows: 2, Cols: 2, Panels: []chart.Panel{curves, scatter, bars, field}}
}
