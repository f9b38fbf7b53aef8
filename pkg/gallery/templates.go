package gallery

import (
	"math"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/dataload"
	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

const (
	xVarLabel = "$x$ variable (units)"
	yVarLabel = "$y$ variable (units)"
)

func linePlot(series.Series) chart.Figure {
	xs := numeric.Linspace(0, 10, 100)
	return chart.Single(chart.Panel{
		XLabel: xVarLabel, YLabel: yVarLabel,
		X: chart.Between(0, 10), Y: chart.Between(-1.5, 1.5),
		XTicks: style.Step(2), YTicks: style.Step(0.5),
		Layers: []chart.Layer{
			chart.Lines{Data: series.FromFunc("sin", xs, math.Sin), Label: "sin($x$)", Color: style.MustColor("r")},
			chart.Lines{Data: series.FromFunc("cos", xs, math.Cos), Label: "cos($x$)", Color: style.MustColor("g")},
			chart.Lines{Data: series.FromFunc("sin2", xs, func(x float64) float64 { return 0.5 * math.Sin(2*x) }),
				Label: "0.5 sin($2x$)", Color: style.MustColor("c")},
		},
		Legend: chart.Legend{Show: true, Top: true},
	})
}

func scatterPlot(series.Series) chart.Figure {
	const n = 200
	src := dataload.NewSource(Seed)
	x := src.Normal(n, 5, 2)
	y := src.Normal(n, 10, 3)
	noise := src.Normal(n, 0, 5)
	values := make([]float64, n)
	for i := range values {
		values[i] = x[i]*y[i] + noise[i]
	}
	lo, hi := minMax(values)

	return chart.Single(chart.Panel{
		XLabel: xVarLabel, YLabel: yVarLabel,
		X: chart.Between(0, 10), Y: chart.Between(0, 20),
		XTicks: style.Step(2), YTicks: style.Step(5),
		Layers: []chart.Layer{chart.Points{
			Data: series.MustNew("scatter", x, y), Marker: "s", Size: markerArea(50), Alpha: 0.7,
			Values: values, ColorMap: style.MustColorMap("autumn_r", lo, hi),
		}},
		ColorBar: &chart.ColorBar{Label: "Color variable (units)"},
	})
}

func histogram(series.Series) chart.Figure {
	data := dataload.NewSource(Seed).Normal(1000, 5, 2)
	return chart.Single(chart.Panel{
		XLabel: "Value (units)", YLabel: "Frequency",
		Layers: []chart.Layer{chart.Hist{
			Values: data, Bins: 30, Alpha: 0.7,
			Color: style.MustColor("steelblue"), Edge: style.MustColor("black"), EdgeWidth: 1.2,
			Stats: true,
		}},
		Legend: chart.Legend{Show: true, Top: true},
	})
}

// errorbar draws a noisy line y = 2x + 5 with random error magnitudes and
// a least-squares trend line.
func errorbar(series.Series) chart.Figure {
	const n = 20
	src := dataload.NewSource(Seed)
	x := numeric.Linspace(0, 10, n)
	noise := src.Normal(n, 0, 2)
	yerr := src.Normal(n, 0, 1.5)
	xerr := src.Normal(n, 0, 0.3)
	y := make([]float64, n)
	for i := range y {
		y[i] = 2*x[i] + 5 + noise[i]
		yerr[i], xerr[i] = math.Abs(yerr[i]), math.Abs(xerr[i])
	}
	data := series.MustNew("Data with errors", x, y)

	return chart.Single(chart.Panel{
		XLabel: xVarLabel, YLabel: yVarLabel,
		X: chart.Between(0, 10),
		Layers: []chart.Layer{
			chart.ErrorBars{
				Data: data, YErr: yerr, XErr: xerr, Label: "Data with errors",
				Color: style.MustColor("blue"), BarColor: style.MustColor("black"),
				Marker: "o", Size: 4, Capsize: 5,
			},
			chart.Fit{Data: data, Degree: 1, Color: style.MustColor("r"), Dashes: "--"},
		},
		Legend: chart.Legend{Show: true, Left: true, Top: true},
	})
}

var categories = []string{"A", "B", "C", "D", "E"}

func barChart(series.Series) chart.Figure {
	return chart.Single(chart.Panel{
		XLabel: "Category", YLabel: "Value (units)",
		X: chart.Between(-0.6, 4.6), Y: chart.Between(0, 50),
		XTicks: style.LabeledTicks(categories...), YTicks: style.Step(10),
		Layers: []chart.Layer{chart.Bars{
			Values: []float64{25, 32, 28, 41, 35}, Errors: []float64{3, 4, 2, 5, 3},
			Width: 0.6, Color: style.MustColor("steelblue"), Edge: style.MustColor("black"),
			EdgeWidth: 1.5, Alpha: 0.8, Capsize: 5,
		}},
	})
}

func groupedBarChart(series.Series) chart.Figure {
	groups := []struct {
		label  string
		color  string
		values []float64
		errors []float64
	}{
		{"Group 1", "steelblue", []float64{25, 32, 28, 41, 35}, []float64{3, 4, 2, 5, 3}},
		{"Group 2", "coral", []float64{30, 28, 35, 38, 40}, []float64{2, 3, 4, 3, 4}},
		{"Group 3", "lightgreen", []float64{22, 35, 30, 43, 32}, []float64{4, 2, 3, 4, 2}},
	}
	const width = 0.25

	pn := chart.Panel{
		XLabel: "Category", YLabel: "Value (units)",
		X: chart.Between(-0.6, 4.6), Y: chart.Between(0, 50),
		XTicks: style.LabeledTicks(categories...), YTicks: style.Step(10),
		Legend: chart.Legend{Show: true, Top: true},
	}
	for i, g := range groups {
		pn.Layers = append(pn.Layers, chart.Bars{
			Values: g.values, Errors: g.errors, Offset: float64(i-1) * width, Width: width,
			Label: g.label, Color: style.MustColor(g.color), Edge: style.MustColor("black"),
			EdgeWidth: 1.2, Capsize: 4,
		})
	}
	return chart.Single(pn)
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi
}
