package gallery

import (
	"math"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

const (
	xLabel = "X variable (units)"
	yLabel = "Y variable (units)"
)

// xyPanel is the panel the data-driven figures share: axis labels and an x
// range fitted to the data.
func xyPanel(xy series.Series) chart.Panel {
	xmin, xmax, _, _ := xy.Bounds()
	return chart.Panel{XLabel: xLabel, YLabel: yLabel, X: chart.Between(xmin, xmax)}
}

// scaledY is the data's y range with both ends multiplied by 1.1.
func scaledY(xy series.Series) chart.Range {
	_, _, ymin, ymax := xy.Bounds()
	return chart.Between(ymin*1.1, ymax*1.1)
}

func simpleXY(xy series.Series) chart.Figure {
	pn := xyPanel(xy)
	pn.Y = scaledY(xy)
	pn.Layers = []chart.Layer{chart.Lines{Data: xy, Color: style.MustColor("b")}}
	return chart.Single(pn)
}

func multiLine(xy series.Series) chart.Figure {
	xs := xy.X()
	pn := xyPanel(xy)
	pn.Layers = []chart.Layer{
		chart.Lines{Data: series.FromFunc("Data 1", xs, math.Sin), Label: "Data 1", Color: style.MustColor("r")},
		chart.Lines{Data: series.FromFunc("Data 2", xs, math.Cos), Label: "Data 2", Color: style.MustColor("b")},
		chart.Lines{Data: series.FromFunc("Data 3", xs, func(x float64) float64 { return 0.5 * math.Sin(x) }),
			Label: "Data 3", Color: style.MustColor("g")},
	}
	pn.Legend = chart.Legend{Show: true, Top: true}
	return chart.Single(pn)
}

func xyWithMarkers(xy series.Series) chart.Figure {
	pn := xyPanel(xy)
	pn.Y = scaledY(xy)
	pn.Layers = []chart.Layer{chart.Lines{
		Data: xy, Label: "Measured", Color: style.MustColor("b"),
		Marker: "o", MarkEvery: 5, MarkerSize: 3,
	}}
	pn.Legend = chart.Legend{Show: true, Top: true}
	return chart.Single(pn)
}

func xyScatterFit(xy series.Series) chart.Figure {
	pn := xyPanel(xy)
	pn.Layers = []chart.Layer{
		chart.Points{
			Data: xy, Label: "Data", Color: style.MustColor("red"), Alpha: 0.6,
			Edge: style.MustColor("black"), Marker: "o", Size: markerArea(50),
		},
		chart.Fit{Data: xy, Degree: 2, Label: "Fit", Color: style.MustColor("b")},
	}
	pn.Grid = &chart.Grid{Alpha: 0.3, Dashes: "--"}
	pn.Legend = chart.Legend{Show: true, Top: true}
	return chart.Single(pn)
}

func xyCustomTicks(xy series.Series) chart.Figure {
	xmin, xmax, ymin, ymax := xy.Bounds()
	gray := style.MustColor("gray")
	pn := chart.Panel{
		XLabel: xLabel, YLabel: yLabel,
		X:      chart.Between(0, 10),
		Y:      chart.Between(-0.5, 1.0),
		XTicks: style.PrecTicks(1, numeric.Linspace(xmin, xmax, 6)...),
		YTicks: style.PrecTicks(2, numeric.Linspace(ymin, ymax, 6)...),
		Layers: []chart.Layer{
			chart.Lines{Data: xy, Color: style.MustColor("k")},
			chart.RefLine{Value: 0, Color: gray, Dashes: "--", Width: 1, Alpha: 0.5},
			chart.RefLine{Vertical: true, Value: 5, Color: gray, Dashes: "--", Width: 1, Alpha: 0.5},
		},
	}
	return chart.Single(pn)
}

// markerArea converts a marker area in square points to a glyph radius.
func markerArea(area float64) float64 {
	return math.Sqrt(area) / 2
}
