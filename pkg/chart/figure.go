// Package chart turns declarative figure descriptions into gonum/plot drawings.
//
// A [Figure] is a grid of [Panel]s; each panel is a stack of [Layer]s drawn on
// one pair of axes. Layers are thin, stateless mappings onto gonum plotters:
// all geometry, text layout and file encoding is delegated to gonum/plot.
//
// Every panel gets the same cosmetic profile from a [style.RenderConfig]:
// label and tick-label font sizes, inward major and minor ticks, optional
// mirrored ticks on the top and right edges.
//
//	fig := chart.Single(chart.Panel{
//	    XLabel: "x", YLabel: "y",
//	    Layers: []chart.Layer{chart.Lines{Data: s, Color: style.MustColor("b")}},
//	})
//	path, err := chart.Save(fig, style.Default().WithOutput("line.pdf"))
package chart

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
)

// Figure is a grid of panels rendered onto one page.
type Figure struct {
	Name   string
	Rows   int // zero means 1
	Cols   int // zero means 1
	Panels []Panel
}

// Single wraps one panel in a 1x1 figure.
func Single(p Panel) Figure {
	return Figure{Rows: 1, Cols: 1, Panels: []Panel{p}}
}

func (f Figure) dims() (rows, cols int) {
	rows, cols = max(f.Rows, 1), max(f.Cols, 1)
	return rows, cols
}

// Panel is one set of axes.
type Panel struct {
	Title  string
	Tag    string // panel letter drawn above the top-left corner, e.g. "(a)"
	XLabel string
	YLabel string

	X, Y Range

	// XTicks and YTicks override the default tick placement.
	XTicks, YTicks plot.Ticker

	XLog, YLog bool

	Grid   *Grid
	Legend Legend

	Layers []Layer

	// ColorBar draws a colorbar to the right of the panel for the first
	// layer that carries a color scale.
	ColorBar *ColorBar

	// Right adds a secondary y axis on the right edge.
	Right *RightAxis
}

// Range is an axis interval. The zero value lets the data decide.
type Range struct {
	Min, Max float64
}

// Between returns the range [min, max].
func Between(min, max float64) Range { return Range{Min: min, Max: max} }

// Set reports whether the range is usable as fixed limits.
func (r Range) Set() bool { return r.Max > r.Min }

// Grid draws background grid lines at the major ticks, and optionally at the
// minor ticks as well.
type Grid struct {
	Color  string  // zero means gray
	Dashes string  // "-", "--", ":"
	Alpha  float64 // zero means 0.3
	Width  float64 // points, zero means 0.8
	Minor  bool
}

// Legend places the legend inside the data area.
type Legend struct {
	Show  bool
	Left  bool    // default right
	Top   bool    // default bottom
	Scale float64 // font size relative to the config font size; zero means the legend size
}

// ColorBar describes a colorbar.
type ColorBar struct {
	Label string
	Ticks plot.Ticker // nil means automatic
}

// RightAxis is a secondary y axis. Its layers are drawn in the right axis'
// coordinates, which are mapped linearly onto the panel's fixed Y range.
type RightAxis struct {
	Label  string
	Range  Range
	Ticks  plot.Ticker
	Color  color.Color // ticks and labels; nil means black
	Layers []Layer
}

// scaled is implemented by layers that color data through a colormap.
type scaled interface {
	colorScale() (cm palette.ColorMap, bands int, ok bool)
}
