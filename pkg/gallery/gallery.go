// Package gallery holds the named figures pubfig ships with.
//
// Each [Entry] reproduces one reference figure with literal defaults: its
// own figure size, font size and output file name "<name>.pdf". Figures
// that draw random data use a fixed seed, so every run renders the same
// picture.
//
// Five entries plot an x/y series supplied by the caller (normally the
// result of a dataload.Load, which falls back to a damped sine when no data
// file exists). The rest generate their own data.
package gallery

import (
	"sort"

	"github.com/matzehuels/pubfig/pkg/chart"
	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

// Seed seeds every random data set in the gallery.
const Seed = 42

// Entry is one named figure.
type Entry struct {
	Name        string
	Description string

	// NeedsData reports whether the figure plots the caller's x/y series.
	NeedsData bool

	// Config is the figure's default render profile.
	Config style.RenderConfig

	build func(xy series.Series) chart.Figure
}

// Figure builds the entry's figure. xy is only used when NeedsData is set,
// and must then be non-empty.
func (e Entry) Figure(xy series.Series) (chart.Figure, error) {
	if e.NeedsData && xy.Empty() {
		return chart.Figure{}, errors.New(errors.ErrCodeInvalidInput, "%s needs an x/y series", e.Name)
	}
	fig := e.build(xy)
	fig.Name = e.Name
	return fig, nil
}

// All returns every entry in gallery order.
func All() []Entry {
	return append([]Entry(nil), entries...)
}

// Names returns the entry names in alphabetical order.
func Names() []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}

// Lookup returns the entry called name, or NOT_FOUND.
func Lookup(name string) (Entry, error) {
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, errors.New(errors.ErrCodeNotFound, "no gallery figure named %q", name)
}

var entries = []Entry{
	{Name: "simple_xy", Description: "single line through the loaded data", NeedsData: true,
		Config: config("simple_xy", 6.5, 6, false), build: simpleXY},
	{Name: "multi_line", Description: "three trigonometric series on shared axes", NeedsData: true,
		Config: config("multi_line", 6.5, 6, false), build: multiLine},
	{Name: "xy_with_markers", Description: "line with a marker every fifth point", NeedsData: true,
		Config: config("xy_with_markers", 6.5, 6, false), build: xyWithMarkers},
	{Name: "xy_scatter_fit", Description: "scatter with a quadratic least-squares fit", NeedsData: true,
		Config: config("xy_scatter_fit", 6.5, 6, false), build: xyScatterFit},
	{Name: "xy_custom_ticks", Description: "explicit tick positions and reference lines", NeedsData: true,
		Config: config("xy_custom_ticks", 6.5, 6, false), build: xyCustomTicks},

	{Name: "line_plot", Description: "three curves with fixed limits and tick steps",
		Config: config("line_plot", 6.2, 6, true), build: linePlot},
	{Name: "scatter_plot", Description: "color-mapped scatter with a colorbar",
		Config: config("scatter_plot", 7, 6, true), build: scatterPlot},
	{Name: "histogram", Description: "normal sample with mean and one-sigma markers",
		Config: config("histogram", 7, 6, true), build: histogram},
	{Name: "errorbar", Description: "points with x and y errors and a linear trend",
		Config: config("errorbar", 7, 6, true), build: errorbar},
	{Name: "bar_chart", Description: "categorical bars with error bars",
		Config: config("bar_chart", 7, 6, true), build: barChart},
	{Name: "grouped_bar_chart", Description: "three groups of bars per category",
		Config: config("grouped_bar_chart", 8, 6, true), build: groupedBarChart},

	{Name: "contour_plot", Description: "filled contours of a sum of Gaussians",
		Config: config("contour_plot", 7, 6, true), build: contourPlot},
	{Name: "heatmap", Description: "clipped heat map with contour lines",
		Config: config("heatmap", 7, 6, true), build: heatmap},
	{Name: "dual_axis_plot", Description: "two y axes sharing one x axis",
		Config: config("dual_axis_plot", 6.2, 6, true), build: dualAxisPlot},
	{Name: "log_plot", Description: "power law and linear curves on log-log axes",
		Config: config("log_plot", 7, 6, true), build: logPlot},
	{Name: "filled_area_plot", Description: "bands, spans and annotations",
		Config: config("filled_area_plot", 7, 6, true), build: filledAreaPlot},
	{Name: "subplots", Description: "2x2 grid of line, scatter, bar and contour panels",
		Config: config("subplots", 12, 10, true).WithFontSize(20), build: subplots},
}

func config(name string, width, height float64, mirror bool) style.RenderConfig {
	return style.Default().
		WithSize(width, height).
		WithOutput(name + ".pdf").
		WithMirror(mirror)
}
