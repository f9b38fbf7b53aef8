package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

// Contour draws a filled contour plot of a grid: the z range is split into
// Levels equal bands, each filled with one colormap color. Black contour
// lines are drawn on top at the z values in Lines.
type Contour struct {
	Grid      series.Grid
	Levels    int    // zero means 20
	ColorMap  string // zero means viridis
	Alpha     float64
	Lines     []float64
	LineWidth float64 // zero means 0.5
}

// LevelLines returns every step-th of the n+1 band boundaries of g, the
// levels a contour plot with n bands draws lines at.
func LevelLines(g series.Grid, n, step int) []float64 {
	lo, hi := g.Range()
	bounds := numeric.Linspace(lo, hi, n+1)
	var out []float64
	for i := 0; i < len(bounds); i += max(step, 1) {
		out = append(out, bounds[i])
	}
	return out
}

// Add implements Layer.
func (ct Contour) Add(p *plot.Plot, cfg style.RenderConfig) error {
	cm, n, err := ct.scale()
	if err != nil {
		return err
	}
	lo, hi := cm.Min(), cm.Max()
	colors := style.Levels(cm, n)
	if ct.Alpha > 0 && ct.Alpha < 1 {
		for i, c := range colors {
			colors[i] = style.WithAlpha(c, ct.Alpha)
		}
	}

	hm := plotter.NewHeatMap(bandedGrid{Grid: ct.Grid, lo: lo, hi: hi, n: n}, style.Palette(colors))
	hm.Min, hm.Max = lo, hi
	p.Add(hm)

	return contourLines(p, ct.Grid, ct.Lines, ct.LineWidth)
}

func (ct Contour) scale() (palette.ColorMap, int, error) {
	if ct.Grid.Empty() {
		return nil, 0, errors.New(errors.ErrCodeInvalidInput, "contour needs a non-empty grid")
	}
	lo, hi := ct.Grid.Range()
	if !(hi > lo) {
		return nil, 0, errors.New(errors.ErrCodeNumericDegeneracy, "contour of a constant field (z = %v)", lo)
	}
	cm, err := style.ColorMap(orName(ct.ColorMap, "viridis"), lo, hi)
	if err != nil {
		return nil, 0, err
	}
	return cm, orInt(ct.Levels, 20), nil
}

func (ct Contour) colorScale() (palette.ColorMap, int, bool) {
	cm, n, err := ct.scale()
	if err != nil {
		return nil, 0, false
	}
	return style.NewDiscrete(style.Levels(cm, n), cm.Min(), cm.Max()), n, true
}

// bandedGrid snaps every z value to the midpoint of its band so a heat map
// over n colors renders as n flat contour bands.
type bandedGrid struct {
	series.Grid
	lo, hi float64
	n      int
}

func (g bandedGrid) Z(c, r int) float64 {
	v := g.Grid.Z(c, r)
	if math.IsNaN(v) {
		return v
	}
	w := (g.hi - g.lo) / float64(g.n)
	k := math.Floor((v - g.lo) / w)
	k = math.Max(0, math.Min(float64(g.n-1), k))
	return g.lo + (k+0.5)*w
}

// Heatmap draws a grid as colored cells. Values outside [Min, Max] are
// drawn white; a zero range uses the data range. Lines, if any, are z
// levels at which black contour lines are drawn over the cells.
type Heatmap struct {
	Grid      series.Grid
	ColorMap  string // zero means coolwarm
	Min, Max  float64
	Lines     []float64
	LineWidth float64
}

// Add implements Layer.
func (h Heatmap) Add(p *plot.Plot, cfg style.RenderConfig) error {
	cm, err := h.scale()
	if err != nil {
		return err
	}
	hm := plotter.NewHeatMap(h.Grid, cm.Palette(256))
	hm.Min, hm.Max = cm.Min(), cm.Max()
	hm.Underflow, hm.Overflow = color.White, color.White
	hm.NaN = color.Transparent
	p.Add(hm)

	return contourLines(p, h.Grid, h.Lines, h.LineWidth)
}

func (h Heatmap) scale() (palette.ColorMap, error) {
	if h.Grid.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "heatmap needs a non-empty grid")
	}
	lo, hi := h.Min, h.Max
	if !(hi > lo) {
		lo, hi = h.Grid.Range()
	}
	if !(hi > lo) {
		return nil, errors.New(errors.ErrCodeNumericDegeneracy, "heatmap of a constant field (z = %v)", lo)
	}
	return style.ColorMap(orName(h.ColorMap, "coolwarm"), lo, hi)
}

func (h Heatmap) colorScale() (palette.ColorMap, int, bool) {
	cm, err := h.scale()
	return cm, 0, err == nil
}

func contourLines(p *plot.Plot, g series.Grid, levels []float64, width float64) error {
	if len(levels) == 0 {
		return nil
	}
	c := plotter.NewContour(g, levels, style.Palette{color.Black})
	c.LineStyles = []draw.LineStyle{{Color: color.Black, Width: vg.Points(orFloat(width, 0.5))}}
	p.Add(c)
	return nil
}

func orName(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var (
	_ scaled = Contour{}
	_ scaled = Heatmap{}
	_ scaled = Points{}
)
