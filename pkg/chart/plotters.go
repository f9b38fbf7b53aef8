package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubfig/pkg/style"
)

// frame draws the box around the data area and the inward tick marks on it.
// It is added last so the box sits on top of filled layers.
type frame struct {
	mirrorX bool // ticks on the top edge
	mirrorY bool // ticks on the right edge
}

func (f *frame) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	box := draw.LineStyle{Color: color.Black, Width: vg.Points(style.AxisLineWidth)}
	c.StrokeLines(box, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y}, {X: c.Max.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Max.Y}, {X: c.Min.X, Y: c.Max.Y},
		{X: c.Min.X, Y: c.Min.Y},
	})

	for _, t := range visibleTicks(p.X) {
		x := trX(t.Value)
		ls, l := tickStyle(t)
		c.StrokeLine2(ls, x, c.Min.Y, x, c.Min.Y+l)
		if f.mirrorX {
			c.StrokeLine2(ls, x, c.Max.Y, x, c.Max.Y-l)
		}
	}
	for _, t := range visibleTicks(p.Y) {
		y := trY(t.Value)
		ls, l := tickStyle(t)
		c.StrokeLine2(ls, c.Min.X, y, c.Min.X+l, y)
		if f.mirrorY {
			c.StrokeLine2(ls, c.Max.X, y, c.Max.X-l, y)
		}
	}
}

func visibleTicks(ax plot.Axis) []plot.Tick {
	var out []plot.Tick
	for _, t := range ax.Tick.Marker.Ticks(ax.Min, ax.Max) {
		if t.Value >= ax.Min && t.Value <= ax.Max {
			out = append(out, t)
		}
	}
	return out
}

func tickStyle(t plot.Tick) (draw.LineStyle, vg.Length) {
	if t.IsMinor() {
		return draw.LineStyle{Color: color.Black, Width: vg.Points(style.MinorTickWidth)}, vg.Points(style.MinorTickLength)
	}
	return draw.LineStyle{Color: color.Black, Width: vg.Points(style.MajorTickWidth)}, vg.Points(style.MajorTickLength)
}

// minorGrid draws grid lines at the minor ticks; plotter.Grid covers the
// major ones.
type minorGrid struct {
	style draw.LineStyle
}

func (g *minorGrid) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, t := range visibleTicks(p.X) {
		if t.IsMinor() {
			x := trX(t.Value)
			c.StrokeLine2(g.style, x, c.Min.Y, x, c.Max.Y)
		}
	}
	for _, t := range visibleTicks(p.Y) {
		if t.IsMinor() {
			y := trY(t.Value)
			c.StrokeLine2(g.style, c.Min.X, y, c.Max.X, y)
		}
	}
}

// refLine spans the whole data area at a fixed x (vertical) or y.
type refLine struct {
	vertical bool
	value    float64
	style    draw.LineStyle
}

func (r *refLine) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	if r.vertical {
		x := trX(r.value)
		if c.ContainsX(x) {
			c.StrokeLine2(r.style, x, c.Min.Y, x, c.Max.Y)
		}
		return
	}
	y := trY(r.value)
	if c.ContainsY(y) {
		c.StrokeLine2(r.style, c.Min.X, y, c.Max.X, y)
	}
}

// DataRange keeps the line's position inside the axis without affecting
// the other axis.
func (r *refLine) DataRange() (xmin, xmax, ymin, ymax float64) {
	return along(r.vertical, r.value, r.value)
}

func (r *refLine) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	c.StrokeLine2(r.style, c.Min.X, y, c.Max.X, y)
}

// span shades the data area between two x (vertical) or y values.
type span struct {
	vertical bool
	from, to float64
	fill     color.Color
}

func (s *span) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	var pts []vg.Point
	if s.vertical {
		x0, x1 := trX(s.from), trX(s.to)
		pts = rect(x0, c.Min.Y, x1, c.Max.Y)
	} else {
		y0, y1 := trY(s.from), trY(s.to)
		pts = rect(c.Min.X, y0, c.Max.X, y1)
	}
	if clipped := c.ClipPolygonXY(pts); len(clipped) > 0 {
		c.FillPolygon(s.fill, clipped)
	}
}

func (s *span) DataRange() (xmin, xmax, ymin, ymax float64) {
	return along(s.vertical, math.Min(s.from, s.to), math.Max(s.from, s.to))
}

func (s *span) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.fill, rect(c.Min.X, c.Min.Y, c.Max.X, c.Max.Y))
}

// along returns a data range that only constrains x (vertical) or y.
func along(vertical bool, lo, hi float64) (xmin, xmax, ymin, ymax float64) {
	inf := math.Inf(1)
	if vertical {
		return lo, hi, inf, -inf
	}
	return inf, -inf, lo, hi
}

func rect(x0, y0, x1, y1 vg.Length) []vg.Point {
	return []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// barPlotter draws one bar per value, centered on x = i + offset.
type barPlotter struct {
	values []float64
	offset float64
	width  float64
	fill   color.Color
	edge   draw.LineStyle
}

func (b *barPlotter) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for i, v := range b.values {
		x := float64(i) + b.offset
		pts := rect(trX(x-b.width/2), trY(0), trX(x+b.width/2), trY(v))
		clipped := c.ClipPolygonXY(pts)
		if len(clipped) == 0 {
			continue
		}
		c.FillPolygon(b.fill, clipped)
		if b.edge.Color != nil {
			c.StrokeLines(b.edge, c.ClipLinesXY(append(pts, pts[0]))...)
		}
	}
}

func (b *barPlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin = b.offset - b.width/2
	xmax = float64(len(b.values)-1) + b.offset + b.width/2
	for _, v := range b.values {
		ymin = math.Min(ymin, v)
		ymax = math.Max(ymax, v)
	}
	return xmin, xmax, ymin, ymax
}

func (b *barPlotter) Thumbnail(c *draw.Canvas) {
	pts := rect(c.Min.X, c.Min.Y, c.Max.X, c.Max.Y)
	c.FillPolygon(b.fill, pts)
	if b.edge.Color != nil {
		c.StrokeLines(b.edge, append(pts, pts[0]))
	}
}

// arrow is a straight line with a filled triangular head at to, and at from
// as well when double is set.
type arrow struct {
	from, to plotter.XY
	double   bool
	style    draw.LineStyle
	head     vg.Length
}

func (a *arrow) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	tail := vg.Point{X: trX(a.from.X), Y: trY(a.from.Y)}
	tip := vg.Point{X: trX(a.to.X), Y: trY(a.to.Y)}

	start, end := tail, a.drawHead(&c, tail, tip)
	if a.double {
		start = a.drawHead(&c, tip, tail)
	}
	c.StrokeLine2(a.style, start.X, start.Y, end.X, end.Y)
}

// drawHead fills the head at tip and returns the point the shaft should
// stop at.
func (a *arrow) drawHead(c *draw.Canvas, tail, tip vg.Point) vg.Point {
	dx, dy := float64(tip.X-tail.X), float64(tip.Y-tail.Y)
	d := math.Hypot(dx, dy)
	if d == 0 {
		return tip
	}
	ux, uy := dx/d, dy/d
	h := float64(a.head)
	back := vg.Point{X: tip.X - vg.Length(ux*h), Y: tip.Y - vg.Length(uy*h)}
	w := 0.4 * h
	c.FillPolygon(a.style.Color, []vg.Point{
		tip,
		{X: back.X - vg.Length(uy*w), Y: back.Y + vg.Length(ux*w)},
		{X: back.X + vg.Length(uy*w), Y: back.Y - vg.Length(ux*w)},
	})
	return back
}

// rightAxis draws the ticks and labels of a secondary y axis along the
// right edge of the data area. Values in [lo, hi] map linearly onto the
// plot's y range.
type rightAxis struct {
	lo, hi float64
	ticks  plot.Ticker
	label  string
	color  color.Color
	cfg    style.RenderConfig
}

func (r *rightAxis) toPrimary(p *plot.Plot) func(float64) float64 {
	return linearMap(r.lo, r.hi, p.Y.Min, p.Y.Max)
}

func (r *rightAxis) Plot(c draw.Canvas, p *plot.Plot) {
	_, trY := p.Transforms(&c)
	f := r.toPrimary(p)

	ts := r.cfg.TickStyle()
	ts.XAlign, ts.YAlign = text.XLeft, text.YCenter
	ts.Color = r.color
	gap := vg.Points(style.MajorTickLength / 2)

	var widest vg.Length
	for _, t := range r.ticks.Ticks(r.lo, r.hi) {
		if t.Value < r.lo || t.Value > r.hi {
			continue
		}
		y := trY(f(t.Value))
		ls, l := tickStyle(t)
		ls.Color = r.color
		c.StrokeLine2(ls, c.Max.X, y, c.Max.X-l, y)
		if t.IsMinor() {
			continue
		}
		c.FillText(ts, vg.Point{X: c.Max.X + gap, Y: y}, t.Label)
		widest = max(widest, ts.Width(t.Label))
	}

	if r.label == "" {
		return
	}
	ls := r.cfg.LabelStyle()
	ls.Color = r.color
	ls.Rotation = math.Pi / 2
	ls.XAlign, ls.YAlign = text.XCenter, text.YTop
	x := c.Max.X + 2*gap + widest
	c.FillText(ls, vg.Point{X: x, Y: (c.Min.Y + c.Max.Y) / 2}, r.label)
}

// reserve is the width the axis needs to the right of the data area.
func (r *rightAxis) reserve() vg.Length {
	ts := r.cfg.TickStyle()
	var widest vg.Length
	for _, t := range r.ticks.Ticks(r.lo, r.hi) {
		if !t.IsMinor() {
			widest = max(widest, ts.Width(t.Label))
		}
	}
	gap := vg.Points(style.MajorTickLength / 2)
	w := 2*gap + widest
	if r.label != "" {
		w += r.cfg.LabelStyle().Height(r.label) + gap
	}
	return w
}

// linearMap maps [a0, a1] onto [b0, b1].
func linearMap(a0, a1, b0, b1 float64) func(float64) float64 {
	scale := (b1 - b0) / (a1 - a0)
	return func(v float64) float64 { return b0 + (v-a0)*scale }
}

var (
	_ plot.Plotter     = (*frame)(nil)
	_ plot.Plotter     = (*minorGrid)(nil)
	_ plot.DataRanger  = (*refLine)(nil)
	_ plot.Thumbnailer = (*refLine)(nil)
	_ plot.DataRanger  = (*span)(nil)
	_ plot.Thumbnailer = (*span)(nil)
	_ plot.DataRanger  = (*barPlotter)(nil)
	_ plot.Thumbnailer = (*barPlotter)(nil)
	_ plot.Plotter     = (*arrow)(nil)
	_ plot.Plotter     = (*rightAxis)(nil)
)
