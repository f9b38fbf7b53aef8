package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubfig/pkg/style"
)

// continuousSteps is how many slices a continuous colorbar is drawn with.
const continuousSteps = 256

// colorBar is a vertical colorbar for a colormap, drawn in a strip to the
// right of a panel and aligned with its data area.
type colorBar struct {
	cm    palette.ColorMap
	bands int // zero means continuous
	label string
	ticks plot.Ticker
	cfg   style.RenderConfig
}

func newColorBar(cb *ColorBar, layers []Layer, cfg style.RenderConfig) (*colorBar, bool) {
	for _, l := range layers {
		s, ok := l.(scaled)
		if !ok {
			continue
		}
		if cm, bands, ok := s.colorScale(); ok {
			ticks := cb.Ticks
			if ticks == nil {
				ticks = plot.DefaultTicks{}
			}
			return &colorBar{cm: cm, bands: bands, label: cb.Label, ticks: ticks, cfg: cfg}, true
		}
	}
	return nil, false
}

func (b *colorBar) barWidth() vg.Length { return vg.Points(b.cfg.FontSize * 0.8) }

func (b *colorBar) gap() vg.Length { return vg.Points(b.cfg.FontSize * 0.6) }

// width is the horizontal space the colorbar needs, labels included.
func (b *colorBar) width() vg.Length {
	ts := b.cfg.TickStyle()
	var widest vg.Length
	for _, t := range b.ticks.Ticks(b.cm.Min(), b.cm.Max()) {
		if !t.IsMinor() {
			widest = max(widest, ts.Width(t.Label))
		}
	}
	w := b.gap() + b.barWidth() + vg.Points(style.MajorTickLength/2) + widest
	if b.label != "" {
		w += b.gap()/2 + b.cfg.LabelStyle().Height(b.label)
	}
	return w
}

// draw renders the bar into strip, spanning the vertical extent [y0, y1].
func (b *colorBar) draw(strip draw.Canvas, y0, y1 vg.Length) {
	lo, hi := b.cm.Min(), b.cm.Max()
	x0 := strip.Min.X + b.gap()
	x1 := x0 + b.barWidth()
	toY := func(v float64) vg.Length {
		return y0 + vg.Length((v-lo)/(hi-lo))*(y1-y0)
	}

	n := b.bands
	if n <= 0 {
		n = continuousSteps
	}
	step := (hi - lo) / float64(n)
	for i := 0; i < n; i++ {
		from, to := lo+float64(i)*step, lo+float64(i+1)*step
		col := mapColor(b.cm, (from+to)/2)
		// Slices overlap by a hair to avoid seams in raster output.
		top := toY(to)
		if i < n-1 {
			top += 0.25
		}
		strip.FillPolygon(col, rect(x0, toY(from), x1, top))
	}

	outline := draw.LineStyle{Color: color.Black, Width: vg.Points(style.AxisLineWidth)}
	strip.StrokeLines(outline, append(rect(x0, y0, x1, y1), vg.Point{X: x0, Y: y0}))

	ts := b.cfg.TickStyle()
	ts.XAlign, ts.YAlign = text.XLeft, text.YCenter
	pad := vg.Points(style.MajorTickLength / 2)
	var widest vg.Length
	for _, t := range b.ticks.Ticks(lo, hi) {
		if t.Value < lo || t.Value > hi || math.IsNaN(t.Value) {
			continue
		}
		y := toY(t.Value)
		ls, l := tickStyle(t)
		l = min(l, (x1-x0)/2)
		strip.StrokeLine2(ls, x1, y, x1-l, y)
		if t.IsMinor() {
			continue
		}
		strip.FillText(ts, vg.Point{X: x1 + pad, Y: y}, t.Label)
		widest = max(widest, ts.Width(t.Label))
	}

	if b.label == "" {
		return
	}
	ls := b.cfg.LabelStyle()
	ls.Rotation = math.Pi / 2
	ls.XAlign, ls.YAlign = text.XCenter, text.YTop
	strip.FillText(ls, vg.Point{X: x1 + pad + widest + b.gap()/2, Y: (y0 + y1) / 2}, b.label)
}
