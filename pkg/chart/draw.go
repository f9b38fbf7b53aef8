package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/style"
)

// ApplyStyle sets fonts, paddings and axis lines of p to the profile in cfg.
// gonum's own axis lines and tick marks are made invisible: the frame
// plotter added by the renderer draws the box and inward ticks instead.
// Their widths stay positive so gonum still reserves the gap between the
// tick labels and the frame.
func ApplyStyle(p *plot.Plot, cfg style.RenderConfig) {
	hidden := draw.LineStyle{Color: color.Transparent, Width: vg.Points(style.AxisLineWidth)}

	cfg.SetFont(&p.Title.TextStyle, cfg.FontSize)
	p.Title.Padding = vg.Points(cfg.FontSize / 2)

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		cfg.SetFont(&ax.Label.TextStyle, cfg.FontSize)
		cfg.SetFont(&ax.Tick.Label, cfg.TickLabelSize())
		ax.Label.Padding = vg.Points(cfg.FontSize * 0.3)
		ax.Padding = 0
		ax.LineStyle = hidden
		ax.Tick.LineStyle = hidden
		ax.Tick.Length = vg.Points(style.MajorTickLength / 2)
	}

	cfg.SetFont(&p.Legend.TextStyle, cfg.LegendSize())
	p.Legend.ThumbnailWidth = vg.Points(cfg.LegendSize() * 2)
	p.Legend.Padding = vg.Points(cfg.LegendSize() * 0.2)
}

func drawFigure(c draw.Canvas, fig Figure, cfg style.RenderConfig) error {
	rows, cols := fig.dims()
	if len(fig.Panels) == 0 {
		return errors.New(errors.ErrCodeRenderFailure, "figure %q has no panels", fig.Name)
	}
	if len(fig.Panels) > rows*cols {
		return errors.New(errors.ErrCodeInvalidInput, "figure %q has %d panels for a %dx%d grid",
			fig.Name, len(fig.Panels), rows, cols)
	}

	pad := vg.Points(cfg.FontSize * 0.5)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: 2 * pad, PadY: 2 * pad,
		PadTop: pad, PadRight: pad,
		PadBottom: pad / 2, PadLeft: pad / 2,
	}
	for i, pn := range fig.Panels {
		tile := tiles.At(c, i%cols, i/cols)
		if pn.Tag != "" {
			ts := cfg.LabelStyle()
			ts.XAlign, ts.YAlign = text.XLeft, text.YTop
			tile.FillText(ts, vg.Point{X: tile.Min.X, Y: tile.Max.Y}, pn.Tag)
			tile = draw.Crop(tile, 0, 0, 0, -ts.Height(pn.Tag))
		}
		if err := drawPanel(tile, pn, cfg); err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
	}
	return nil
}

func drawPanel(c draw.Canvas, pn Panel, cfg style.RenderConfig) error {
	p := plot.New()
	ApplyStyle(p, cfg)
	p.Title.Text = pn.Title
	p.X.Label.Text = pn.XLabel
	p.Y.Label.Text = pn.YLabel

	if pn.XLog {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if pn.YLog {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if pn.XTicks != nil {
		p.X.Tick.Marker = pn.XTicks
	}
	if pn.YTicks != nil {
		p.Y.Tick.Marker = pn.YTicks
	}

	if pn.Grid != nil {
		if err := addGrid(p, *pn.Grid, cfg); err != nil {
			return err
		}
	}

	noLegend := p.Legend
	for i, l := range pn.Layers {
		if err := l.Add(p, cfg); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}

	var right *rightAxis
	if pn.Right != nil {
		var err error
		if right, err = addRight(p, pn, cfg); err != nil {
			return err
		}
	}

	if pn.Legend.Show {
		inset := vg.Points(cfg.FontSize / 3)
		p.Legend.Left, p.Legend.Top = pn.Legend.Left, pn.Legend.Top
		if pn.Legend.Scale > 0 {
			cfg.SetFont(&p.Legend.TextStyle, pn.Legend.Scale*cfg.FontSize)
		}
		p.Legend.XOffs, p.Legend.YOffs = -inset, inset
		if pn.Legend.Left {
			p.Legend.XOffs = inset
		}
		if pn.Legend.Top {
			p.Legend.YOffs = -inset
		}
	} else {
		p.Legend = noLegend
	}

	if pn.X.Set() {
		p.X.Min, p.X.Max = pn.X.Min, pn.X.Max
	}
	if pn.Y.Set() {
		p.Y.Min, p.Y.Max = pn.Y.Min, pn.Y.Max
	}

	p.Add(&frame{mirrorX: cfg.MirrorTicks, mirrorY: cfg.MirrorTicks && right == nil})

	var reserve vg.Length
	if right != nil {
		p.Add(right)
		reserve += right.reserve()
	}
	var cb *colorBar
	if pn.ColorBar != nil {
		var ok bool
		if cb, ok = newColorBar(pn.ColorBar, pn.Layers, cfg); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "colorbar needs a layer with a color scale")
		}
		reserve += cb.width()
	}

	main := c
	if reserve > 0 {
		main = draw.Crop(c, 0, -reserve, 0, 0)
	}
	p.Draw(main)

	if cb != nil {
		data := p.DataCanvas(main)
		strip := draw.Crop(c, c.Size().X-cb.width(), 0, 0, 0)
		cb.draw(strip, data.Min.Y, data.Max.Y)
	}
	return nil
}

// addRight draws the secondary axis layers, remapped onto the primary y
// range, and returns the plotter for the axis itself.
func addRight(p *plot.Plot, pn Panel, cfg style.RenderConfig) (*rightAxis, error) {
	r := pn.Right
	if !pn.Y.Set() || !r.Range.Set() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "a secondary axis needs fixed left and right y ranges")
	}
	ticks := r.Ticks
	if ticks == nil {
		ticks = plot.DefaultTicks{}
	}
	ax := &rightAxis{lo: r.Range.Min, hi: r.Range.Max, ticks: ticks, label: r.Label, color: colorOr(r.Color, color.Black), cfg: cfg}

	f := linearMap(ax.lo, ax.hi, pn.Y.Min, pn.Y.Max)
	for i, l := range r.Layers {
		rm, ok := l.(remappable)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "layer %T cannot be drawn on a secondary axis", l)
		}
		if err := rm.remap(f).Add(p, cfg); err != nil {
			return nil, fmt.Errorf("right layer %d: %w", i, err)
		}
	}
	return ax, nil
}

func addGrid(p *plot.Plot, g Grid, cfg style.RenderConfig) error {
	col, err := style.Color(orName(g.Color, "gray"))
	if err != nil {
		return err
	}
	ls, err := lineStyle(alpha(col, orFloat(g.Alpha, 0.3)), g.Dashes, orFloat(g.Width, 0.8), cfg)
	if err != nil {
		return err
	}
	gr := plotter.NewGrid()
	gr.Vertical, gr.Horizontal = ls, ls
	p.Add(gr)
	if g.Minor {
		minor, err := lineStyle(alpha(col, orFloat(g.Alpha, 0.3)*2/3), ":", orFloat(g.Width, 0.8)*5/8, cfg)
		if err != nil {
			return err
		}
		p.Add(&minorGrid{style: minor})
	}
	return nil
}
