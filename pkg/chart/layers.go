package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubfig/pkg/errors"
	"github.com/matzehuels/pubfig/pkg/numeric"
	"github.com/matzehuels/pubfig/pkg/series"
	"github.com/matzehuels/pubfig/pkg/style"
)

// Layer adds one visual element to a plot.
type Layer interface {
	Add(p *plot.Plot, cfg style.RenderConfig) error
}

// remappable layers can be drawn against a secondary axis: f maps their y
// values into the primary axis' coordinates.
type remappable interface {
	remap(f func(float64) float64) Layer
}

// Lines draws a series as a polyline, optionally with markers.
type Lines struct {
	Data   series.Series
	Label  string
	Color  color.Color // nil means black
	Dashes string      // "-", "--", ":", "-."
	Width  float64     // points; zero means the config line width
	NoLine bool        // draw markers only

	Marker     string // empty means no markers unless NoLine is set
	MarkEvery  int    // draw a marker on every n-th point; zero means every point
	MarkerSize float64
}

// Add implements Layer.
func (l Lines) Add(p *plot.Plot, cfg style.RenderConfig) error {
	var thumbs []plot.Thumbnailer
	col := colorOr(l.Color, color.Black)

	if !l.NoLine {
		ls, err := lineStyle(col, l.Dashes, l.Width, cfg)
		if err != nil {
			return err
		}
		line, err := plotter.NewLine(l.Data)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "line %q", l.Label)
		}
		line.LineStyle = ls
		p.Add(line)
		thumbs = append(thumbs, line)
	}

	if l.Marker != "" || l.NoLine {
		sc, err := markers(l.Data, l.MarkEvery, l.Marker, l.MarkerSize, col, cfg)
		if err != nil {
			return err
		}
		p.Add(sc)
		thumbs = append(thumbs, sc)
	}

	if l.Label != "" {
		p.Legend.Add(l.Label, thumbs...)
	}
	return nil
}

func (l Lines) remap(f func(float64) float64) Layer {
	l.Data = l.Data.Map(func(_, y float64) float64 { return f(y) })
	return l
}

func markers(s series.Series, every int, name string, size float64, col color.Color, cfg style.RenderConfig) (*plotter.Scatter, error) {
	shape, err := style.Marker(name)
	if err != nil {
		return nil, err
	}
	every = max(every, 1)
	var pts plotter.XYs
	for i := 0; i < s.Len(); i += every {
		x, y := s.XY(i)
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "markers")
	}
	sc.GlyphStyle = draw.GlyphStyle{Color: col, Radius: markerRadius(size, cfg), Shape: shape}
	return sc, nil
}

func markerRadius(size float64, cfg style.RenderConfig) vg.Length {
	if size > 0 {
		return vg.Points(size)
	}
	return vg.Points(cfg.LineWidth * 2.5)
}

// Points draws a scatter of a series. Colors come either from Color or, when
// ColorMap is set, from mapping Values through it.
type Points struct {
	Data   series.Series
	Label  string
	Color  color.Color
	Marker string
	Size   float64 // glyph radius in points
	Alpha  float64 // zero means opaque
	Edge   color.Color

	Values   []float64
	ColorMap palette.ColorMap
}

// Add implements Layer.
func (pt Points) Add(p *plot.Plot, cfg style.RenderConfig) error {
	shape, err := style.Marker(pt.Marker)
	if err != nil {
		return err
	}
	if pt.ColorMap != nil && len(pt.Values) != pt.Data.Len() {
		return errors.New(errors.ErrCodeInvalidInput, "scatter has %d points but %d color values", pt.Data.Len(), len(pt.Values))
	}
	sc, err := plotter.NewScatter(pt.Data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "scatter %q", pt.Label)
	}
	radius := markerRadius(pt.Size, cfg)
	fill := alpha(colorOr(pt.Color, color.Black), pt.Alpha)
	sc.GlyphStyle = draw.GlyphStyle{Color: fill, Radius: radius, Shape: shape}
	if pt.ColorMap != nil {
		cm := pt.ColorMap
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: alpha(mapColor(cm, pt.Values[i]), pt.Alpha), Radius: radius, Shape: shape}
		}
	}
	p.Add(sc)
	thumbs := []plot.Thumbnailer{sc}

	if pt.Edge != nil {
		edge, err := plotter.NewScatter(pt.Data)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "scatter edges")
		}
		edge.GlyphStyle = draw.GlyphStyle{Color: pt.Edge, Radius: radius, Shape: outline(pt.Marker)}
		p.Add(edge)
		thumbs = append(thumbs, edge)
	}
	if pt.Label != "" {
		p.Legend.Add(pt.Label, thumbs...)
	}
	return nil
}

func (pt Points) remap(f func(float64) float64) Layer {
	pt.Data = pt.Data.Map(func(_, y float64) float64 { return f(y) })
	return pt
}

func (pt Points) colorScale() (palette.ColorMap, int, bool) {
	return pt.ColorMap, 0, pt.ColorMap != nil
}

func outline(marker string) draw.GlyphDrawer {
	switch marker {
	case "s":
		return draw.SquareGlyph{}
	case "^":
		return draw.TriangleGlyph{}
	}
	return draw.RingGlyph{}
}

// mapColor clamps v into the colormap range before looking it up.
func mapColor(cm palette.ColorMap, v float64) color.Color {
	v = math.Max(cm.Min(), math.Min(cm.Max(), v))
	c, err := cm.At(v)
	if err != nil {
		return color.Transparent
	}
	return c
}

// Fit overlays a least-squares polynomial fit of Data. The fit is evaluated
// at the data's x values, or at Samples evenly spaced points across the x
// range when Samples is set.
type Fit struct {
	Data    series.Series
	Degree  int
	Samples int
	Label   string
	Color   color.Color
	Dashes  string
	Width   float64
}

// Add implements Layer. A degenerate fit is fatal.
func (f Fit) Add(p *plot.Plot, cfg style.RenderConfig) error {
	poly, err := numeric.PolyFit(f.Data.X(), f.Data.Y(), f.Degree)
	if err != nil {
		return err
	}
	xs := f.Data.X()
	if f.Samples > 1 {
		xmin, xmax, _, _ := f.Data.Bounds()
		xs = numeric.Linspace(xmin, xmax, f.Samples)
	}
	label := f.Label
	if label == "" {
		label = FitLabel(poly)
	}
	return Lines{
		Data:   series.FromFunc(label, xs, poly.Eval),
		Label:  label,
		Color:  f.Color,
		Dashes: f.Dashes,
		Width:  f.Width,
	}.Add(p, cfg)
}

// FitLabel describes a fitted polynomial, e.g. "Fit: y = 2.00x + 5.00".
func FitLabel(p numeric.Poly) string {
	c := p.Descending()
	switch len(c) {
	case 2:
		return fmt.Sprintf("Fit: y = %.2fx %+.2f", c[0], c[1])
	case 3:
		return fmt.Sprintf("Fit: y = %.2fx² %+.2fx %+.2f", c[0], c[1], c[2])
	}
	return fmt.Sprintf("Fit (degree %d)", p.Degree())
}

// Bars draws one bar per value at x = i + Offset.
type Bars struct {
	Values    []float64
	Errors    []float64 // symmetric error per bar; optional
	Offset    float64   // shift in data units, used for grouped bars
	Width     float64   // bar width in data units; zero means 0.8
	Label     string
	Color     color.Color
	Edge      color.Color
	EdgeWidth float64 // points; zero means 1.5
	Alpha     float64
	Capsize   float64 // error bar cap half-width in points; zero means 5
}

// Add implements Layer.
func (b Bars) Add(p *plot.Plot, cfg style.RenderConfig) error {
	if len(b.Errors) > 0 && len(b.Errors) != len(b.Values) {
		return errors.New(errors.ErrCodeInvalidInput, "bars have %d values but %d errors", len(b.Values), len(b.Errors))
	}
	bp := &barPlotter{
		values: b.Values,
		offset: b.Offset,
		width:  orFloat(b.Width, 0.8),
		fill:   alpha(colorOr(b.Color, style.MustColor("steelblue")), b.Alpha),
		edge:   draw.LineStyle{Color: b.Edge, Width: vg.Points(orFloat(b.EdgeWidth, 1.5))},
	}
	p.Add(bp)
	if b.Label != "" {
		p.Legend.Add(b.Label, bp)
	}
	if len(b.Errors) == 0 {
		return nil
	}

	pts := errPoints{XYs: make(plotter.XYs, len(b.Values)), YErrors: make(plotter.YErrors, len(b.Values))}
	for i, v := range b.Values {
		pts.XYs[i] = plotter.XY{X: float64(i) + b.Offset, Y: v}
		pts.YErrors[i].Low, pts.YErrors[i].High = b.Errors[i], b.Errors[i]
	}
	eb, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "bar errors")
	}
	eb.LineStyle = draw.LineStyle{Color: color.Black, Width: vg.Points(orFloat(b.EdgeWidth, 1.5))}
	eb.CapWidth = vg.Points(2 * orFloat(b.Capsize, 5))
	p.Add(eb)
	return nil
}

type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

type xyErrPoints struct {
	plotter.XYs
	plotter.YErrors
	plotter.XErrors
}

// Hist draws a histogram of Values. With Stats set it also marks the mean
// and the mean plus and minus one standard deviation.
type Hist struct {
	Values    []float64
	Bins      int // zero means 30
	Label     string
	Color     color.Color
	Edge      color.Color
	EdgeWidth float64 // points; zero means 1.2
	Alpha     float64
	Stats     bool
}

// Add implements Layer.
func (h Hist) Add(p *plot.Plot, cfg style.RenderConfig) error {
	hist, err := plotter.NewHist(plotter.Values(h.Values), orInt(h.Bins, 30))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "histogram")
	}
	hist.FillColor = alpha(colorOr(h.Color, style.MustColor("steelblue")), h.Alpha)
	hist.LineStyle = draw.LineStyle{Color: colorOr(h.Edge, color.Black), Width: vg.Points(orFloat(h.EdgeWidth, 1.2))}
	p.Add(hist)
	if h.Label != "" {
		p.Legend.Add(h.Label, hist)
	}
	if !h.Stats {
		return nil
	}

	s, err := numeric.Describe(h.Values)
	if err != nil {
		return err
	}
	marks := []Layer{
		RefLine{Vertical: true, Value: s.Mean, Color: style.MustColor("red"), Dashes: "--",
			Label: fmt.Sprintf("Mean = %.2f", s.Mean)},
		RefLine{Vertical: true, Value: s.Mean - s.StdDev, Color: style.MustColor("orange"), Dashes: ":",
			Label: fmt.Sprintf("±1σ = %.2f", s.StdDev)},
		RefLine{Vertical: true, Value: s.Mean + s.StdDev, Color: style.MustColor("orange"), Dashes: ":"},
	}
	for _, m := range marks {
		if err := m.Add(p, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ErrorBars draws points with y (and optionally x) error bars.
type ErrorBars struct {
	Data     series.Series
	YErr     []float64
	XErr     []float64
	Label    string
	Color    color.Color // markers
	BarColor color.Color // error bars; nil means Color
	Marker   string
	Size     float64
	Capsize  float64 // cap half-width in points; zero means 5
}

// Add implements Layer.
func (e ErrorBars) Add(p *plot.Plot, cfg style.RenderConfig) error {
	n := e.Data.Len()
	if len(e.YErr) != n || (len(e.XErr) > 0 && len(e.XErr) != n) {
		return errors.New(errors.ErrCodeInvalidInput, "error bars need one error per point (%d points)", n)
	}
	col := colorOr(e.Color, style.MustColor("steelblue"))
	pts := xyErrPoints{
		XYs:     make(plotter.XYs, n),
		YErrors: make(plotter.YErrors, n),
		XErrors: make(plotter.XErrors, n),
	}
	for i := 0; i < n; i++ {
		pts.XYs[i].X, pts.XYs[i].Y = e.Data.XY(i)
		pts.YErrors[i].Low, pts.YErrors[i].High = e.YErr[i], e.YErr[i]
		if len(e.XErr) > 0 {
			pts.XErrors[i].Low, pts.XErrors[i].High = e.XErr[i], e.XErr[i]
		}
	}
	ls := draw.LineStyle{Color: colorOr(e.BarColor, col), Width: vg.Points(cfg.LineWidth * 0.75)}
	capw := vg.Points(2 * orFloat(e.Capsize, 5))

	yb, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "y error bars")
	}
	yb.LineStyle, yb.CapWidth = ls, capw
	p.Add(yb)
	if len(e.XErr) > 0 {
		xb, err := plotter.NewXErrorBars(pts)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "x error bars")
		}
		xb.LineStyle, xb.CapWidth = ls, capw
		p.Add(xb)
	}

	sc, err := markers(e.Data, 1, e.Marker, e.Size, col, cfg)
	if err != nil {
		return err
	}
	p.Add(sc)
	if e.Label != "" {
		p.Legend.Add(e.Label, errThumb{ls}, sc)
	}
	return nil
}

// errThumb draws the legend entry of an error bar: a vertical stroke
// behind the marker.
type errThumb struct {
	draw.LineStyle
}

func (t errThumb) Thumbnail(c *draw.Canvas) {
	x := (c.Min.X + c.Max.X) / 2
	c.StrokeLine2(t.LineStyle, x, c.Min.Y, x, c.Max.Y)
}

// RefLine is a horizontal or vertical line spanning the whole axis.
type RefLine struct {
	Vertical bool
	Value    float64
	Label    string
	Color    color.Color
	Dashes   string
	Width    float64
	Alpha    float64
}

// Add implements Layer.
func (r RefLine) Add(p *plot.Plot, cfg style.RenderConfig) error {
	ls, err := lineStyle(alpha(colorOr(r.Color, color.Black), r.Alpha), r.Dashes, r.Width, cfg)
	if err != nil {
		return err
	}
	rl := &refLine{vertical: r.Vertical, value: r.Value, style: ls}
	p.Add(rl)
	if r.Label != "" {
		p.Legend.Add(r.Label, rl)
	}
	return nil
}

// Span shades a horizontal or vertical band across the whole axis.
type Span struct {
	Vertical bool
	From, To float64
	Label    string
	Color    color.Color
	Alpha    float64
}

// Add implements Layer.
func (s Span) Add(p *plot.Plot, cfg style.RenderConfig) error {
	sp := &span{vertical: s.Vertical, from: s.From, to: s.To, fill: alpha(colorOr(s.Color, style.MustColor("gray")), s.Alpha)}
	p.Add(sp)
	if s.Label != "" {
		p.Legend.Add(s.Label, sp)
	}
	return nil
}

// Band fills the area between Lower and Upper at each X. When Where is set,
// only runs of consecutive points where it returns true are filled.
type Band struct {
	X, Lower, Upper []float64
	Where           func(i int) bool
	Label           string
	Color           color.Color
	Alpha           float64
}

// Add implements Layer.
func (b Band) Add(p *plot.Plot, cfg style.RenderConfig) error {
	n := len(b.X)
	if len(b.Lower) != n || len(b.Upper) != n {
		return errors.New(errors.ErrCodeInvalidInput, "band bounds must match x (%d, %d, %d)", n, len(b.Lower), len(b.Upper))
	}
	fill := alpha(colorOr(b.Color, style.MustColor("steelblue")), b.Alpha)

	var first *plotter.Polygon
	for _, run := range runs(n, b.Where) {
		ring := make(plotter.XYs, 0, 2*(run[1]-run[0]))
		for i := run[0]; i < run[1]; i++ {
			ring = append(ring, plotter.XY{X: b.X[i], Y: b.Upper[i]})
		}
		for i := run[1] - 1; i >= run[0]; i-- {
			ring = append(ring, plotter.XY{X: b.X[i], Y: b.Lower[i]})
		}
		poly, err := plotter.NewPolygon(ring)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "band")
		}
		poly.Color = fill
		poly.LineStyle = draw.LineStyle{}
		p.Add(poly)
		if first == nil {
			first = poly
		}
	}
	if b.Label != "" && first != nil {
		p.Legend.Add(b.Label, first)
	}
	return nil
}

// runs returns the [start, end) index ranges of length two or more where
// keep holds. A nil keep selects everything.
func runs(n int, keep func(int) bool) [][2]int {
	var out [][2]int
	start := -1
	for i := 0; i <= n; i++ {
		in := i < n && (keep == nil || keep(i))
		switch {
		case in && start < 0:
			start = i
		case !in && start >= 0:
			if i-start >= 2 {
				out = append(out, [2]int{start, i})
			}
			start = -1
		}
	}
	return out
}

// Text places a string at a data coordinate.
type Text struct {
	X, Y   float64
	Text   string
	Scale  float64 // font size relative to the config font size; zero means the legend size
	Color  color.Color
	Center bool // center horizontally on X instead of starting at X
}

// Add implements Layer.
func (t Text) Add(p *plot.Plot, cfg style.RenderConfig) error {
	lbl, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: t.X, Y: t.Y}},
		Labels: []string{t.Text},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "text %q", t.Text)
	}
	size := cfg.LegendSize()
	if t.Scale > 0 {
		size = t.Scale * cfg.FontSize
	}
	ts := cfg.TextStyle(size)
	ts.Color = colorOr(t.Color, color.Black)
	if t.Center {
		ts.XAlign = text.XCenter
	}
	lbl.TextStyle[0] = ts
	p.Add(lbl)
	return nil
}

func (t Text) remap(f func(float64) float64) Layer {
	t.Y = f(t.Y)
	return t
}

// Arrow draws an arrow from (X1, Y1) to the head at (X2, Y2). With Double
// set both ends get a head. Text, if any, is drawn at the tail.
type Arrow struct {
	X1, Y1, X2, Y2 float64
	Double         bool
	Text           string
	Color          color.Color
	Width          float64
}

// Add implements Layer.
func (a Arrow) Add(p *plot.Plot, cfg style.RenderConfig) error {
	col := colorOr(a.Color, color.Black)
	p.Add(&arrow{
		from:   plotter.XY{X: a.X1, Y: a.Y1},
		to:     plotter.XY{X: a.X2, Y: a.Y2},
		double: a.Double,
		style:  draw.LineStyle{Color: col, Width: vg.Points(orFloat(a.Width, cfg.LineWidth*0.75))},
		head:   vg.Points(cfg.LegendSize() * 0.6),
	})
	if a.Text == "" {
		return nil
	}
	return Text{X: a.X1, Y: a.Y1, Text: a.Text, Color: col}.Add(p, cfg)
}

// Rect draws a rectangle with its lower-left corner at (X, Y).
type Rect struct {
	X, Y, W, H float64
	Edge       color.Color
	Fill       color.Color
	Alpha      float64 // applies to Fill only
	Dashes     string
	Width      float64
}

// Add implements Layer.
func (r Rect) Add(p *plot.Plot, cfg style.RenderConfig) error {
	return shape(p, cfg, plotter.XYs{
		{X: r.X, Y: r.Y}, {X: r.X + r.W, Y: r.Y}, {X: r.X + r.W, Y: r.Y + r.H}, {X: r.X, Y: r.Y + r.H},
	}, r.Edge, r.Fill, r.Alpha, r.Dashes, r.Width)
}

// Circle draws a circle of radius R in data units around (X, Y).
type Circle struct {
	X, Y, R float64
	Edge    color.Color
	Fill    color.Color
	Alpha   float64 // applies to Fill only
	Dashes  string
	Width   float64
}

// Add implements Layer.
func (c Circle) Add(p *plot.Plot, cfg style.RenderConfig) error {
	const segments = 90
	ring := make(plotter.XYs, segments)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / segments
		ring[i] = plotter.XY{X: c.X + c.R*math.Cos(a), Y: c.Y + c.R*math.Sin(a)}
	}
	return shape(p, cfg, ring, c.Edge, c.Fill, c.Alpha, c.Dashes, c.Width)
}

func shape(p *plot.Plot, cfg style.RenderConfig, ring plotter.XYs, edge, fill color.Color, a float64, dashes string, width float64) error {
	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "shape")
	}
	if fill != nil {
		fill = alpha(fill, a)
	}
	poly.Color = fill
	if edge != nil {
		ls, err := lineStyle(edge, dashes, width, cfg)
		if err != nil {
			return err
		}
		poly.LineStyle = ls
	} else {
		poly.LineStyle = draw.LineStyle{}
	}
	p.Add(poly)
	return nil
}

func lineStyle(c color.Color, dashes string, width float64, cfg style.RenderConfig) (draw.LineStyle, error) {
	w := vg.Points(orFloat(width, cfg.LineWidth))
	d, err := style.Dashes(dashes, w)
	if err != nil {
		return draw.LineStyle{}, err
	}
	return draw.LineStyle{Color: c, Width: w, Dashes: d}, nil
}

func colorOr(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

// alpha applies a in (0, 1); zero leaves c opaque.
func alpha(c color.Color, a float64) color.Color {
	if a <= 0 || a >= 1 {
		return c
	}
	return style.WithAlpha(c, a)
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
