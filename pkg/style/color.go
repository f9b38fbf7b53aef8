package style

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubfig/pkg/errors"
)

var namedColors = map[string]color.NRGBA{
	"b":          {0, 0, 255, 255},
	"g":          {0, 128, 0, 255},
	"r":          {255, 0, 0, 255},
	"c":          {0, 191, 191, 255},
	"m":          {191, 0, 191, 255},
	"y":          {191, 191, 0, 255},
	"k":          {0, 0, 0, 255},
	"w":          {255, 255, 255, 255},
	"blue":       {0, 0, 255, 255},
	"green":      {0, 128, 0, 255},
	"red":        {255, 0, 0, 255},
	"black":      {0, 0, 0, 255},
	"white":      {255, 255, 255, 255},
	"yellow":     {255, 255, 0, 255},
	"orange":     {255, 165, 0, 255},
	"purple":     {128, 0, 128, 255},
	"gray":       {128, 128, 128, 255},
	"grey":       {128, 128, 128, 255},
	"lightgray":  {211, 211, 211, 255},
	"steelblue":  {70, 130, 180, 255},
	"coral":      {255, 127, 80, 255},
	"lightgreen": {144, 238, 144, 255},
	"darkgreen":  {0, 100, 0, 255},
	"navy":       {0, 0, 128, 255},
}

// Color resolves a color name: a single-letter code, a CSS-style name from
// the table above, or #rrggbb. It returns INVALID_STYLE for anything else.
func Color(name string) (color.Color, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if c, ok := namedColors[n]; ok {
		return c, nil
	}
	if strings.HasPrefix(n, "#") && len(n) == 7 {
		v, err := strconv.ParseUint(n[1:], 16, 32)
		if err == nil {
			return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown color %q", name)
}

// MustColor is like Color but panics on unknown names. Figure templates use it
// for literal colors.
func MustColor(name string) color.Color {
	c, err := Color(name)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha returns c with its opacity scaled to alpha in [0, 1].
func WithAlpha(c color.Color, alpha float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * clamp01(alpha)))
	return n
}

// ColorMaps lists the colormap names accepted by ColorMap.
var ColorMaps = []string{"coolwarm", "viridis", "blackbody", "autumn_r", "autumn", "gray"}

// ColorMap returns a named colormap spanning [min, max].
func ColorMap(name string, min, max float64) (palette.ColorMap, error) {
	var cm palette.ColorMap
	switch strings.ToLower(name) {
	case "coolwarm":
		cm = moreland.SmoothBlueRed()
	case "viridis":
		cm = moreland.Kindlmann()
	case "blackbody":
		cm = moreland.BlackBody()
	case "autumn_r":
		cm = &Ramp{Stops: []color.NRGBA{{255, 255, 0, 255}, {255, 0, 0, 255}}}
	case "autumn":
		cm = &Ramp{Stops: []color.NRGBA{{255, 0, 0, 255}, {255, 255, 0, 255}}}
	case "gray":
		cm = &Ramp{Stops: []color.NRGBA{{0, 0, 0, 255}, {255, 255, 255, 255}}}
	default:
		return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown colormap %q (want one of %s)",
			name, strings.Join(ColorMaps, ", "))
	}
	cm.SetMin(min)
	cm.SetMax(max)
	return cm, nil
}

// MustColorMap is like ColorMap but panics on unknown names.
func MustColorMap(name string, min, max float64) palette.ColorMap {
	cm, err := ColorMap(name, min, max)
	if err != nil {
		panic(err)
	}
	return cm
}

// Ramp is a piecewise-linear colormap through evenly spaced color stops.
type Ramp struct {
	Stops    []color.NRGBA
	min, max float64
	alpha    float64
	alphaSet bool
}

// At implements palette.ColorMap.
func (r *Ramp) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < r.min:
		return nil, palette.ErrUnderflow
	case v > r.max:
		return nil, palette.ErrOverflow
	}
	if len(r.Stops) == 0 {
		return color.Transparent, nil
	}
	t := 0.0
	if r.max > r.min {
		t = (v - r.min) / (r.max - r.min)
	}
	pos := t * float64(len(r.Stops)-1)
	i := int(math.Floor(pos))
	if i >= len(r.Stops)-1 {
		i = len(r.Stops) - 1
		return r.apply(r.Stops[i]), nil
	}
	f := pos - float64(i)
	a, b := r.Stops[i], r.Stops[i+1]
	return r.apply(color.NRGBA{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: lerp(a.A, b.A, f),
	}), nil
}

func (r *Ramp) apply(c color.NRGBA) color.Color {
	if r.alphaSet {
		c.A = uint8(math.Round(float64(c.A) * r.alpha))
	}
	return c
}

// Max implements palette.ColorMap.
func (r *Ramp) Max() float64 { return r.max }

// SetMax implements palette.ColorMap.
func (r *Ramp) SetMax(v float64) { r.max = v }

// Min implements palette.ColorMap.
func (r *Ramp) Min() float64 { return r.min }

// SetMin implements palette.ColorMap.
func (r *Ramp) SetMin(v float64) { r.min = v }

// Alpha implements palette.ColorMap.
func (r *Ramp) Alpha() float64 {
	if !r.alphaSet {
		return 1
	}
	return r.alpha
}

// SetAlpha implements palette.ColorMap.
func (r *Ramp) SetAlpha(a float64) {
	r.alpha = clamp01(a)
	r.alphaSet = true
}

// Palette implements palette.ColorMap.
func (r *Ramp) Palette(n int) palette.Palette {
	return sample(r, n)
}

var _ palette.ColorMap = (*Ramp)(nil)

// Levels samples n colors from cm at the midpoints of n equal bands.
// Filled contours and colorbars use it to get one color per level.
func Levels(cm palette.ColorMap, n int) []color.Color {
	return sample(cm, n).Colors()
}

// Palette is a fixed list of colors satisfying palette.Palette.
type Palette []color.Color

// Colors implements palette.Palette.
func (p Palette) Colors() []color.Color { return p }

// Discrete is a stepped colormap: the range [min, max] is split into
// len(Colors) equal bands, each drawn in one color.
type Discrete struct {
	Colors   []color.Color
	min, max float64
	alpha    float64
}

// NewDiscrete returns a stepped colormap over [min, max].
func NewDiscrete(cs []color.Color, min, max float64) *Discrete {
	return &Discrete{Colors: cs, min: min, max: max, alpha: 1}
}

// At implements palette.ColorMap.
func (d *Discrete) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < d.min:
		return nil, palette.ErrUnderflow
	case v > d.max:
		return nil, palette.ErrOverflow
	case len(d.Colors) == 0:
		return color.Transparent, nil
	}
	i := 0
	if d.max > d.min {
		i = int((v - d.min) / (d.max - d.min) * float64(len(d.Colors)))
	}
	i = min(i, len(d.Colors)-1)
	if d.alpha < 1 {
		return WithAlpha(d.Colors[i], d.alpha), nil
	}
	return d.Colors[i], nil
}

// Max implements palette.ColorMap.
func (d *Discrete) Max() float64 { return d.max }

// SetMax implements palette.ColorMap.
func (d *Discrete) SetMax(v float64) { d.max = v }

// Min implements palette.ColorMap.
func (d *Discrete) Min() float64 { return d.min }

// SetMin implements palette.ColorMap.
func (d *Discrete) SetMin(v float64) { d.min = v }

// Alpha implements palette.ColorMap.
func (d *Discrete) Alpha() float64 { return d.alpha }

// SetAlpha implements palette.ColorMap.
func (d *Discrete) SetAlpha(a float64) { d.alpha = clamp01(a) }

// Palette implements palette.ColorMap.
func (d *Discrete) Palette(n int) palette.Palette { return sample(d, n) }

var _ palette.ColorMap = (*Discrete)(nil)

func sample(cm palette.ColorMap, n int) palette.Palette {
	if n <= 0 {
		return Palette(nil)
	}
	lo, hi := cm.Min(), cm.Max()
	out := make(Palette, n)
	for i := range out {
		v := lo + (float64(i)+0.5)*(hi-lo)/float64(n)
		c, err := cm.At(v)
		if err != nil {
			c = color.Transparent
		}
		out[i] = c
	}
	return out
}

// Dashes maps a line style name to a dash pattern scaled to width.
// "-" and "" are solid.
func Dashes(name string, width vg.Length) ([]vg.Length, error) {
	switch name {
	case "", "-", "solid":
		return nil, nil
	case "--", "dashed":
		return []vg.Length{3.7 * width, 1.6 * width}, nil
	case ":", "dotted":
		return []vg.Length{1 * width, 1.65 * width}, nil
	case "-.", "dashdot":
		return []vg.Length{6.4 * width, 1.6 * width, 1 * width, 1.6 * width}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown line style %q", name)
}

// Marker maps a marker name to a glyph drawer. Lowercase names are filled
// shapes and the uppercase variants their outlines.
func Marker(name string) (draw.GlyphDrawer, error) {
	switch name {
	case "", "o":
		return draw.CircleGlyph{}, nil
	case "O":
		return draw.RingGlyph{}, nil
	case "s":
		return draw.BoxGlyph{}, nil
	case "S":
		return draw.SquareGlyph{}, nil
	case "^":
		return draw.PyramidGlyph{}, nil
	case "T":
		return draw.TriangleGlyph{}, nil
	case "+":
		return draw.PlusGlyph{}, nil
	case "x":
		return draw.CrossGlyph{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown marker %q", name)
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
