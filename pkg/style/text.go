package style

import (
	"image/color"
	"strings"

	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Typeface is the font family all text is set in.
const Typeface font.Typeface = "Liberation"

// FontVariant returns the canonical Liberation variant for c.Font.
func (c RenderConfig) FontVariant() font.Variant {
	for _, f := range Fonts {
		if strings.EqualFold(f, c.Font) {
			return font.Variant(f)
		}
	}
	return font.Variant(DefaultFont)
}

// Handler returns the text handler used for labels. With Math set, labels
// containing $...$ spans are typeset as math.
func (c RenderConfig) Handler() text.Handler {
	if c.Math {
		return MathText{
			Latex: text.Latex{Fonts: font.DefaultCache},
			Plain: text.Plain{Fonts: font.DefaultCache},
		}
	}
	return text.Plain{Fonts: font.DefaultCache}
}

// MathText sends labels with a $ to the LaTeX handler and everything else
// to the plain one. A label the LaTeX parser cannot read, such as one with
// non-ASCII characters or superscripts, is drawn as plain text instead of
// failing the figure.
type MathText struct {
	Latex text.Latex
	Plain text.Plain
}

var _ text.Handler = MathText{}

func (h MathText) Cache() *font.Cache                  { return h.Plain.Cache() }
func (h MathText) Extents(fnt font.Font) font.Extents { return h.Plain.Extents(fnt) }
func (h MathText) Lines(txt string) []string          { return h.Plain.Lines(txt) }

// Box implements text.Handler.
func (h MathText) Box(txt string, fnt font.Font) (width, height, depth vg.Length) {
	if strings.Contains(txt, "$") {
		if w, ht, d, ok := h.latexBox(txt, fnt); ok {
			return w, ht, d
		}
	}
	return h.Plain.Box(txt, fnt)
}

// Draw implements text.Handler.
func (h MathText) Draw(c vg.Canvas, txt string, sty text.Style, pt vg.Point) {
	if strings.Contains(txt, "$") {
		if _, _, _, ok := h.latexBox(txt, sty.Font); ok && h.latexDraw(c, txt, sty, pt) {
			return
		}
	}
	h.Plain.Draw(c, txt, sty, pt)
}

// latexBox measures txt with the LaTeX handler, which panics on input it
// cannot parse.
func (h MathText) latexBox(txt string, fnt font.Font) (w, ht, d vg.Length, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	w, ht, d = h.Latex.Box(txt, fnt)
	return w, ht, d, true
}

func (h MathText) latexDraw(c vg.Canvas, txt string, sty text.Style, pt vg.Point) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	h.Latex.Draw(c, txt, sty, pt)
	return true
}

// TextStyle returns a black text style of the given point size in the
// configured font.
func (c RenderConfig) TextStyle(size float64) text.Style {
	return text.Style{
		Color: color.Black,
		Font: font.Font{
			Typeface: Typeface,
			Variant:  c.FontVariant(),
			Size:     vg.Points(size),
		},
		XAlign:  text.XLeft,
		YAlign:  text.YBottom,
		Handler: c.Handler(),
	}
}

// SetFont switches ts to the configured font at the given size, keeping
// its color, rotation and alignment.
func (c RenderConfig) SetFont(ts *text.Style, size float64) {
	ts.Font = font.Font{
		Typeface: Typeface,
		Variant:  c.FontVariant(),
		Size:     vg.Points(size),
	}
	ts.Handler = c.Handler()
}

// LabelStyle is the style of axis labels.
func (c RenderConfig) LabelStyle() text.Style { return c.TextStyle(c.FontSize) }

// TickStyle is the style of tick labels.
func (c RenderConfig) TickStyle() text.Style { return c.TextStyle(c.TickLabelSize()) }
